package dto

// ParsedQuery is the structured form of a free-text query.
type ParsedQuery struct {
	StartDate string `json:"start_date" example:"2024-05-01"`
	EndDate   string `json:"end_date" example:"2024-12-31"`
	Direction string `json:"direction" example:"LONG"`
	Symbol    string `json:"symbol,omitempty" example:"tesla"`
}

// SeriesPoint is one record's extremal price.
type SeriesPoint struct {
	Date  string  `json:"date" example:"2024-06-02"`
	Price float64 `json:"price" example:"181.5"`
}

// SeriesRequest binds the series endpoint query string.
type SeriesRequest struct {
	Start     string `query:"start" validate:"required,datetime=2006-01-02"`
	End       string `query:"end" validate:"required,datetime=2006-01-02"`
	Direction string `query:"direction" validate:"required,oneof=LONG SHORT long short"`
	Symbol    string `query:"symbol"`
}

// SeriesResponse is the price series for a query.
type SeriesResponse struct {
	Query   ParsedQuery   `json:"query"`
	Message string        `json:"message" example:"3 records found."`
	Points  []SeriesPoint `json:"points"`
}

// DirectionsResponse lists the persisted trade directions.
type DirectionsResponse struct {
	Directions []string `json:"directions"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
