package entity

const (
	NarrativeDecisive    = "DECISIVE"
	NarrativeNonDecisive = "NON-DECISIVE"

	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// PriceRange is a [2]float64 pair serialized as a two-element JSON array.
type PriceRange [2]float64

// FinancialInsight is the normalized trade thesis extracted from a transcript.
// Slices are never nil so they serialize as [] rather than null.
type FinancialInsight struct {
	Narrative  string       `json:"narrative"`
	Direction  string       `json:"direction"`
	Support    []float64    `json:"Support"`
	Resistance []float64    `json:"Resistance"`
	BuyArea    []PriceRange `json:"Buy_Area"`
	SellArea   []PriceRange `json:"Sell_Area"`
}
