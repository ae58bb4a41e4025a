package http

import (
	"errors"
	"net/http"
	"strings"

	"yt-stock-insight/internal/query/dto"
	"yt-stock-insight/internal/query/service"
	"yt-stock-insight/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// InsightHandler handles HTTP requests for video insights.
type InsightHandler struct {
	queryService service.InsightQueryService
	validate     *validator.Validate
	logger       *logger.Logger
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(queryService service.InsightQueryService, logger *logger.Logger) *InsightHandler {
	return &InsightHandler{
		queryService: queryService,
		validate:     validator.New(),
		logger:       logger,
	}
}

// RegisterRoutes registers the insight routes to the Echo group.
func (h *InsightHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/query", h.Query)
	g.GET("/series", h.Series)
	g.GET("/directions", h.Directions)
}

// Query godoc
// @Summary Query insights in free text
// @Description Parses dates, direction and symbol out of the text and returns the matching price series
// @Tags insights
// @Produce  json
// @Param   q  query    string true    "Free-text query, e.g. LONG TSLA from May 1, 2024 to June 30, 2024"
// @Success 200 {object} dto.SeriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /insights/query [get]
func (h *InsightHandler) Query(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Please enter a query."})
	}

	resp, err := h.queryService.Query(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("Failed to run query", logger.ErrorField(err), logger.StringField("query", q))
		return c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// Series godoc
// @Summary Get a price series
// @Description Returns one extremal price per persisted insight in the date range
// @Tags insights
// @Produce  json
// @Param   start      query    string true  "Start date (YYYY-MM-DD)"
// @Param   end        query    string true  "End date (YYYY-MM-DD)"
// @Param   direction  query    string true  "LONG or SHORT"
// @Param   symbol     query    string false "Symbol key, e.g. tesla"
// @Success 200 {object} dto.SeriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /insights/series [get]
func (h *InsightHandler) Series(c echo.Context) error {
	var req dto.SeriesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request parameters"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := h.queryService.Series(c.Request().Context(), dto.ParsedQuery{
		StartDate: req.Start,
		EndDate:   req.End,
		Direction: req.Direction,
		Symbol:    req.Symbol,
	})
	if err != nil {
		h.logger.Error("Failed to build series", logger.ErrorField(err))
		return c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// Directions godoc
// @Summary List trade directions
// @Description Lists the distinct directions of persisted insights
// @Tags insights
// @Produce  json
// @Success 200 {object} dto.DirectionsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /insights/directions [get]
func (h *InsightHandler) Directions(c echo.Context) error {
	directions, err := h.queryService.Directions(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list directions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, dto.DirectionsResponse{Directions: directions})
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
