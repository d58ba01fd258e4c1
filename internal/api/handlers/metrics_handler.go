package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/retail-metrics/internal/domain"
	"github.com/andresuchdata/retail-metrics/internal/service"
	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// parseParams reads the optional metric request parameters from the query
// string. Unset numeric parameters stay zero; the service applies defaults.
func (h *MetricsHandler) parseParams(c *gin.Context) domain.MetricParams {
	params := domain.MetricParams{
		ItemID:   strings.TrimSpace(c.Query("item_id")),
		Category: strings.TrimSpace(c.Query("category")),
		ABCClass: strings.ToUpper(strings.TrimSpace(c.Query("abc_class"))),
		StoreID:  strings.TrimSpace(c.Query("store_id")),
	}

	if period := strings.ToLower(strings.TrimSpace(c.Query("period"))); period != "" {
		params.Period = domain.Period(period)
	}

	parseFloat := func(param string) float64 {
		value := strings.TrimSpace(c.Query(param))
		if value == "" {
			return 0
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return f
	}

	params.CarryingCostRate = parseFloat("carrying_cost_rate")
	params.SlowTurnoverThreshold = parseFloat("slow_turnover_threshold")
	params.DOSThreshold = parseFloat("dos_threshold")

	if days, err := strconv.Atoi(c.DefaultQuery("inactivity_days", "0")); err == nil && days > 0 {
		params.InactivityDays = days
	}

	return params
}

// respondError maps the metric error taxonomy to responses. Structured
// metric errors are recoverable and serialized for the caller; anything
// else is an internal failure.
func respondError(c *gin.Context, err error) {
	if me, ok := domain.IsMetricError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, me)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metric", "details": err.Error()})
}

func (h *MetricsHandler) GetTurnover(c *gin.Context) {
	params := h.parseParams(c)
	if params.Period != "" && !params.Period.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period, expected daily|weekly|monthly|quarterly|yearly"})
		return
	}

	result, err := h.service.Turnover(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MetricsHandler) GetStockoutRate(c *gin.Context) {
	params := h.parseParams(c)
	summary, err := h.service.StockoutRate(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *MetricsHandler) GetStockoutHeatmap(c *gin.Context) {
	params := h.parseParams(c)
	cells, err := h.service.StockoutHeatmap(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	if cells == nil {
		cells = []domain.HeatmapCell{}
	}

	c.JSON(http.StatusOK, cells)
}

func (h *MetricsHandler) GetDaysOfSupply(c *gin.Context) {
	params := h.parseParams(c)
	result, err := h.service.DaysOfSupply(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MetricsHandler) GetCarryingCost(c *gin.Context) {
	params := h.parseParams(c)
	result, err := h.service.CarryingCost(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MetricsHandler) GetSlowObsolete(c *gin.Context) {
	params := h.parseParams(c)
	result, err := h.service.Classify(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MetricsHandler) GetDataStatus(c *gin.Context) {
	status, err := h.service.DataStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data status", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
