package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/andresuchdata/inventory-analytics/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	data, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to build dashboard")
		return
	}
	respondOK(c, data)
}

func (h *AnalyticsHandler) GetForecasts(c *gin.Context) {
	params := h.service.DefaultForecastParams()
	if v, ok, err := queryInt(c, "forecast_horizon_days"); err != nil {
		respondError(c, err, "")
		return
	} else if ok {
		params.HorizonDays = v
	}

	data, err := h.service.GetForecasts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "failed to compute forecasts")
		return
	}
	respondOK(c, data)
}

func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	params := h.service.DefaultAnomalyParams()
	if v, ok, err := queryFloat(c, "threshold"); err != nil {
		respondError(c, err, "")
		return
	} else if ok {
		params.Threshold = v
	}

	data, err := h.service.GetAnomalies(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "failed to detect anomalies")
		return
	}
	respondOK(c, data)
}

func (h *AnalyticsHandler) GetProcurement(c *gin.Context) {
	params := h.service.DefaultProcurementParams()
	if v, ok, err := queryInt(c, "min_stock_days"); err != nil {
		respondError(c, err, "")
		return
	} else if ok {
		params.MinStockDays = v
	}

	data, err := h.service.GetProcurement(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "failed to compute procurement recommendations")
		return
	}
	respondOK(c, data)
}

func (h *AnalyticsHandler) GetMovement(c *gin.Context) {
	data, err := h.service.GetMovement(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to classify item movement")
		return
	}
	respondOK(c, data)
}

func (h *AnalyticsHandler) ClearCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		respondError(c, err, "failed to clear analytics cache")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "analytics cache cleared"})
}

// queryInt reads an optional integer parameter. A present but malformed
// value is a validation error, never a silent fallback.
func queryInt(c *gin.Context, name string) (int, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true, domain.NewValidationError(name, "must be an integer")
	}
	return v, true, nil
}

func queryFloat(c *gin.Context, name string) (float64, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, true, domain.NewValidationError(name, "must be a number")
	}
	return v, true, nil
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondError maps service errors onto status codes: 422 for bad
// parameters, 503 for retryable ledger failures and 500 otherwise.
func respondError(c *gin.Context, err error, message string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   ve.Error(),
			"param":   ve.Param,
		})
		return
	}

	_ = c.Error(err)

	var dae *domain.DataAccessError
	if errors.As(err, &dae) && dae.Retryable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "analytics data source unavailable, retry later",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   message,
		"details": err.Error(),
	})
}
