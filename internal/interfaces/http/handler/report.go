package handler

import (
	"strconv"
	"time"

	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the read-only warning reports
type ReportHandler struct {
	BaseHandler
	reports *appstock.ReportService

	// configured report windows, used when the request does not override
	expiryThresholdDays  int
	mismatchLookbackDays int
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *appstock.ReportService, expiryThresholdDays, mismatchLookbackDays int) *ReportHandler {
	return &ReportHandler{
		reports:              reports,
		expiryThresholdDays:  expiryThresholdDays,
		mismatchLookbackDays: mismatchLookbackDays,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/expiry", h.Expiry)
		reports.GET("/over-reservation", h.OverReservation)
		reports.GET("/zone-mismatch", h.ZoneMismatch)
	}
}

// Expiry returns batches near or past their expiry date
func (h *ReportHandler) Expiry(c *gin.Context) {
	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}
	days, ok := h.parseDays(c, "threshold_days", h.expiryThresholdDays)
	if !ok {
		return
	}

	warnings, err := h.reports.ExpiryReport(c.Request.Context(), asOf, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warnings)
}

// OverReservation returns products whose due demand exceeds availability
func (h *ReportHandler) OverReservation(c *gin.Context) {
	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	warnings, err := h.reports.OverReservationReport(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warnings)
}

// ZoneMismatch returns recent movements whose zone contradicts the batch
// frozen flag
func (h *ReportHandler) ZoneMismatch(c *gin.Context) {
	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}
	days, ok := h.parseDays(c, "lookback_days", h.mismatchLookbackDays)
	if !ok {
		return
	}

	warnings, err := h.reports.ZoneMismatchReport(c.Request.Context(), asOf, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warnings)
}

// parseAsOf reads the optional as_of query parameter, defaulting to now
func (h *ReportHandler) parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now(), true
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.BadRequest(c, "as_of must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return asOf, true
}

// parseDays reads an optional day-count query parameter
func (h *ReportHandler) parseDays(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		h.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return days, true
}
