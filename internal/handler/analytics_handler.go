package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// AnalyticsHandler serves the admin dashboard figures.
type AnalyticsHandler struct {
	svc service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func queryOr(c echo.Context, name, def string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return def
}

// queryLimit returns the limit query parameter, or 0 when absent or malformed.
func queryLimit(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		return 0
	}
	return n
}

// Stats godoc
// @Summary Revenue, orders, customers and conversion for a range
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param range query string false "Last 7 Days, Last 30 Days, This Month, Last Month or This Year"
// @Success 200 {object} service.Stats
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics/stats [get]
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), queryOr(c, "range", service.RangeLast7Days))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Sales godoc
// @Summary Revenue and orders per period
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param range query string false "Range name"
// @Param groupBy query string false "By Month, By Week or By Day"
// @Success 200 {array} service.SalesPoint
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics/sales [get]
func (h *AnalyticsHandler) Sales(c echo.Context) error {
	points, err := h.svc.Sales(c.Request().Context(),
		queryOr(c, "range", service.RangeLast7Days),
		queryOr(c, "groupBy", "By Month"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

// Traffic godoc
// @Summary Traffic sources
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.TrafficSource
// @Router /admin/analytics/traffic [get]
func (h *AnalyticsHandler) Traffic(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Traffic(c.Request().Context()))
}

// TopProducts godoc
// @Summary Best sellers by units
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param range query string false "Range name"
// @Param limit query int false "Number of products (default 5)"
// @Success 200 {array} service.TopProduct
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics/top-products [get]
func (h *AnalyticsHandler) TopProducts(c echo.Context) error {
	top, err := h.svc.TopProducts(c.Request().Context(), queryOr(c, "range", service.RangeLast7Days), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, top)
}

// RecentActivity godoc
// @Summary Latest orders as an activity feed
// @Tags admin-analytics
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries (default 5)"
// @Success 200 {array} service.Activity
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics/recent-activity [get]
func (h *AnalyticsHandler) RecentActivity(c echo.Context) error {
	feed, err := h.svc.RecentActivity(c.Request().Context(), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feed)
}
