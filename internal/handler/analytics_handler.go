package handler

import (
	"context"

	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookie   = "session_id"
	sessionIDHeader = "X-Session-ID"
	unknownSession  = "unknown"
)

// AnalyticsHandler serves product analytics reports and accepts client
// tracking events.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	tracking  service.TrackingService
	auth      middleware.TokenAuthenticator
	bind      binder
}

func NewAnalyticsHandler(analytics service.AnalyticsService, tracking service.TrackingService, auth middleware.TokenAuthenticator, v *validation.Validator) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, tracking: tracking, auth: auth, bind: binder{v: v}}
}

type rangedReport func(ctx context.Context, timeRange string) interface{}

func (h *AnalyticsHandler) report(message, defaultRange string, fn rangedReport) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return ok(c, message, fn(c.UserContext(), c.Query("time_range", defaultRange)))
	}
}

// Dashboard godoc
// @Summary Every report in one payload
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "24h, 7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.AnalyticsDashboard}
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	return h.report("Analytics dashboard retrieved", "7d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Dashboard(ctx, r)
	})(c)
}

// Overview godoc
// @Summary Users, sessions and pageviews with a daily series
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "24h, 7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.OverviewReport}
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	return h.report("Overview retrieved", "7d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Overview(ctx, r)
	})(c)
}

// Realtime godoc
// @Summary Active users in the last 30 minutes
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.RealtimeReport}
// @Router /analytics/realtime [get]
func (h *AnalyticsHandler) Realtime(c *fiber.Ctx) error {
	return ok(c, "Realtime data retrieved", h.analytics.Realtime(c.UserContext()))
}

// Acquisition godoc
// @Summary Traffic channels and sources
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.AcquisitionReport}
// @Router /analytics/acquisition [get]
func (h *AnalyticsHandler) Acquisition(c *fiber.Ctx) error {
	return h.report("Acquisition data retrieved", "30d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Acquisition(ctx, r)
	})(c)
}

// Pages godoc
// @Summary Top pages by views
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.PagesReport}
// @Router /analytics/pages [get]
func (h *AnalyticsHandler) Pages(c *fiber.Ctx) error {
	return h.report("Page data retrieved", "30d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Pages(ctx, r)
	})(c)
}

// Geographic godoc
// @Summary Users by country and city
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.GeographicReport}
// @Router /analytics/geographic [get]
func (h *AnalyticsHandler) Geographic(c *fiber.Ctx) error {
	return h.report("Geographic data retrieved", "30d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Geographic(ctx, r)
	})(c)
}

// Devices godoc
// @Summary Users by device, browser and operating system
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.DevicesReport}
// @Router /analytics/devices [get]
func (h *AnalyticsHandler) Devices(c *fiber.Ctx) error {
	return h.report("Device data retrieved", "30d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Devices(ctx, r)
	})(c)
}

// Events godoc
// @Summary Event counts
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param time_range query string false "7d, 30d or 90d"
// @Success 200 {object} dto.SuccessResponse{data=dto.EventsReport}
// @Router /analytics/events [get]
func (h *AnalyticsHandler) Events(c *fiber.Ctx) error {
	return h.report("Event data retrieved", "30d", func(ctx context.Context, r string) interface{} {
		return h.analytics.Events(ctx, r)
	})(c)
}

// Health godoc
// @Summary Whether the reporting API is configured
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.AnalyticsHealth
// @Router /analytics/health [get]
func (h *AnalyticsHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.analytics.Health())
}

// trackingContext describes the caller. The bearer token is optional here
// and a bad one is treated as anonymous.
func (h *AnalyticsHandler) trackingContext(c *fiber.Ctx) service.TrackingContext {
	sessionID := c.Get(sessionIDHeader)
	if sessionID == "" {
		sessionID = c.Cookies(sessionCookie, unknownSession)
	}
	return service.TrackingContext{
		UserID:    middleware.OptionalUserID(c, h.auth),
		SessionID: sessionID,
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        c.IP(),
		Referer:   c.Get(fiber.HeaderReferer),
	}
}

// TrackEvent godoc
// @Summary Record a client event
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body dto.TrackEventRequest true "Event"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /track/event [post]
func (h *AnalyticsHandler) TrackEvent(c *fiber.Ctx) error {
	var req dto.TrackEventRequest
	if err := h.bind.body(c, &req); err != nil {
		return err
	}
	if err := h.tracking.TrackEvent(c.UserContext(), h.trackingContext(c), &req); err != nil {
		return err
	}
	return ok(c, "Event tracked", nil)
}

// TrackPageView godoc
// @Summary Record a page view
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body dto.TrackPageViewRequest false "Page"
// @Success 200 {object} dto.MessageResponse
// @Router /track/pageview [post]
func (h *AnalyticsHandler) TrackPageView(c *fiber.Ctx) error {
	var req dto.TrackPageViewRequest
	if len(c.Body()) > 0 {
		if err := h.bind.body(c, &req); err != nil {
			return err
		}
	}
	if err := h.tracking.TrackPageView(c.UserContext(), h.trackingContext(c), &req); err != nil {
		return err
	}
	return ok(c, "Page view tracked", nil)
}

// TrackingHealth godoc
// @Summary Whether event forwarding is configured
// @Tags tracking
// @Produce json
// @Success 200 {object} dto.TrackingHealth
// @Router /track/health [get]
func (h *AnalyticsHandler) TrackingHealth(c *fiber.Ctx) error {
	return c.JSON(h.tracking.Health())
}
