package service

import (
	"context"
	"strings"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"

	"go.uber.org/zap"
)

const defaultEventCategory = "general"

// TrackingContext describes the request a tracked event came from.
type TrackingContext struct {
	UserID    string
	SessionID string
	UserAgent string
	IP        string
	Referer   string
}

// TrackingService stores client events and forwards them to the analytics
// collector when one is configured.
type TrackingService interface {
	TrackEvent(ctx context.Context, tc TrackingContext, req *dto.TrackEventRequest) error
	TrackPageView(ctx context.Context, tc TrackingContext, req *dto.TrackPageViewRequest) error
	Health() dto.TrackingHealth
}

type trackingServiceImpl struct {
	repo      domain.TrackingRepository
	forwarder domain.EventForwarder
	now       func() time.Time
}

// NewTrackingService accepts a nil forwarder (collection disabled).
func NewTrackingService(repo domain.TrackingRepository, forwarder domain.EventForwarder) TrackingService {
	return &trackingServiceImpl{repo: repo, forwarder: forwarder, now: func() time.Time { return time.Now().UTC() }}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func (s *trackingServiceImpl) TrackEvent(ctx context.Context, tc TrackingContext, req *dto.TrackEventRequest) error {
	ev := &domain.Event{
		Name:      req.EventName,
		Category:  orDefault(req.EventCategory, defaultEventCategory),
		Label:     req.EventLabel,
		Value:     req.EventValue,
		Params:    req.Params,
		UserID:    tc.UserID,
		SessionID: orDefault(tc.SessionID, "unknown"),
		Timestamp: s.now(),
	}
	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		return domain.NewInternalError("Failed to track event", err)
	}

	params := map[string]interface{}{
		"event_category": ev.Category,
		"page_path":      orDefault(req.PagePath, orDefault(tc.Referer, "/")),
	}
	if ev.Label != "" {
		params["event_label"] = ev.Label
	}
	if ev.Value != 0 {
		params["value"] = ev.Value
	}
	for k, v := range req.Params {
		params[k] = v
	}
	s.forward(ctx, domain.TrackedEvent{ClientID: ev.SessionID, UserID: tc.UserID, Name: ev.Name, Params: params})
	return nil
}

func (s *trackingServiceImpl) TrackPageView(ctx context.Context, tc TrackingContext, req *dto.TrackPageViewRequest) error {
	pv := &domain.PageView{
		Path:      orDefault(req.PagePath, "/"),
		Title:     orDefault(req.PageTitle, "Unknown Page"),
		Referrer:  orDefault(req.Referrer, tc.Referer),
		UserID:    tc.UserID,
		SessionID: orDefault(tc.SessionID, "unknown"),
		UserAgent: tc.UserAgent,
		IP:        tc.IP,
		Timestamp: s.now(),
	}
	if err := s.repo.InsertPageView(ctx, pv); err != nil {
		return domain.NewInternalError("Failed to track page view", err)
	}
	s.forward(ctx, domain.TrackedEvent{
		ClientID: pv.SessionID,
		UserID:   tc.UserID,
		Name:     "page_view",
		Params: map[string]interface{}{
			"page_location": pv.Path,
			"page_title":    pv.Title,
			"page_referrer": pv.Referrer,
		},
	})
	return nil
}

// forward is best-effort; the stored document is the record of truth.
func (s *trackingServiceImpl) forward(ctx context.Context, ev domain.TrackedEvent) {
	if s.forwarder == nil {
		return
	}
	if err := s.forwarder.Forward(ctx, ev); err != nil {
		logger.Get().Warn("Forwarding tracked event failed", zap.String("event", ev.Name), zap.Error(err))
	}
}

func (s *trackingServiceImpl) Health() dto.TrackingHealth {
	return dto.TrackingHealth{Status: "healthy", TrackingEnabled: true, GA4Configured: s.forwarder != nil}
}
