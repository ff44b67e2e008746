package domain

import (
	"context"
	"time"
)

// ReportRow is one row of an analytics report keyed by dimension name.
type ReportRow struct {
	Dimensions map[string]string  `json:"dimensions"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ReportRequest describes a report over a date range.
type ReportRequest struct {
	StartDate  string
	EndDate    string
	Dimensions []string
	Metrics    []string
	OrderBy    string
	Limit      int64
}

// AnalyticsReporter runs reports against the product analytics property.
type AnalyticsReporter interface {
	RunReport(ctx context.Context, req ReportRequest) ([]ReportRow, error)
	RunRealtimeReport(ctx context.Context, dimensions, metrics []string) ([]ReportRow, error)
	PropertyID() string
}

// TrackedEvent is an event forwarded to the analytics collector.
type TrackedEvent struct {
	ClientID string
	UserID   string
	Name     string
	Params   map[string]interface{}
}

// EventForwarder ships tracked events to the analytics collector.
type EventForwarder interface {
	Forward(ctx context.Context, event TrackedEvent) error
}

// PageView is a stored page view.
type PageView struct {
	Path      string    `bson:"path" json:"path"`
	Title     string    `bson:"title,omitempty" json:"title,omitempty"`
	Referrer  string    `bson:"referrer,omitempty" json:"referrer,omitempty"`
	UserID    string    `bson:"userId,omitempty" json:"userId,omitempty"`
	SessionID string    `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	UserAgent string    `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	IP        string    `bson:"ip,omitempty" json:"-"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Event is a stored custom event.
type Event struct {
	Name      string                 `bson:"name" json:"name"`
	Category  string                 `bson:"category,omitempty" json:"category,omitempty"`
	Label     string                 `bson:"label,omitempty" json:"label,omitempty"`
	Value     float64                `bson:"value,omitempty" json:"value,omitempty"`
	Params    map[string]interface{} `bson:"params,omitempty" json:"params,omitempty"`
	UserID    string                 `bson:"userId,omitempty" json:"userId,omitempty"`
	SessionID string                 `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

// TrackingRepository stores page views and events.
type TrackingRepository interface {
	InsertPageView(ctx context.Context, pv *PageView) error
	InsertEvent(ctx context.Context, ev *Event) error
}
