package dto

import "time"

// ReportMeta is shared by every analytics payload. IsLive is false when the
// payload is a default produced without the reporting API.
type ReportMeta struct {
	Timestamp time.Time `json:"timestamp"`
	IsLive    bool      `json:"is_live"`
	Error     string    `json:"error,omitempty"`
}

type OverviewTotals struct {
	TotalUsers      int64   `json:"totalUsers"`
	Sessions        int64   `json:"sessions"`
	Pageviews       int64   `json:"pageviews"`
	EngagedSessions int64   `json:"engagedSessions"`
	AverageDuration float64 `json:"averageDuration"`
	BounceRate      float64 `json:"bounceRate"`
	NewUsers        int64   `json:"newUsers"`
	Events          int64   `json:"events"`
}

type OverviewDay struct {
	Date            string `json:"date"`
	Users           int64  `json:"users"`
	Sessions        int64  `json:"sessions"`
	Pageviews       int64  `json:"pageviews"`
	EngagedSessions int64  `json:"engagedSessions"`
}

type OverviewReport struct {
	Totals    OverviewTotals `json:"totals"`
	DailyData []OverviewDay  `json:"dailyData"`
	TimeRange string         `json:"timeRange"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	ReportMeta
}

type CountryUsers struct {
	Country   string `json:"country"`
	Users     int64  `json:"users"`
	Sessions  int64  `json:"sessions,omitempty"`
	Pageviews int64  `json:"pageviews,omitempty"`
}

type RealtimeDevice struct {
	Device   string `json:"device"`
	Platform string `json:"platform"`
	Users    int64  `json:"users"`
}

type RealtimeReport struct {
	ActiveUsers int64            `json:"activeUsers"`
	Countries   []CountryUsers   `json:"countries"`
	Devices     []RealtimeDevice `json:"devices"`
	ReportMeta
}

type ChannelRow struct {
	Channel         string `json:"channel"`
	Users           int64  `json:"users"`
	NewUsers        int64  `json:"newUsers"`
	Sessions        int64  `json:"sessions"`
	EngagedSessions int64  `json:"engagedSessions"`
}

type SourceRow struct {
	Source string `json:"source"`
	Medium string `json:"medium"`
	Users  int64  `json:"users"`
}

type AcquisitionReport struct {
	Channels      []ChannelRow `json:"channels"`
	Sources       []SourceRow  `json:"sources"`
	TotalChannels int          `json:"totalChannels"`
	ReportMeta
}

type PageRow struct {
	Title       string  `json:"title"`
	Path        string  `json:"path"`
	Country     string  `json:"country"`
	Views       int64   `json:"views"`
	Users       int64   `json:"users"`
	AvgDuration float64 `json:"avgDuration"`
	BounceRate  float64 `json:"bounceRate"`
	Events      int64   `json:"events"`
}

type PagesReport struct {
	Pages      []PageRow `json:"pages"`
	TotalPages int       `json:"totalPages"`
	ReportMeta
}

type CityRow struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Users   int64  `json:"users"`
}

type GeographicReport struct {
	Countries      []CountryUsers `json:"countries"`
	Cities         []CityRow      `json:"cities"`
	TotalCountries int            `json:"totalCountries"`
	ReportMeta
}

type DeviceRow struct {
	Device      string  `json:"device"`
	Users       int64   `json:"users"`
	Sessions    int64   `json:"sessions"`
	AvgDuration float64 `json:"avgDuration"`
}

type BrowserRow struct {
	Browser string `json:"browser"`
	Users   int64  `json:"users"`
}

type OSRow struct {
	OS    string `json:"os"`
	Users int64  `json:"users"`
}

type DevicesReport struct {
	Devices          []DeviceRow  `json:"devices"`
	Browsers         []BrowserRow `json:"browsers"`
	OperatingSystems []OSRow      `json:"operatingSystems"`
	ReportMeta
}

type EventRow struct {
	Name  string `json:"name"`
	Page  string `json:"page"`
	Count int64  `json:"count"`
	Users int64  `json:"users"`
}

type EventsReport struct {
	Events       []EventRow `json:"events"`
	TotalEvents  int64      `json:"totalEvents"`
	UniqueEvents int        `json:"uniqueEvents"`
	ReportMeta
}

// @Description Every analytics report in one payload
type AnalyticsDashboard struct {
	Overview    OverviewReport    `json:"overview"`
	Realtime    RealtimeReport    `json:"realtime"`
	Acquisition AcquisitionReport `json:"acquisition"`
	Pages       PagesReport       `json:"pages"`
	Geographic  GeographicReport  `json:"geographic"`
	Devices     DevicesReport     `json:"devices"`
	Events      EventsReport      `json:"events"`
	ReportMeta
}

type AnalyticsHealth struct {
	Status     string   `json:"status"`
	Service    string   `json:"service"`
	Configured bool     `json:"configured"`
	PropertyID string   `json:"propertyId,omitempty"`
	Endpoints  []string `json:"endpoints"`
}

type TrackEventRequest struct {
	EventName     string                 `json:"event_name" validate:"required,max=100"`
	EventCategory string                 `json:"event_category" validate:"max=100"`
	EventLabel    string                 `json:"event_label" validate:"max=200"`
	EventValue    float64                `json:"event_value"`
	PagePath      string                 `json:"page_path" validate:"max=500"`
	Params        map[string]interface{} `json:"params"`
}

type TrackPageViewRequest struct {
	PagePath  string `json:"page_path" validate:"max=500"`
	PageTitle string `json:"page_title" validate:"max=300"`
	Referrer  string `json:"referrer" validate:"max=500"`
}

type TrackingHealth struct {
	Status          string `json:"status"`
	TrackingEnabled bool   `json:"tracking_enabled"`
	GA4Configured   bool   `json:"ga4_configured"`
}
