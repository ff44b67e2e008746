package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var analyticsNow = time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)

func newAnalyticsService(reporter domain.AnalyticsReporter, store domain.Cache) *analyticsServiceImpl {
	svc := NewAnalyticsService(reporter, store, 5*time.Minute).(*analyticsServiceImpl)
	svc.now = func() time.Time { return analyticsNow }
	return svc
}

func TestReportDates(t *testing.T) {
	tests := []struct {
		in, wantRange, wantStart, wantEnd string
	}{
		{"24h", "24h", "2025-05-09", "2025-05-10"},
		{"30d", "30d", "2025-04-10", "2025-05-10"},
		{"today", "today", "2025-05-10", "2025-05-10"},
		{"yesterday", "yesterday", "2025-05-09", "2025-05-09"},
		{"", "7d", "2025-05-03", "2025-05-10"},
		{"forever", "7d", "2025-05-03", "2025-05-10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, start, end := reportDates(tt.in, analyticsNow)
			assert.Equal(t, tt.wantRange, r)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestAnalyticsService_NotConfigured(t *testing.T) {
	svc := newAnalyticsService(nil, nil)

	overview := svc.Overview(context.Background(), "30d")
	assert.False(t, overview.IsLive)
	assert.Equal(t, errNotConfigured.Error(), overview.Error)
	assert.Equal(t, []dto.OverviewDay{}, overview.DailyData)
	assert.Equal(t, "30d", overview.TimeRange)

	realtime := svc.Realtime(context.Background())
	assert.False(t, realtime.IsLive)
	assert.Empty(t, realtime.Countries)

	h := svc.Health()
	assert.False(t, h.Configured)
	assert.Equal(t, "healthy", h.Status)
}

func TestAnalyticsService_Overview_BuildsAndCaches(t *testing.T) {
	reporter := new(MockAnalyticsReporter)
	store := new(MockCache)
	svc := newAnalyticsService(reporter, store)

	key := "interviewprep:analytics:report:overview:7d"
	store.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
	reporter.On("RunReport", mock.Anything, mock.MatchedBy(func(r domain.ReportRequest) bool {
		return r.StartDate == "2025-05-03" && r.EndDate == "2025-05-10" && r.OrderBy == "date"
	})).Return([]domain.ReportRow{
		{Dimensions: map[string]string{"date": "20250509"}, Metrics: map[string]float64{"totalUsers": 4, "sessions": 6, "bounceRate": 0.5, "averageSessionDuration": 100}},
		{Dimensions: map[string]string{"date": "20250510"}, Metrics: map[string]float64{"totalUsers": 2, "sessions": 3, "bounceRate": 0.3, "averageSessionDuration": 50}},
	}, nil)
	var stored string
	store.On("Set", mock.Anything, key, mock.AnythingOfType("string"), 5*time.Minute).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(nil)

	rep := svc.Overview(context.Background(), "")
	assert.True(t, rep.IsLive)
	assert.Equal(t, int64(6), rep.Totals.TotalUsers)
	assert.Equal(t, int64(9), rep.Totals.Sessions)
	assert.InDelta(t, 0.4, rep.Totals.BounceRate, 1e-9)
	assert.InDelta(t, 75.0, rep.Totals.AverageDuration, 1e-9)
	assert.Len(t, rep.DailyData, 2)

	var decoded dto.OverviewReport
	require.NoError(t, json.Unmarshal([]byte(stored), &decoded))
	assert.Equal(t, int64(6), decoded.Totals.TotalUsers)
}

func TestAnalyticsService_Overview_CacheHitSkipsReporter(t *testing.T) {
	reporter := new(MockAnalyticsReporter)
	store := new(MockCache)
	svc := newAnalyticsService(reporter, store)

	raw, err := json.Marshal(dto.OverviewReport{Totals: dto.OverviewTotals{TotalUsers: 42}, ReportMeta: dto.ReportMeta{IsLive: true}})
	require.NoError(t, err)
	store.On("Get", mock.Anything, "interviewprep:analytics:report:overview:90d").Return(string(raw), nil)

	rep := svc.Overview(context.Background(), "90d")
	assert.Equal(t, int64(42), rep.Totals.TotalUsers)
	assert.Equal(t, "2025-02-09", rep.StartDate)
	reporter.AssertNotCalled(t, "RunReport", mock.Anything, mock.Anything)
}

func TestAnalyticsService_Overview_FailureIsNotCached(t *testing.T) {
	reporter := new(MockAnalyticsReporter)
	store := new(MockCache)
	svc := newAnalyticsService(reporter, store)

	store.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	reporter.On("RunReport", mock.Anything, mock.Anything).Return(nil, errors.New("permission denied"))

	rep := svc.Overview(context.Background(), "7d")
	assert.False(t, rep.IsLive)
	assert.Equal(t, "permission denied", rep.Error)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsService_Realtime_SortsAndSkipsUnset(t *testing.T) {
	reporter := new(MockAnalyticsReporter)
	svc := newAnalyticsService(reporter, nil)
	reporter.On("RunRealtimeReport", mock.Anything, mock.Anything, []string{"activeUsers"}).Return([]domain.ReportRow{
		{Dimensions: map[string]string{"country": "Germany", "deviceCategory": "desktop"}, Metrics: map[string]float64{"activeUsers": 2}},
		{Dimensions: map[string]string{"country": "(not set)"}, Metrics: map[string]float64{"activeUsers": 1}},
		{Dimensions: map[string]string{"country": "India", "deviceCategory": "mobile", "platform": "android"}, Metrics: map[string]float64{"activeUsers": 5}},
	}, nil)

	rep := svc.Realtime(context.Background())
	assert.True(t, rep.IsLive)
	assert.Equal(t, int64(8), rep.ActiveUsers)
	require.Len(t, rep.Countries, 2)
	assert.Equal(t, "India", rep.Countries[0].Country)
	require.Len(t, rep.Devices, 2)
	assert.Equal(t, "unknown", rep.Devices[0].Platform)
	assert.Equal(t, "android", rep.Devices[1].Platform)
}

func TestAnalyticsService_Health_Configured(t *testing.T) {
	h := newAnalyticsService(new(MockAnalyticsReporter), nil).Health()
	assert.True(t, h.Configured)
	assert.Equal(t, "properties/123", h.PropertyID)
	assert.Contains(t, h.Endpoints, "/api/analytics/realtime")
}
