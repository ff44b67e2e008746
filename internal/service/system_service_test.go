package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name       string
		db, ms, er float64
		wantScore  int
		wantStatus string
	}{
		{"all quiet", 10, 120, 0.5, 100, "healthy"},
		{"busy database", 85, 120, 0.5, 85, "warning"},
		{"slow and failing", 50, 600, 6, 55, "critical"},
		{"everything bad", 95, 600, 6, 25, "critical"},
		{"moderate", 10, 350, 3, 80, "warning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, status := healthScore(tt.db, tt.ms, tt.er)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0h 5m", formatUptime(5*time.Minute))
	assert.Equal(t, "2d 3h 4m", formatUptime(51*time.Hour+4*time.Minute))
}

func TestSystemService_Status_DefaultsWithoutTraffic(t *testing.T) {
	stats := new(MockStatsRepository)
	stats.On("CollectionCounts", mock.Anything).Return(domain.CollectionCounts{Users: 10, Sessions: 20, Questions: 70}, nil)
	stats.On("ActiveConnections", mock.Anything).Return(int64(7), nil)
	stats.On("DataSizeBytes", mock.Anything).Return(float64(256<<20), nil)

	started := time.Now().UTC().Add(-3 * 24 * time.Hour)
	svc := NewSystemService(stats, metrics.NewRequestLog(10), started)

	resp, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultResponseTimeMs, resp.APIResponseTime)
	assert.Equal(t, defaultErrorRate, resp.ErrorRate)
	assert.Equal(t, 0, resp.RequestsLastHour)
	assert.Equal(t, int64(100), resp.TotalDocs)
	assert.Equal(t, int64(7), resp.ActiveConnections)
	assert.Equal(t, 25.0, resp.DatabaseUsage)
	assert.Equal(t, 256.0, resp.DatabaseSizeMB)
	assert.Equal(t, 10.0, resp.Uptime)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 100, resp.HealthScore)
}

func TestSystemService_Status_UsesRequestLog(t *testing.T) {
	stats := new(MockStatsRepository)
	stats.On("CollectionCounts", mock.Anything).Return(domain.CollectionCounts{Users: 500_000, Sessions: 400_000}, nil)
	stats.On("ActiveConnections", mock.Anything).Return(int64(0), errors.New("not authorized"))
	stats.On("DataSizeBytes", mock.Anything).Return(float64(0), errors.New("not authorized"))

	log := metrics.NewRequestLog(10)
	now := time.Now()
	log.Record(metrics.RequestSample{Timestamp: now, Latency: 400 * time.Millisecond, Path: "/api/a"})
	log.Record(metrics.RequestSample{Timestamp: now, Latency: 600 * time.Millisecond, Path: "/api/b", IsError: true})
	svc := NewSystemService(stats, log, now.Add(-time.Hour))

	resp, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, resp.APIResponseTime)
	assert.Equal(t, 50.0, resp.ErrorRate)
	assert.Equal(t, 2, resp.RequestsLastHour)
	assert.Equal(t, 90.0, resp.DatabaseUsage)
	assert.Equal(t, 65, resp.HealthScore)
	assert.Equal(t, "critical", resp.Status)
}

func TestSystemService_Summary_DegradesOnStoreFailure(t *testing.T) {
	stats := new(MockStatsRepository)
	stats.On("CollectionCounts", mock.Anything).Return(domain.CollectionCounts{}, errors.New("connection refused"))
	svc := NewSystemService(stats, metrics.NewRequestLog(10), time.Now().Add(-2*time.Hour))

	summary := svc.Summary(context.Background())
	assert.Equal(t, "unknown", summary.Status)
	assert.Equal(t, defaultResponseTimeMs, summary.APIResponseTime)
	assert.Equal(t, "2h 0m", summary.Uptime)
}

func TestSystemService_Metrics_IncludesRuntime(t *testing.T) {
	stats := new(MockStatsRepository)
	stats.On("CollectionCounts", mock.Anything).Return(domain.CollectionCounts{}, nil)
	stats.On("ActiveConnections", mock.Anything).Return(int64(1), nil)
	stats.On("DataSizeBytes", mock.Anything).Return(float64(0), nil)
	log := metrics.NewRequestLog(10)
	log.Record(metrics.RequestSample{Timestamp: time.Now(), Latency: time.Millisecond})

	resp, err := NewSystemService(stats, log, time.Now()).Metrics(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
	assert.Positive(t, resp.Runtime.NumCPU)
	assert.Equal(t, 1, resp.TrackedTotal)
}
