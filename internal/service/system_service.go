package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"
	"interview-prep/internal/util"

	"go.uber.org/zap"
)

const (
	defaultResponseTimeMs = 125.0
	defaultErrorRate      = 0.5
	responseTimeWindow    = 5 * time.Minute
	errorRateWindow       = time.Hour
	uptimeHorizon         = 30 * 24 * time.Hour
	databaseBudgetBytes   = 1 << 30
	databaseBudgetDocs    = 1_000_000
)

// SystemService reports process health from the request log and MongoDB.
type SystemService interface {
	Status(ctx context.Context) (*dto.SystemStatusResponse, error)
	Metrics(ctx context.Context) (*dto.SystemMetricsResponse, error)
	Summary(ctx context.Context) dto.SystemSummary
}

type systemServiceImpl struct {
	stats     domain.StatsRepository
	requests  *metrics.RequestLog
	startedAt time.Time
	now       func() time.Time
}

func NewSystemService(stats domain.StatsRepository, requests *metrics.RequestLog, startedAt time.Time) SystemService {
	return &systemServiceImpl{
		stats:     stats,
		requests:  requests,
		startedAt: startedAt,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// healthScore starts at 100 and subtracts penalties for database pressure,
// slow responses and errors.
func healthScore(dbUsage, responseMs, errorRate float64) (int, string) {
	score := 100
	switch {
	case dbUsage > 90:
		score -= 30
	case dbUsage > 80:
		score -= 15
	}
	switch {
	case responseMs > 500:
		score -= 20
	case responseMs > 300:
		score -= 10
	}
	switch {
	case errorRate > 5:
		score -= 25
	case errorRate > 2:
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	switch {
	case score >= 90:
		return score, "healthy"
	case score >= 70:
		return score, "warning"
	default:
		return score, "critical"
	}
}

func (s *systemServiceImpl) Status(ctx context.Context) (*dto.SystemStatusResponse, error) {
	now := s.now()
	counts, err := s.stats.CollectionCounts(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to read collection counts", err)
	}

	resp := &dto.SystemStatusResponse{
		APIResponseTime:  util.Round(s.requests.AverageLatencyMillis(responseTimeWindow, defaultResponseTimeMs), 1),
		ErrorRate:        util.Round(s.requests.ErrorRatePercent(errorRateWindow, defaultErrorRate), 2),
		RequestsLastHour: s.requests.Count(errorRateWindow),
		TotalDocs:        counts.Total(),
		Timestamp:        now,
	}

	uptime := now.Sub(s.startedAt)
	resp.UptimeSeconds = int64(uptime.Seconds())
	resp.Uptime = util.Round(math.Min(float64(uptime)/float64(uptimeHorizon)*100, 100), 1)

	if conns, err := s.stats.ActiveConnections(ctx); err != nil {
		logger.Get().Debug("serverStatus unavailable", zap.Error(err))
	} else {
		resp.ActiveConnections = conns
	}

	if size, err := s.stats.DataSizeBytes(ctx); err != nil {
		logger.Get().Debug("dbStats unavailable, estimating usage from document count", zap.Error(err))
		resp.DatabaseUsage = util.Round(math.Min(float64(counts.Total())/databaseBudgetDocs*100, 100), 1)
	} else {
		resp.DatabaseSizeMB = util.Round(size/(1<<20), 2)
		resp.DatabaseUsage = util.Round(math.Min(size/databaseBudgetBytes*100, 100), 1)
	}

	resp.HealthScore, resp.Status = healthScore(resp.DatabaseUsage, resp.APIResponseTime, resp.ErrorRate)
	return resp, nil
}

func (s *systemServiceImpl) Metrics(ctx context.Context) (*dto.SystemMetricsResponse, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return &dto.SystemMetricsResponse{
		SystemStatusResponse: *status,
		Runtime: dto.RuntimeStats{
			GoVersion:   runtime.Version(),
			NumCPU:      runtime.NumCPU(),
			Goroutines:  runtime.NumGoroutine(),
			HeapAllocMB: util.Round(float64(mem.HeapAlloc)/(1<<20), 2),
			SysMB:       util.Round(float64(mem.Sys)/(1<<20), 2),
			NumGC:       mem.NumGC,
		},
		TrackedTotal: s.requests.Len(),
	}, nil
}

// Summary is the dashboard card. Failures degrade to the request-log figures.
func (s *systemServiceImpl) Summary(ctx context.Context) dto.SystemSummary {
	status, err := s.Status(ctx)
	if err != nil {
		logger.Get().Warn("System status unavailable for dashboard", zap.Error(err))
		return dto.SystemSummary{
			Status:          "unknown",
			APIResponseTime: util.Round(s.requests.AverageLatencyMillis(responseTimeWindow, defaultResponseTimeMs), 1),
			ErrorRate:       util.Round(s.requests.ErrorRatePercent(errorRateWindow, defaultErrorRate), 2),
			Uptime:          formatUptime(s.now().Sub(s.startedAt)),
		}
	}
	return dto.SystemSummary{
		Status:          status.Status,
		APIResponseTime: status.APIResponseTime,
		ErrorRate:       status.ErrorRate,
		DatabaseUsage:   status.DatabaseUsage,
		Uptime:          formatUptime(time.Duration(status.UptimeSeconds) * time.Second),
	}
}

func formatUptime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
