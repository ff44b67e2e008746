package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"interview-prep/internal/cache"
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topCountries    = 10
	geoRows         = 20
	defaultRange    = "7d"
	reportDayLayout = "2006-01-02"
)

// AnalyticsEndpoints is reported by the health check.
var AnalyticsEndpoints = []string{
	"/api/analytics/dashboard", "/api/analytics/overview", "/api/analytics/realtime",
	"/api/analytics/acquisition", "/api/analytics/pages", "/api/analytics/geographic",
	"/api/analytics/devices", "/api/analytics/events",
}

// AnalyticsService reads product analytics reports. Every report degrades to
// an empty payload with is_live=false when the reporting API is unavailable.
type AnalyticsService interface {
	Dashboard(ctx context.Context, timeRange string) *dto.AnalyticsDashboard
	Overview(ctx context.Context, timeRange string) *dto.OverviewReport
	Realtime(ctx context.Context) *dto.RealtimeReport
	Acquisition(ctx context.Context, timeRange string) *dto.AcquisitionReport
	Pages(ctx context.Context, timeRange string) *dto.PagesReport
	Geographic(ctx context.Context, timeRange string) *dto.GeographicReport
	Devices(ctx context.Context, timeRange string) *dto.DevicesReport
	Events(ctx context.Context, timeRange string) *dto.EventsReport
	Health() dto.AnalyticsHealth
}

type analyticsServiceImpl struct {
	reporter domain.AnalyticsReporter
	store    domain.Cache
	ttl      time.Duration
	now      func() time.Time
}

// NewAnalyticsService accepts a nil reporter (not configured) and a nil store
// (no report caching).
func NewAnalyticsService(reporter domain.AnalyticsReporter, store domain.Cache, ttl time.Duration) AnalyticsService {
	return &analyticsServiceImpl{
		reporter: reporter,
		store:    store,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// reportDates maps a time range to GA4 start and end dates.
func reportDates(timeRange string, now time.Time) (string, string, string) {
	today := startOfDay(now)
	end := today.Format(reportDayLayout)
	switch timeRange {
	case "24h":
		return timeRange, today.AddDate(0, 0, -1).Format(reportDayLayout), end
	case "30d":
		return timeRange, today.AddDate(0, 0, -30).Format(reportDayLayout), end
	case "90d":
		return timeRange, today.AddDate(0, 0, -90).Format(reportDayLayout), end
	case "today":
		return timeRange, end, end
	case "yesterday":
		y := today.AddDate(0, 0, -1).Format(reportDayLayout)
		return timeRange, y, y
	default:
		return defaultRange, today.AddDate(0, 0, -7).Format(reportDayLayout), end
	}
}

func (s *analyticsServiceImpl) meta(live bool, err error) dto.ReportMeta {
	m := dto.ReportMeta{Timestamp: s.now(), IsLive: live}
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

var errNotConfigured = errors.New("analytics reporting is not configured")

// cached returns the stored report for key or builds, stores and returns it.
// Failed builds are not cached.
func cached[T any](ctx context.Context, s *analyticsServiceImpl, key string, build func(context.Context) (T, error)) (T, error) {
	var out T
	if s.reporter == nil {
		return out, errNotConfigured
	}
	if s.store != nil {
		if raw, err := s.store.Get(ctx, key); err == nil {
			if json.Unmarshal([]byte(raw), &out) == nil {
				return out, nil
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	out, err := build(ctx)
	if err != nil {
		logger.Get().Warn("Analytics report failed", zap.String("key", key), zap.Error(err))
		return out, err
	}
	if s.store != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := s.store.Set(ctx, key, string(raw), s.ttl); err != nil {
				logger.Get().Warn("Analytics cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

func metricCount(r domain.ReportRow, metric string) int64 {
	return int64(r.Metrics[metric])
}

func dimOr(r domain.ReportRow, dim, fallback string) string {
	if v := r.Dimensions[dim]; v != "" {
		return v
	}
	return fallback
}

func (s *analyticsServiceImpl) Overview(ctx context.Context, timeRange string) *dto.OverviewReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("overview", timeRange), func(ctx context.Context) (dto.OverviewReport, error) {
		rows, err := s.reporter.RunReport(ctx, domain.ReportRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"date"},
			Metrics: []string{"totalUsers", "sessions", "screenPageViews", "engagedSessions",
				"averageSessionDuration", "bounceRate", "newUsers", "eventCount"},
			OrderBy: "date",
		})
		if err != nil {
			return dto.OverviewReport{}, err
		}
		rep := dto.OverviewReport{DailyData: make([]dto.OverviewDay, 0, len(rows))}
		t := &rep.Totals
		for _, r := range rows {
			day := dto.OverviewDay{
				Date:            r.Dimensions["date"],
				Users:           metricCount(r, "totalUsers"),
				Sessions:        metricCount(r, "sessions"),
				Pageviews:       metricCount(r, "screenPageViews"),
				EngagedSessions: metricCount(r, "engagedSessions"),
			}
			t.TotalUsers += day.Users
			t.Sessions += day.Sessions
			t.Pageviews += day.Pageviews
			t.EngagedSessions += day.EngagedSessions
			t.NewUsers += metricCount(r, "newUsers")
			t.Events += metricCount(r, "eventCount")
			t.AverageDuration += r.Metrics["averageSessionDuration"]
			t.BounceRate += r.Metrics["bounceRate"]
			rep.DailyData = append(rep.DailyData, day)
		}
		if n := float64(len(rows)); n > 0 {
			t.AverageDuration /= n
			t.BounceRate /= n
		}
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		rep = dto.OverviewReport{DailyData: []dto.OverviewDay{}, ReportMeta: s.meta(false, err)}
	}
	rep.TimeRange, rep.StartDate, rep.EndDate = timeRange, start, end
	return &rep
}

// Realtime is never cached.
func (s *analyticsServiceImpl) Realtime(ctx context.Context) *dto.RealtimeReport {
	empty := func(err error) *dto.RealtimeReport {
		return &dto.RealtimeReport{Countries: []dto.CountryUsers{}, Devices: []dto.RealtimeDevice{}, ReportMeta: s.meta(false, err)}
	}
	if s.reporter == nil {
		return empty(errNotConfigured)
	}
	rows, err := s.reporter.RunRealtimeReport(ctx, []string{"country", "deviceCategory", "platform"}, []string{"activeUsers"})
	if err != nil {
		logger.Get().Warn("Realtime report failed", zap.Error(err))
		return empty(err)
	}
	rep := &dto.RealtimeReport{Countries: []dto.CountryUsers{}, Devices: []dto.RealtimeDevice{}, ReportMeta: s.meta(true, nil)}
	for _, r := range rows {
		users := metricCount(r, "activeUsers")
		rep.ActiveUsers += users
		if c := r.Dimensions["country"]; c != "" && c != "(not set)" {
			rep.Countries = append(rep.Countries, dto.CountryUsers{Country: c, Users: users})
		}
		if d := r.Dimensions["deviceCategory"]; d != "" {
			rep.Devices = append(rep.Devices, dto.RealtimeDevice{Device: d, Platform: dimOr(r, "platform", "unknown"), Users: users})
		}
	}
	sort.SliceStable(rep.Countries, func(i, j int) bool { return rep.Countries[i].Users > rep.Countries[j].Users })
	if len(rep.Countries) > topCountries {
		rep.Countries = rep.Countries[:topCountries]
	}
	return rep
}

func (s *analyticsServiceImpl) Acquisition(ctx context.Context, timeRange string) *dto.AcquisitionReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("acquisition", timeRange), func(ctx context.Context) (dto.AcquisitionReport, error) {
		rows, err := s.reporter.RunReport(ctx, domain.ReportRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"sessionDefaultChannelGroup", "firstUserSource", "firstUserMedium"},
			Metrics:    []string{"totalUsers", "newUsers", "sessions", "engagedSessions"},
			OrderBy:    "totalUsers",
			Limit:      15,
		})
		if err != nil {
			return dto.AcquisitionReport{}, err
		}
		rep := dto.AcquisitionReport{
			Channels: make([]dto.ChannelRow, 0, len(rows)),
			Sources:  make([]dto.SourceRow, 0, len(rows)),
		}
		for _, r := range rows {
			users := metricCount(r, "totalUsers")
			rep.Channels = append(rep.Channels, dto.ChannelRow{
				Channel:         dimOr(r, "sessionDefaultChannelGroup", "Direct"),
				Users:           users,
				NewUsers:        metricCount(r, "newUsers"),
				Sessions:        metricCount(r, "sessions"),
				EngagedSessions: metricCount(r, "engagedSessions"),
			})
			rep.Sources = append(rep.Sources, dto.SourceRow{
				Source: dimOr(r, "firstUserSource", "direct"),
				Medium: dimOr(r, "firstUserMedium", "(none)"),
				Users:  users,
			})
		}
		rep.TotalChannels = len(rep.Channels)
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		return &dto.AcquisitionReport{Channels: []dto.ChannelRow{}, Sources: []dto.SourceRow{}, ReportMeta: s.meta(false, err)}
	}
	return &rep
}

func (s *analyticsServiceImpl) Pages(ctx context.Context, timeRange string) *dto.PagesReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("pages", timeRange), func(ctx context.Context) (dto.PagesReport, error) {
		rows, err := s.reporter.RunReport(ctx, domain.ReportRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"pageTitle", "pagePath", "country"},
			Metrics:    []string{"screenPageViews", "totalUsers", "averageSessionDuration", "bounceRate", "eventCount"},
			OrderBy:    "screenPageViews",
			Limit:      20,
		})
		if err != nil {
			return dto.PagesReport{}, err
		}
		rep := dto.PagesReport{Pages: make([]dto.PageRow, 0, len(rows))}
		for _, r := range rows {
			rep.Pages = append(rep.Pages, dto.PageRow{
				Title:       dimOr(r, "pageTitle", "Untitled"),
				Path:        dimOr(r, "pagePath", "/"),
				Country:     dimOr(r, "country", "Unknown"),
				Views:       metricCount(r, "screenPageViews"),
				Users:       metricCount(r, "totalUsers"),
				AvgDuration: r.Metrics["averageSessionDuration"],
				BounceRate:  r.Metrics["bounceRate"],
				Events:      metricCount(r, "eventCount"),
			})
		}
		rep.TotalPages = len(rep.Pages)
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		return &dto.PagesReport{Pages: []dto.PageRow{}, ReportMeta: s.meta(false, err)}
	}
	return &rep
}

func (s *analyticsServiceImpl) Geographic(ctx context.Context, timeRange string) *dto.GeographicReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("geographic", timeRange), func(ctx context.Context) (dto.GeographicReport, error) {
		rows, err := s.reporter.RunReport(ctx, domain.ReportRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"country", "city", "region"},
			Metrics:    []string{"totalUsers", "sessions", "screenPageViews"},
			OrderBy:    "totalUsers",
			Limit:      50,
		})
		if err != nil {
			return dto.GeographicReport{}, err
		}
		rep := dto.GeographicReport{Countries: []dto.CountryUsers{}, Cities: []dto.CityRow{}}
		for _, r := range rows {
			country := dimOr(r, "country", "Unknown")
			city := dimOr(r, "city", "Unknown")
			users := metricCount(r, "totalUsers")
			if country != "Unknown" {
				rep.Countries = append(rep.Countries, dto.CountryUsers{
					Country:   country,
					Users:     users,
					Sessions:  metricCount(r, "sessions"),
					Pageviews: metricCount(r, "screenPageViews"),
				})
			}
			if city != "Unknown" {
				rep.Cities = append(rep.Cities, dto.CityRow{City: city, Region: dimOr(r, "region", "Unknown"), Country: country, Users: users})
			}
		}
		rep.TotalCountries = len(rep.Countries)
		if len(rep.Countries) > geoRows {
			rep.Countries = rep.Countries[:geoRows]
		}
		if len(rep.Cities) > geoRows {
			rep.Cities = rep.Cities[:geoRows]
		}
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		return &dto.GeographicReport{Countries: []dto.CountryUsers{}, Cities: []dto.CityRow{}, ReportMeta: s.meta(false, err)}
	}
	return &rep
}

// Devices runs three single-dimension reports so user counts stay unique
// per device, browser and operating system.
func (s *analyticsServiceImpl) Devices(ctx context.Context, timeRange string) *dto.DevicesReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("devices", timeRange), func(ctx context.Context) (dto.DevicesReport, error) {
		var devices, browsers, systems []domain.ReportRow
		run := func(dim string, extra []string, out *[]domain.ReportRow) func() error {
			return func() (err error) {
				*out, err = s.reporter.RunReport(ctx, domain.ReportRequest{
					StartDate:  start,
					EndDate:    end,
					Dimensions: []string{dim},
					Metrics:    append([]string{"totalUsers"}, extra...),
					OrderBy:    "totalUsers",
					Limit:      10,
				})
				return
			}
		}
		g := new(errgroup.Group)
		g.Go(run("deviceCategory", []string{"sessions", "averageSessionDuration"}, &devices))
		g.Go(run("browser", nil, &browsers))
		g.Go(run("operatingSystem", nil, &systems))
		if err := g.Wait(); err != nil {
			return dto.DevicesReport{}, err
		}

		rep := dto.DevicesReport{
			Devices:          make([]dto.DeviceRow, 0, len(devices)),
			Browsers:         make([]dto.BrowserRow, 0, len(browsers)),
			OperatingSystems: make([]dto.OSRow, 0, len(systems)),
		}
		for _, r := range devices {
			rep.Devices = append(rep.Devices, dto.DeviceRow{
				Device:      dimOr(r, "deviceCategory", "Unknown"),
				Users:       metricCount(r, "totalUsers"),
				Sessions:    metricCount(r, "sessions"),
				AvgDuration: r.Metrics["averageSessionDuration"],
			})
		}
		for _, r := range browsers {
			rep.Browsers = append(rep.Browsers, dto.BrowserRow{Browser: dimOr(r, "browser", "Unknown"), Users: metricCount(r, "totalUsers")})
		}
		for _, r := range systems {
			rep.OperatingSystems = append(rep.OperatingSystems, dto.OSRow{OS: dimOr(r, "operatingSystem", "Unknown"), Users: metricCount(r, "totalUsers")})
		}
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		return &dto.DevicesReport{
			Devices:          []dto.DeviceRow{},
			Browsers:         []dto.BrowserRow{},
			OperatingSystems: []dto.OSRow{},
			ReportMeta:       s.meta(false, err),
		}
	}
	return &rep
}

func (s *analyticsServiceImpl) Events(ctx context.Context, timeRange string) *dto.EventsReport {
	timeRange, start, end := reportDates(timeRange, s.now())
	rep, err := cached(ctx, s, cache.ReportKey("events", timeRange), func(ctx context.Context) (dto.EventsReport, error) {
		rows, err := s.reporter.RunReport(ctx, domain.ReportRequest{
			StartDate:  start,
			EndDate:    end,
			Dimensions: []string{"eventName", "pagePath"},
			Metrics:    []string{"eventCount", "totalUsers"},
			OrderBy:    "eventCount",
			Limit:      25,
		})
		if err != nil {
			return dto.EventsReport{}, err
		}
		rep := dto.EventsReport{Events: make([]dto.EventRow, 0, len(rows))}
		for _, r := range rows {
			row := dto.EventRow{
				Name:  dimOr(r, "eventName", "Unknown"),
				Page:  dimOr(r, "pagePath", "/"),
				Count: metricCount(r, "eventCount"),
				Users: metricCount(r, "totalUsers"),
			}
			rep.TotalEvents += row.Count
			rep.Events = append(rep.Events, row)
		}
		rep.UniqueEvents = len(rep.Events)
		rep.ReportMeta = s.meta(true, nil)
		return rep, nil
	})
	if err != nil {
		return &dto.EventsReport{Events: []dto.EventRow{}, ReportMeta: s.meta(false, err)}
	}
	return &rep
}

func (s *analyticsServiceImpl) Dashboard(ctx context.Context, timeRange string) *dto.AnalyticsDashboard {
	var d dto.AnalyticsDashboard
	g := new(errgroup.Group)
	g.Go(func() error { d.Overview = *s.Overview(ctx, timeRange); return nil })
	g.Go(func() error { d.Realtime = *s.Realtime(ctx); return nil })
	g.Go(func() error { d.Acquisition = *s.Acquisition(ctx, timeRange); return nil })
	g.Go(func() error { d.Pages = *s.Pages(ctx, timeRange); return nil })
	g.Go(func() error { d.Geographic = *s.Geographic(ctx, timeRange); return nil })
	g.Go(func() error { d.Devices = *s.Devices(ctx, timeRange); return nil })
	g.Go(func() error { d.Events = *s.Events(ctx, timeRange); return nil })
	_ = g.Wait()
	d.ReportMeta = s.meta(d.Overview.IsLive, nil)
	return &d
}

func (s *analyticsServiceImpl) Health() dto.AnalyticsHealth {
	h := dto.AnalyticsHealth{Status: "healthy", Service: "analytics", Endpoints: AnalyticsEndpoints}
	if s.reporter != nil {
		h.Configured = true
		h.PropertyID = s.reporter.PropertyID()
	}
	return h
}
