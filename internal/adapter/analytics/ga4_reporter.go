package analytics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"interview-prep/internal/config"
	"interview-prep/internal/domain"

	"golang.org/x/oauth2/google"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when no property or credentials are set.
var ErrNotConfigured = errors.New("ga4 reporting is not configured")

var _ domain.AnalyticsReporter = (*GA4Reporter)(nil)

// GA4Reporter runs reports through the GA4 Data API.
type GA4Reporter struct {
	svc        *analyticsdata.Service
	propertyID string
}

// NewGA4Reporter authenticates with service-account credentials taken from
// CredentialsJSON or CredentialsFile. Extra options are appended last.
func NewGA4Reporter(ctx context.Context, cfg config.GA4Config, opts ...option.ClientOption) (*GA4Reporter, error) {
	if cfg.PropertyID == "" {
		return nil, ErrNotConfigured
	}

	var all []option.ClientOption
	raw := []byte(cfg.CredentialsJSON)
	if len(raw) == 0 && cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read ga4 credentials: %w", err)
		}
		raw = b
	}
	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, analyticsdata.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse ga4 credentials: %w", err)
		}
		all = append(all, option.WithCredentials(creds))
	} else if len(opts) == 0 {
		return nil, ErrNotConfigured
	}
	all = append(all, opts...)

	svc, err := analyticsdata.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create ga4 data service: %w", err)
	}
	return &GA4Reporter{svc: svc, propertyID: cfg.PropertyID}, nil
}

func (r *GA4Reporter) PropertyID() string { return r.propertyID }

func (r *GA4Reporter) property() string { return "properties/" + r.propertyID }

// RunReport orders by OrderBy descending when it names a requested metric,
// ascending when it names a dimension.
func (r *GA4Reporter) RunReport(ctx context.Context, req domain.ReportRequest) ([]domain.ReportRow, error) {
	body := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: req.StartDate, EndDate: req.EndDate}},
		Dimensions: dimensions(req.Dimensions),
		Metrics:    metrics(req.Metrics),
		Limit:      req.Limit,
	}
	if ob := orderBy(req); ob != nil {
		body.OrderBys = []*analyticsdata.OrderBy{ob}
	}

	resp, err := r.svc.Properties.RunReport(r.property(), body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ga4 runReport: %w", err)
	}
	return toRows(resp.DimensionHeaders, resp.MetricHeaders, resp.Rows), nil
}

func (r *GA4Reporter) RunRealtimeReport(ctx context.Context, dims, mets []string) ([]domain.ReportRow, error) {
	body := &analyticsdata.RunRealtimeReportRequest{
		Dimensions: dimensions(dims),
		Metrics:    metrics(mets),
	}
	resp, err := r.svc.Properties.RunRealtimeReport(r.property(), body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ga4 runRealtimeReport: %w", err)
	}
	return toRows(resp.DimensionHeaders, resp.MetricHeaders, resp.Rows), nil
}

func dimensions(names []string) []*analyticsdata.Dimension {
	out := make([]*analyticsdata.Dimension, 0, len(names))
	for _, n := range names {
		out = append(out, &analyticsdata.Dimension{Name: n})
	}
	return out
}

func metrics(names []string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, 0, len(names))
	for _, n := range names {
		out = append(out, &analyticsdata.Metric{Name: n})
	}
	return out
}

func orderBy(req domain.ReportRequest) *analyticsdata.OrderBy {
	if req.OrderBy == "" {
		return nil
	}
	for _, m := range req.Metrics {
		if m == req.OrderBy {
			return &analyticsdata.OrderBy{Metric: &analyticsdata.MetricOrderBy{MetricName: m}, Desc: true}
		}
	}
	return &analyticsdata.OrderBy{Dimension: &analyticsdata.DimensionOrderBy{DimensionName: req.OrderBy}}
}

func toRows(dh []*analyticsdata.DimensionHeader, mh []*analyticsdata.MetricHeader, rows []*analyticsdata.Row) []domain.ReportRow {
	out := make([]domain.ReportRow, 0, len(rows))
	for _, row := range rows {
		rr := domain.ReportRow{
			Dimensions: make(map[string]string, len(dh)),
			Metrics:    make(map[string]float64, len(mh)),
		}
		for i, dv := range row.DimensionValues {
			if i < len(dh) {
				rr.Dimensions[dh[i].Name] = dv.Value
			}
		}
		for i, mv := range row.MetricValues {
			if i < len(mh) {
				v, _ := strconv.ParseFloat(mv.Value, 64)
				rr.Metrics[mh[i].Name] = v
			}
		}
		out = append(out, rr)
	}
	return out
}
