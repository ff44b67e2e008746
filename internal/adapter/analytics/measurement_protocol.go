package analytics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"interview-prep/internal/domain"

	json "github.com/goccy/go-json"
)

const defaultCollectURL = "https://www.google-analytics.com/mp/collect"

var _ domain.EventForwarder = (*MeasurementProtocol)(nil)

// MeasurementProtocol forwards server-side events to GA4.
type MeasurementProtocol struct {
	measurementID string
	apiSecret     string
	endpoint      string
	httpClient    *http.Client
}

// NewMeasurementProtocol returns nil when the measurement id or secret is
// missing; callers treat a nil forwarder as disabled.
func NewMeasurementProtocol(measurementID, apiSecret, endpoint string, httpClient *http.Client) *MeasurementProtocol {
	if measurementID == "" || apiSecret == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = defaultCollectURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &MeasurementProtocol{
		measurementID: measurementID,
		apiSecret:     apiSecret,
		endpoint:      endpoint,
		httpClient:    httpClient,
	}
}

type mpEvent struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type mpPayload struct {
	ClientID string    `json:"client_id"`
	UserID   string    `json:"user_id,omitempty"`
	Events   []mpEvent `json:"events"`
}

func (m *MeasurementProtocol) Forward(ctx context.Context, event domain.TrackedEvent) error {
	clientID := event.ClientID
	if clientID == "" {
		clientID = "server"
	}
	body, err := json.Marshal(mpPayload{
		ClientID: clientID,
		UserID:   event.UserID,
		Events:   []mpEvent{{Name: event.Name, Params: event.Params}},
	})
	if err != nil {
		return fmt.Errorf("encode measurement payload: %w", err)
	}

	q := url.Values{}
	q.Set("measurement_id", m.measurementID)
	q.Set("api_secret", m.apiSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send measurement event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("measurement protocol returned %d", resp.StatusCode)
	}
	return nil
}
