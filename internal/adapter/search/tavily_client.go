package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const breakerName = "tavily-search"

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
		Author        string  `json:"author"`
		SiteName      string  `json:"site_name"`
	} `json:"results"`
}

// TavilyClient implements domain.WebSearcher against the Tavily search API.
// Calls go through a circuit breaker; any failure yields an empty result.
type TavilyClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]domain.SearchResult]
}

// NewTavilyClient creates a client. httpClient may be nil.
func NewTavilyClient(apiKey, url string, httpClient *http.Client) *TavilyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]domain.SearchResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     90 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &TavilyClient{apiKey: apiKey, url: url, httpClient: httpClient, cb: cb}
}

// Search returns up to maxResults hits for query, or nil on any failure.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) []domain.SearchResult {
	if c.apiKey == "" || c.url == "" {
		logger.Get().Warn("Web search not configured, returning no results")
		return nil
	}
	results, err := c.cb.Execute(func() ([]domain.SearchResult, error) {
		return c.do(ctx, query, maxResults)
	})
	if err != nil {
		logger.Get().Warn("Web search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return results
}

func (c *TavilyClient) do(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:         query,
		SearchDepth:   "advanced",
		MaxResults:    maxResults,
		IncludeAnswer: true,
		IncludeImages: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, domain.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
			Author:        r.Author,
			SiteName:      r.SiteName,
		})
	}
	return results, nil
}

var _ domain.WebSearcher = (*TavilyClient)(nil)
