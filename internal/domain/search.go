package domain

import "context"

// SearchResult is one web search hit.
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
	Author        string  `json:"author,omitempty"`
	SiteName      string  `json:"site_name,omitempty"`
}

// WebSearcher queries a web search API. Implementations return an empty
// slice rather than an error when the upstream fails.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []SearchResult
}

// VideoDetails is metadata for one video.
type VideoDetails struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Duration     string `json:"duration"`
	Views        int64  `json:"views"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// VideoMetadata looks up video details by id.
type VideoMetadata interface {
	Videos(ctx context.Context, ids []string) (map[string]VideoDetails, error)
}
