package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"interview-prep/internal/cache"
	"interview-prep/internal/domain"
	"interview-prep/internal/logger"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// maxIDsPerCall is the YouTube Data API limit for videos.list.
const maxIDsPerCall = 50

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

var _ domain.VideoMetadata = (*Client)(nil)

// Client implements domain.VideoMetadata with the YouTube Data API v3 and a
// read-through cache.
type Client struct {
	svc      *yt.Service
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewClient builds the API service. Extra options are appended after the key,
// which lets tests point the client at a local endpoint.
func NewClient(ctx context.Context, apiKey string, c domain.Cache, cacheTTL time.Duration, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is empty")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, cache: c, cacheTTL: cacheTTL}, nil
}

// Videos returns details for the ids it could resolve. Cached entries are
// served without an API call.
func (c *Client) Videos(ctx context.Context, ids []string) (map[string]domain.VideoDetails, error) {
	out := make(map[string]domain.VideoDetails, len(ids))
	var misses []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if d, ok := c.cached(ctx, id); ok {
			out[id] = d
			continue
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += maxIDsPerCall {
		end := start + maxIDsPerCall
		if end > len(misses) {
			end = len(misses)
		}
		resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(misses[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return out, fmt.Errorf("youtube videos.list: %w", err)
		}
		for _, item := range resp.Items {
			d := toDetails(item)
			out[d.ID] = d
			c.store(ctx, d)
		}
	}
	return out, nil
}

func (c *Client) cached(ctx context.Context, id string) (domain.VideoDetails, bool) {
	if c.cache == nil {
		return domain.VideoDetails{}, false
	}
	raw, err := c.cache.Get(ctx, cache.VideoKey(id))
	if err != nil {
		return domain.VideoDetails{}, false
	}
	var d domain.VideoDetails
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return domain.VideoDetails{}, false
	}
	return d, true
}

func (c *Client) store(ctx context.Context, d domain.VideoDetails) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cache.VideoKey(d.ID), string(raw), c.cacheTTL); err != nil {
		logger.Get().Warn("Failed to cache video details", zap.String("video_id", d.ID), zap.Error(err))
	}
}

func toDetails(item *yt.Video) domain.VideoDetails {
	d := domain.VideoDetails{ID: item.Id}
	if item.Snippet != nil {
		d.Title = item.Snippet.Title
		d.Channel = item.Snippet.ChannelTitle
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			d.ThumbnailURL = item.Snippet.Thumbnails.High.Url
		}
	}
	if item.ContentDetails != nil {
		d.Duration = FormatISODuration(item.ContentDetails.Duration)
	}
	if item.Statistics != nil {
		d.Views = int64(item.Statistics.ViewCount)
	}
	return d
}

// FormatISODuration renders an ISO-8601 duration such as PT1H2M3S as 1:02:03.
func FormatISODuration(iso string) string {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil {
		return ""
	}
	n := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}
	hours := n(m[1])*24 + n(m[2])
	mins, secs := n(m[3]), n(m[4])
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// VideoID extracts the id from youtube.com/watch, youtu.be, shorts and embed URLs.
func VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live") {
			return parts[1]
		}
	}
	return ""
}
