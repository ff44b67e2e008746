package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tv-key", r.Header.Get("Authorization"))

		var body tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "closures javascript", body.Query)
		assert.Equal(t, 3, body.MaxResults)
		assert.Equal(t, "advanced", body.SearchDepth)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Closures","url":"https://developer.mozilla.org/closures","content":"c","score":0.9},
			{"title":"Video","url":"https://youtu.be/abc","content":"v","score":0.7}
		]}`))
	}))
	defer srv.Close()

	c := NewTavilyClient("tv-key", srv.URL, srv.Client())
	results := c.Search(context.Background(), "closures javascript", 3)

	require.Len(t, results, 2)
	assert.Equal(t, "Closures", results[0].Title)
	assert.Equal(t, "https://youtu.be/abc", results[1].URL)
	assert.Equal(t, 0.7, results[1].Score)
}

func TestTavilyClient_FailuresReturnEmpty(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewTavilyClient("tv-key", srv.URL, srv.Client())
	for i := 0; i < 8; i++ {
		assert.Empty(t, c.Search(context.Background(), "q", 3))
	}
	// breaker opens after five consecutive failures
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

func TestTavilyClient_Unconfigured(t *testing.T) {
	c := NewTavilyClient("", "", nil)
	assert.Empty(t, c.Search(context.Background(), "q", 3))
}
