package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLog(size int, now time.Time) *RequestLog {
	l := NewRequestLog(size)
	l.now = func() time.Time { return now }
	return l
}

func TestRequestLog_RingOverwritesOldest(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := fixedLog(3, now)

	for i := 1; i <= 5; i++ {
		l.Record(RequestSample{Timestamp: now.Add(-time.Duration(10-i) * time.Second), Path: string(rune('a' + i - 1))})
	}

	assert.Equal(t, 3, l.Len())
	samples := l.Since(time.Hour)
	require.Len(t, samples, 3)
	assert.Equal(t, "c", samples[0].Path)
	assert.Equal(t, "e", samples[2].Path)
}

func TestRequestLog_Aggregates(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := fixedLog(DefaultRequestLogSize, now)

	assert.Equal(t, 125.0, l.AverageLatencyMillis(5*time.Minute, 125))
	assert.Equal(t, 0.5, l.ErrorRatePercent(time.Hour, 0.5))

	l.Record(RequestSample{Timestamp: now.Add(-time.Minute), Latency: 100 * time.Millisecond})
	l.Record(RequestSample{Timestamp: now.Add(-2 * time.Minute), Latency: 300 * time.Millisecond, IsError: true})
	l.Record(RequestSample{Timestamp: now.Add(-30 * time.Minute), Latency: 900 * time.Millisecond})
	l.Record(RequestSample{Timestamp: now.Add(-2 * time.Hour), Latency: time.Second, IsError: true})

	assert.InDelta(t, 200.0, l.AverageLatencyMillis(5*time.Minute, 125), 0.001)
	assert.InDelta(t, 33.333, l.ErrorRatePercent(time.Hour, 0.5), 0.01)
	assert.Equal(t, 3, l.Count(time.Hour))
}

func TestRequestLog_ConcurrentRecord(t *testing.T) {
	l := NewRequestLog(100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Record(RequestSample{Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, l.Len())
}
