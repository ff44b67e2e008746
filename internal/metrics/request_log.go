package metrics

import (
	"sync"
	"time"
)

// DefaultRequestLogSize bounds the in-memory latency history.
const DefaultRequestLogSize = 1000

// RequestSample is one completed request.
type RequestSample struct {
	Timestamp time.Time
	Latency   time.Duration
	IsError   bool
	Path      string
}

// RequestLog is a fixed-size ring of the most recent requests. It is created
// once per process and shared by the tracking middleware and the system
// status endpoints.
type RequestLog struct {
	mu      sync.Mutex
	samples []RequestSample
	next    int
	full    bool
	now     func() time.Time
}

// NewRequestLog returns a log holding at most size samples.
func NewRequestLog(size int) *RequestLog {
	if size <= 0 {
		size = DefaultRequestLogSize
	}
	return &RequestLog{samples: make([]RequestSample, size), now: time.Now}
}

// Record appends a sample, overwriting the oldest once the ring is full.
func (l *RequestLog) Record(s RequestSample) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples[l.next] = s
	l.next = (l.next + 1) % len(l.samples)
	if l.next == 0 {
		l.full = true
	}
}

// Len reports how many samples are held.
func (l *RequestLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.samples)
	}
	return l.next
}

// Since copies the samples newer than window, oldest first.
func (l *RequestLog) Since(window time.Duration) []RequestSample {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-window)
	out := make([]RequestSample, 0)
	count, start := l.next, 0
	if l.full {
		count, start = len(l.samples), l.next
	}
	for i := 0; i < count; i++ {
		s := l.samples[(start+i)%len(l.samples)]
		if s.Timestamp.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// AverageLatencyMillis averages latency over window, or returns fallback when
// nothing was recorded in it.
func (l *RequestLog) AverageLatencyMillis(window time.Duration, fallback float64) float64 {
	recent := l.Since(window)
	if len(recent) == 0 {
		return fallback
	}
	var total time.Duration
	for _, s := range recent {
		total += s.Latency
	}
	return float64(total.Microseconds()) / 1000 / float64(len(recent))
}

// ErrorRatePercent is the share of error responses over window, or fallback
// when nothing was recorded in it.
func (l *RequestLog) ErrorRatePercent(window time.Duration, fallback float64) float64 {
	recent := l.Since(window)
	if len(recent) == 0 {
		return fallback
	}
	errs := 0
	for _, s := range recent {
		if s.IsError {
			errs++
		}
	}
	return float64(errs) / float64(len(recent)) * 100
}

// Count is the number of samples recorded within window.
func (l *RequestLog) Count(window time.Duration) int {
	return len(l.Since(window))
}
