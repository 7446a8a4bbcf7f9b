package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count     int
	errors    int
	totalTime time.Duration
}

// statsLogger aggregates request counts and latency per route pattern and
// logs them once per interval.
type statsLogger struct {
	stats    map[string]*endpointStats
	mu       sync.Mutex
	interval time.Duration
}

func newStatsLogger(interval time.Duration) *statsLogger {
	return &statsLogger{
		stats:    make(map[string]*endpointStats),
		interval: interval,
	}
}

func (sl *statsLogger) run(ctx context.Context) {
	ticker := time.NewTicker(sl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sl.flush()
			return
		case <-ticker.C:
			sl.flush()
		}
	}
}

func (sl *statsLogger) flush() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		if stats.count == 0 {
			continue
		}
		avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0
		slog.Info("endpoint stats",
			"endpoint", endpoint,
			"count", stats.count,
			"errors", stats.errors,
			"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
			"period", sl.interval,
		)
	}
	clear(sl.stats)
}

func (sl *statsLogger) snapshot(endpoint string) endpointStats {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if s, ok := sl.stats[endpoint]; ok {
		return *s
	}
	return endpointStats{}
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)

		// the pattern is only known once routing is done
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		endpoint := r.Method + " " + pattern

		sl.mu.Lock()
		if _, exists := sl.stats[endpoint]; !exists {
			sl.stats[endpoint] = &endpointStats{}
		}
		sl.stats[endpoint].count++
		sl.stats[endpoint].totalTime += duration
		if rec.status >= http.StatusInternalServerError {
			sl.stats[endpoint].errors++
		}
		sl.mu.Unlock()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
