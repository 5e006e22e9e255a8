// Package janitor reclaims carts abandoned beyond the retention window. It
// runs on demand for the operator command and opportunistically, throttled
// by a persisted marker, during normal request handling.
package janitor

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultRetentionDays = 30
	DefaultInterval      = 24 * time.Hour
)

// SweepStore deletes carts last modified before a cutoff.
type SweepStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Janitor struct {
	carts         SweepStore
	marker        MarkerStore
	interval      time.Duration
	retentionDays int
	logger        *slog.Logger
	now           func() time.Time

	mu sync.Mutex
}

func New(carts SweepStore, marker MarkerStore, interval time.Duration, retentionDays int, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Janitor{
		carts:         carts,
		marker:        marker,
		interval:      interval,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

// Sweep deletes every cart untouched for more than the given number of days
// and returns the count. Idempotent: a second call finds nothing to delete.
func (j *Janitor) Sweep(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = j.retentionDays
	}
	cutoff := j.now().AddDate(0, 0, -days)
	return j.carts.DeleteOlderThan(ctx, cutoff)
}

// MaybeSweep runs a sweep at most once per interval, gated by the persisted
// marker. All failures are swallowed: a missed sweep is a delayed cleanup,
// never a request failure.
func (j *Janitor) MaybeSweep(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if last, ok := j.marker.LastRun(); ok && now.Sub(last) < j.interval {
		return
	}

	deleted, err := j.Sweep(ctx, j.retentionDays)
	if err != nil {
		j.logger.Warn("opportunistic cart sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("swept expired carts", "deleted", deleted, "retention_days", j.retentionDays)
	}
	j.marker.SetLastRun(now)
}

// Middleware triggers the throttled sweep on GET requests before handling
// them. Mutating requests are left alone.
func (j *Janitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			j.MaybeSweep(r.Context())
		}
		next.ServeHTTP(w, r)
	})
}
