package supervisor

import (
	"context"
	"fmt"
	"time"

	"postboard/internal/logging"
	"postboard/internal/metrics"
)

// ExpiredCleaner removes expired sessions and reports how many went.
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionJanitor sweeps expired sessions on a fixed interval. Lookups
// already reject expired sessions; the sweep only reclaims storage.
type SessionJanitor struct {
	store    ExpiredCleaner
	interval time.Duration
}

func NewSessionJanitor(store ExpiredCleaner, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionJanitor{store: store, interval: interval}
}

func (j *SessionJanitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := j.sweep(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context) error {
	n, err := j.store.CleanupExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("session cleanup: %w", err)
	}
	if n > 0 {
		metrics.SessionsExpired.Add(float64(n))
		logging.Debug().Int("removed", n).Msg("expired sessions removed")
	}
	return nil
}

func (j *SessionJanitor) String() string { return "session-janitor" }
