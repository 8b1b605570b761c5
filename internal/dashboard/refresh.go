package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reloader reinstalls the dataset from its sources.
type Reloader interface {
	Reload(ctx context.Context) (*Dataset, error)
}

// Refresher reloads the dataset on a fixed interval so remote sources are
// picked up without a restart.
type Refresher struct {
	reloader       Reloader
	interval       time.Duration
	clock          clockwork.Clock
	logger         *slog.Logger
	initialBackoff time.Duration
}

// NewRefresher creates a Refresher. A nil clock uses real time.
func NewRefresher(r Reloader, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{
		reloader:       r,
		interval:       interval,
		clock:          clock,
		logger:         logger,
		initialBackoff: 200 * time.Millisecond,
	}
}

// Run reloads every interval until ctx is cancelled. A failed reload is
// retried with exponential backoff starting at 200ms and capped at the
// interval; the installed dataset is left in place meanwhile. Run fails
// immediately when the interval is not positive.
func (r *Refresher) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.interval)
	}
	r.logger.Info("dataset refresh started", "interval", r.interval)

	wait := r.interval
	backoff := r.initialBackoff
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("dataset refresh stopping", "reason", ctx.Err())
			return nil
		case <-r.clock.After(wait):
		}

		if _, err := r.reloader.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("dataset refresh failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = min(backoff*2, r.interval)
			continue
		}
		wait = r.interval
		backoff = r.initialBackoff
	}
}
