package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"authsvc/internal/observability/metrics"
)

type AccountCleaner interface {
	CleanupUnverifiedAccounts(ctx context.Context) (int, error)
}

// Purger drops expired tokens, sessions and stale login counters.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (map[string]int64, error)
}

// CleanupWorker periodically removes unverified accounts and expired rows.
type CleanupWorker struct {
	interval time.Duration
	accounts AccountCleaner
	purger   Purger
	logger   *slog.Logger
	clock    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DefaultInterval applies when NewCleanupWorker is given a non-positive interval.
const DefaultInterval = 24 * time.Hour

// NewCleanupWorker builds a worker. purger may be nil.
func NewCleanupWorker(interval time.Duration, accounts AccountCleaner, purger Purger) *CleanupWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &CleanupWorker{
		interval: interval,
		accounts: accounts,
		purger:   purger,
		logger:   slog.Default(),
		clock:    time.Now,
	}
}

// RunOnce executes a single cleanup cycle. Both steps are attempted even if
// the first fails; errors are combined.
func (w *CleanupWorker) RunOnce(ctx context.Context) error {
	var errs []error

	w.logger.Info("running cleanup of unverified accounts")
	n, err := w.accounts.CleanupUnverifiedAccounts(ctx)
	if err != nil {
		w.logger.Error("cleanup of unverified accounts failed", "error", err, "deleted", n)
		errs = append(errs, err)
	} else {
		w.logger.Info("completed cleanup of unverified accounts", "deleted", n)
	}

	if w.purger != nil {
		counts, err := w.purger.PurgeExpired(ctx, w.clock().UTC())
		if err != nil {
			w.logger.Error("purge of expired records failed", "error", err)
			errs = append(errs, err)
		}
		for kind, c := range counts {
			metrics.CleanupDeletedTotal.WithLabelValues(kind).Add(float64(c))
		}
		if len(counts) > 0 {
			w.logger.Info("purged expired records", "counts", counts)
		}
	}

	return errors.Join(errs...)
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the worker and waits for an in-flight cycle to return.
func (w *CleanupWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *CleanupWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("cleanup cycle failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("cleanup cycle failed", "error", err)
			}
		}
	}
}
