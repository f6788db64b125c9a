// Package worker hosts the background maintenance jobs that keep the
// platform healthy: the nightly job-window top-up sweep and expired
// session pruning.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

// ActiveSubscriptionLister enumerates the subscriptions whose job windows
// must be kept filled.
type ActiveSubscriptionLister interface {
	ListActiveSubscriptions(ctx context.Context) ([]application.Subscription, error)
}

// SubscriptionTopUpper extends one subscription's job window to the
// configured horizon.
type SubscriptionTopUpper interface {
	TopUp(ctx context.Context, sub application.Subscription) (int, error)
}

// SessionPruner removes sessions that can no longer authenticate anyone.
type SessionPruner interface {
	PruneExpiredSessions(ctx context.Context) (int, error)
}

// TopUpWorker runs the nightly sweep on a cron schedule. A failure on one
// subscription is logged and the sweep moves on so a single bad record
// cannot starve the rest of the fleet.
type TopUpWorker struct {
	lister   ActiveSubscriptionLister
	topUpper SubscriptionTopUpper
	pruner   SessionPruner
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewTopUpWorker builds a worker for the given standard cron spec. The
// schedule is validated here so a bad spec fails at startup rather than
// silently never firing.
func NewTopUpWorker(spec string, lister ActiveSubscriptionLister, topUpper SubscriptionTopUpper, pruner SessionPruner, logger *slog.Logger) (*TopUpWorker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &TopUpWorker{
		lister:   lister,
		topUpper: topUpper,
		pruner:   pruner,
		cron:     cron.New(),
		logger:   logger.With(slog.String("worker", "topup")),
	}

	if _, err := w.cron.AddFunc(spec, func() {
		w.RunSweep(context.Background())
	}); err != nil {
		return nil, err
	}

	return w, nil
}

// Start begins the cron scheduler in its own goroutine.
func (w *TopUpWorker) Start() {
	w.cron.Start()
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (w *TopUpWorker) Stop() {
	<-w.cron.Stop().Done()
}

// RunSweep tops up every active subscription and prunes expired sessions.
// It returns the total number of jobs generated across the fleet.
func (w *TopUpWorker) RunSweep(ctx context.Context) int {
	started := time.Now()
	w.logger.InfoContext(ctx, "top-up sweep started")

	total := 0
	subs, err := w.lister.ListActiveSubscriptions(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "top-up sweep could not list subscriptions",
			slog.String("error", err.Error()))
	} else {
		for _, sub := range subs {
			generated, err := w.topUpper.TopUp(ctx, sub)
			if err != nil {
				w.logger.ErrorContext(ctx, "top-up failed for subscription",
					slog.String("subscription_id", sub.ID),
					slog.String("error", err.Error()))
				continue
			}
			total += generated
		}
	}

	if w.pruner != nil {
		pruned, err := w.pruner.PruneExpiredSessions(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "session pruning failed",
				slog.String("error", err.Error()))
		} else if pruned > 0 {
			w.logger.InfoContext(ctx, "expired sessions pruned",
				slog.Int("count", pruned))
		}
	}

	w.logger.InfoContext(ctx, "top-up sweep finished",
		slog.Int("jobs_generated", total),
		slog.Duration("duration", time.Since(started)))
	return total
}
