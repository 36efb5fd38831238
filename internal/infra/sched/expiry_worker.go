package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/infra/metrics"
	"telegram-tutoring-bot/internal/usecase"
)

// ExpiryWorker periodically lapses overdue subscriptions via the use case.
// The interval is normally 24h; each cycle runs independently of inbound
// message traffic.
type ExpiryWorker struct {
	interval time.Duration
	expiryUC *usecase.ExpiryUseCase
	statsUC  *usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, expiryUC *usecase.ExpiryUseCase, statsUC *usecase.StatsUseCase, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	wLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		expiryUC: expiryUC,
		statsUC:  statsUC,
		log:      &wLog,
	}
}

// Run blocks until ctx is cancelled. The first sweep happens immediately so
// a restarted process does not wait a full interval to catch up.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweepTimeout bounds one cycle; a shutdown mid-cycle lets the cycle finish
// rather than aborting its writes halfway.
const sweepTimeout = 10 * time.Minute

func (w *ExpiryWorker) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sweepTimeout)
	defer cancel()

	n, err := w.expiryUC.SweepExpired(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep error")
	}
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
		w.log.Info().Int("count", n).Msg("subscriptions expired")
	}
	if w.statsUC != nil {
		if _, err := w.statsUC.CountByStatus(ctx); err != nil {
			w.log.Warn().Err(err).Msg("status gauge refresh failed")
		}
	}
}
