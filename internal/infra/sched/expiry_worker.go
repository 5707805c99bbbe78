package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"realscan/internal/domain/model"
	"realscan/internal/domain/ports"
	"realscan/internal/infra/metrics"
	"realscan/internal/usecase"
)

// ExpiryWorker periodically sweeps the collection, logs codes that crossed
// their expiry since the previous tick and refreshes the active-codes gauge.
// Observability only: expiry is derived state, so the sweep never mutates
// records.
type ExpiryWorker struct {
	interval time.Duration
	codeUC   *usecase.CodeUseCase
	clock    ports.Clock
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, codeUC *usecase.CodeUseCase, clock ports.Clock, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		codeUC:   codeUC,
		clock:    clock,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.clock.Now()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			last = w.sweep(ctx, last)
		}
	}
}

// sweep runs one pass and returns the instant to compare against next tick.
func (w *ExpiryWorker) sweep(ctx context.Context, last time.Time) time.Time {
	now := w.clock.Now()
	views, err := w.codeUC.List(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return now
	}

	active := 0
	for _, v := range views {
		switch v.Status {
		case model.StatusActive:
			active++
		case model.StatusExpired:
			// Only report codes that expired within this tick's window.
			if v.ExpiresAt.After(last) && !v.ExpiresAt.After(now) {
				w.log.Info().Str("code", v.Code).Time("expired_at", v.ExpiresAt).Msg("code expired")
			}
		}
	}
	metrics.SetActiveCodes(active)
	return now
}
