package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/usecase"
)

// Scheduler drives the periodic servicing jobs: the arrears sweep followed by
// the classification refresh. The sweep runs first so classifications always
// see freshly computed days-overdue values.
type Scheduler struct {
	sweep    *usecase.RunArrearsSweepUseCase
	refresh  *usecase.RefreshClassificationsUseCase
	interval time.Duration
	logger   *slog.Logger
}

// New creates a scheduler ticking at the given interval.
func New(
	sweep *usecase.RunArrearsSweepUseCase,
	refresh *usecase.RefreshClassificationsUseCase,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		sweep:    sweep,
		refresh:  refresh,
		interval: interval,
		logger:   logger,
	}
}

// Run executes one cycle immediately, then one per interval until the context
// is cancelled. Job failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopping")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	asOf := time.Now().UTC()

	sweepReport, err := s.sweep.Execute(ctx, asOf)
	if err != nil {
		s.logger.ErrorContext(ctx, "arrears sweep failed", "error", err)
	} else {
		s.logger.InfoContext(ctx, "arrears sweep completed",
			"processed", sweepReport.Processed,
			"failed", sweepReport.Failed,
		)
	}

	refreshReport, err := s.refresh.Execute(ctx, asOf)
	if err != nil {
		s.logger.ErrorContext(ctx, "classification refresh failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "classification refresh completed",
		"processed", refreshReport.Processed,
		"failed", refreshReport.Failed,
		"changed", refreshReport.Changed,
	)
}
