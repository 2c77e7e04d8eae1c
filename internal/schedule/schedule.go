package schedule

import (
	"context"
	"log/slog"
	"time"

	"gazette/internal/config"
	"gazette/internal/logging"
)

// NextTrigger returns the next wall-clock instant at hour:minute strictly
// after now, in now's location. If today's trigger time has already passed
// (or is exactly now), the trigger moves to tomorrow.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler fires a callback once per day at a fixed local time. The delay
// is recomputed from the wall clock before every wait, so the duration of a
// run never drifts the next trigger.
type Scheduler struct {
	hour   int
	minute int
	logger *slog.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// New builds a scheduler from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		hour:   cfg.Schedule.Hour,
		minute: cfg.Schedule.Minute,
		logger: logging.WithComponent(logger, "scheduler"),
		now:    time.Now,
		wait:   sleepUntil,
	}
}

// Run blocks until ctx is cancelled, invoking fn at each daily trigger.
// A panic or failure inside fn must be handled by the caller; the scheduler
// itself only sequences triggers.
func (s *Scheduler) Run(ctx context.Context, fn func(context.Context)) error {
	for {
		now := s.now()
		next := NextTrigger(now, s.hour, s.minute)
		s.logger.Info("next run scheduled",
			logging.Time("at", next),
			logging.Duration("in", next.Sub(now)))

		if err := s.wait(ctx, next.Sub(now)); err != nil {
			return err
		}
		fn(ctx)
	}
}

func sleepUntil(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
