package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"gazette/internal/collector"
	"gazette/internal/config"
	"gazette/internal/logging"
	"gazette/internal/preflight"
	"gazette/internal/schedule"
)

// ErrAlreadyRunning indicates another daemon instance holds the lock.
var ErrAlreadyRunning = errors.New("another gazette daemon instance is already running")

// Runner executes one collection pass. Satisfied by *collector.Collector.
type Runner interface {
	Run(ctx context.Context) collector.Summary
}

// Daemon runs the collector on the daily schedule and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	runner    Runner
	scheduler *schedule.Scheduler

	lockPath string
	lock     *flock.Flock
}

// Status represents daemon runtime information for the status command.
type Status struct {
	Running      bool
	LockFilePath string
	NextRun      time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and a runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := lockPathFor(cfg)
	return &Daemon{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "daemon"),
		runner:    runner,
		scheduler: schedule.New(cfg, logger),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// LockPath returns the daemon lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Run blocks until ctx is cancelled, triggering a collection pass at each
// scheduled time. A failed run is logged and the loop continues; only
// cancellation or a lock conflict ends the daemon.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
	}()

	for _, dep := range preflight.CheckSystemDeps(d.cfg) {
		if dep.Available {
			continue
		}
		d.logger.Warn("external dependency missing; scheduled runs may fail",
			logging.String("dependency", dep.Name),
			logging.String("detail", dep.Detail))
	}

	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("hour", d.cfg.Schedule.Hour),
		logging.Int("minute", d.cfg.Schedule.Minute))

	err = d.scheduler.Run(ctx, func(runCtx context.Context) {
		summary := d.runner.Run(runCtx)
		if summary.Outcome == collector.OutcomeFailed {
			d.logger.Error("scheduled run failed; daemon continues",
				logging.String("run_id", summary.RunID),
				logging.Error(summary.Err))
		}
	})
	if errors.Is(err, context.Canceled) {
		d.logger.Info("daemon stopped")
		return nil
	}
	return err
}

// Probe reports whether a daemon currently holds the lock, without
// disturbing a running instance.
func Probe(cfg *config.Config) (Status, error) {
	status := Status{
		LockFilePath: lockPathFor(cfg),
		NextRun:      schedule.NextTrigger(time.Now(), cfg.Schedule.Hour, cfg.Schedule.Minute),
	}

	probe := flock.New(status.LockFilePath)
	ok, err := probe.TryLock()
	if err != nil {
		return status, fmt.Errorf("probe lock: %w", err)
	}
	if !ok {
		status.Running = true
		return status, nil
	}
	if err := probe.Unlock(); err != nil {
		return status, fmt.Errorf("release probe lock: %w", err)
	}
	return status, nil
}

func lockPathFor(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "gazetted.lock")
}
