package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"aerial/internal/config"
	"aerial/internal/logging"
	"aerial/internal/parsers"
)

// JobRunner is the pipeline surface the daemon schedules.
// *orchestrator.Orchestrator satisfies it.
type JobRunner interface {
	Daily(ctx context.Context) error
	Hourly(ctx context.Context) error
	Weekly(ctx context.Context) error
	IngestFile(ctx context.Context, path, channelName string) (*parsers.InsertionResult, error)
}

// Daemon coordinates the scheduled jobs and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runner JobRunner
	loc    *time.Location

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// New constructs a daemon.
func New(cfg *config.Config, logger *slog.Logger, runner JobRunner, loc *time.Location) (*Daemon, error) {
	if cfg == nil || logger == nil || runner == nil || loc == nil {
		return nil, errors.New("daemon requires config, logger, runner, and location")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "aeriald.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		loc:      loc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		now:      time.Now,
	}, nil
}

// Start acquires the daemon lock and launches the schedulers and, when
// configured, the inbox watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another aerial daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.runScheduler()

	if d.cfg.Daemon.WatchInbox {
		if err := d.runWatcher(); err != nil {
			d.cancel()
			d.wg.Wait()
			_ = d.lock.Unlock()
			return fmt.Errorf("start inbox watcher: %w", err)
		}
	}

	d.running.Store(true)
	d.logger.Info("aerial daemon started",
		slog.String("lock", d.lockPath),
		slog.Int("daily_hour", d.cfg.Daemon.DailyHour),
		slog.Bool("watch_inbox", d.cfg.Daemon.WatchInbox))
	return nil
}

// Stop halts the schedulers and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("aerial daemon stopped")
}

// Running reports whether the daemon holds the lock and its loops are up.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
