package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"aerial/internal/logging"
)

// runScheduler launches one goroutine per cadence. Each loop sleeps until
// its next slot, runs the job, and reschedules from the finish time so a
// long run cannot queue up a burst of immediate reruns.
func (d *Daemon) runScheduler() {
	d.schedule("daily", d.runner.Daily, func(now time.Time) time.Time {
		return nextDaily(now, d.cfg.Daemon.DailyHour, d.loc)
	})
	d.schedule("hourly", d.runner.Hourly, nextHourly)
	d.schedule("weekly", d.runner.Weekly, func(now time.Time) time.Time {
		return nextWeekly(now, d.cfg.Daemon.DailyHour, d.loc)
	})
}

func (d *Daemon) schedule(name string, job func(context.Context) error, next func(time.Time) time.Time) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			wait := time.Until(next(d.now()))
			timer := time.NewTimer(wait)
			select {
			case <-d.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			d.runJob(name, job)
		}
	}()
}

func (d *Daemon) runJob(name string, job func(context.Context) error) {
	logger := d.logger.With(logging.FieldJob, name, logging.FieldRunID, uuid.NewString())
	started := d.now()
	logger.Info("job starting")
	if err := job(d.ctx); err != nil {
		if d.ctx.Err() == nil {
			logger.Error("job failed", logging.Error(err))
		}
		return
	}
	logger.Info("job done", slog.Duration("elapsed", d.now().Sub(started)))
}

// nextDaily is the next occurrence of hour o'clock local time.
func nextDaily(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextHourly is the next top of the hour.
func nextHourly(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

// nextWeekly is the next Monday one hour after the daily slot, so the
// weekly highlights run over the catalog the daily job just refreshed.
func nextWeekly(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour+1, 0, 0, 0, loc)
	for next.Weekday() != time.Monday || !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
