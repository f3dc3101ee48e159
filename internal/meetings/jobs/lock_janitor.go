package jobs

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ExpiredLockDeleter removes advisory locks whose expiry is before now.
type ExpiredLockDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LockJanitor periodically removes meeting locks left behind by requests that
// died before releasing them.
type LockJanitor struct {
	cron    *cron.Cron
	locks   ExpiredLockDeleter
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewLockJanitor(schedule string, timeout time.Duration, locks ExpiredLockDeleter, log *logger.Logger) (*LockJanitor, error) {
	cronLog := cronLogger{log: log}
	j := &LockJanitor{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		), cron.WithLogger(cronLog)),
		locks:   locks,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}

	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid lock janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *LockJanitor) Start() {
	j.cron.Start()
	j.log.Info("Lock janitor started", "entries", len(j.cron.Entries()))
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (j *LockJanitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
		j.log.Info("Lock janitor stopped")
	case <-ctx.Done():
		j.log.Warn("Lock janitor did not stop in time", "error", ctx.Err())
	}
}

// RunOnce deletes the locks that are expired at this moment.
func (j *LockJanitor) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	deleted, err := j.locks.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		j.log.Info("Removed expired meeting locks", "count", deleted)
	}
	return deleted, nil
}

func (j *LockJanitor) run() {
	if _, err := j.RunOnce(context.Background()); err != nil {
		j.log.Error("Lock janitor sweep failed", "error", err)
	}
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
