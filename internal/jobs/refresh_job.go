package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RefreshJobName is the name of the periodic cache refresh job
const RefreshJobName = "cache_refresh"

// Refresher reloads cached data. *console.Console implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob reloads the console's caches on every tick and reports the
// outcome to an optional callback.
type RefreshJob struct {
	refresher Refresher
	logger    *zap.Logger
	timeout   time.Duration
	onDone    func(err error)
}

// NewRefreshJob creates a refresh job. The timeout bounds one run; onDone
// may be nil.
func NewRefreshJob(refresher Refresher, logger *zap.Logger, timeout time.Duration, onDone func(err error)) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		logger:    logger,
		timeout:   timeout,
		onDone:    onDone,
	}
}

// Run executes one refresh.
func (j *RefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	err := j.refresher.Refresh(ctx)
	if err != nil {
		j.logger.Warn("Cache refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	} else {
		j.logger.Debug("Cache refresh completed",
			zap.Duration("duration", time.Since(start)))
	}

	if j.onDone != nil {
		j.onDone(err)
	}
}

// RegisterRefreshJob registers the refresh job with the scheduler.
func RegisterRefreshJob(scheduler *Scheduler, refresher Refresher, logger *zap.Logger, cronExpr string, timeout time.Duration, onDone func(err error)) error {
	job := NewRefreshJob(refresher, logger, timeout, onDone)
	return scheduler.AddJob(RefreshJobName, cronExpr, job.Run)
}
