package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExportCleanupJobName is the name of the expired export cleanup job
const ExportCleanupJobName = "export_cleanup"

// DefaultCleanupTimeout bounds a single cleanup run
const DefaultCleanupTimeout = 2 * time.Minute

// ExportCleaner deletes stored exports whose download links expired
type ExportCleaner interface {
	CleanupExpired(ctx context.Context, batch int64) (int, error)
}

// ExportCleanupJob removes exports nobody downloaded before the link expired
type ExportCleanupJob struct {
	cleaner ExportCleaner
	batch   int64
	timeout time.Duration
	logger  *zap.Logger
}

// NewExportCleanupJob creates a cleanup job deleting up to batch exports per run
func NewExportCleanupJob(cleaner ExportCleaner, batch int64, timeout time.Duration, logger *zap.Logger) *ExportCleanupJob {
	if batch <= 0 {
		batch = 100
	}
	if timeout <= 0 {
		timeout = DefaultCleanupTimeout
	}
	return &ExportCleanupJob{
		cleaner: cleaner,
		batch:   batch,
		timeout: timeout,
		logger:  logger,
	}
}

// Run drains expired exports in batches until a run comes back short
func (j *ExportCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	total := 0
	for {
		n, err := j.cleaner.CleanupExpired(ctx, j.batch)
		total += n
		if err != nil {
			j.logger.Error("export cleanup failed",
				zap.Error(err),
				zap.Int("deleted", total),
				zap.Duration("duration", time.Since(start)))
			return
		}
		if int64(n) < j.batch {
			break
		}
	}

	if total > 0 {
		j.logger.Info("export cleanup completed",
			zap.Int("deleted", total),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterExportCleanupJob registers the cleanup job and, when runAtStartup is
// set, clears exports left over from before the restart in the background.
func RegisterExportCleanupJob(scheduler *Scheduler, cleaner ExportCleaner, batch int64, cronExpr string, logger *zap.Logger, runAtStartup bool) error {
	job := NewExportCleanupJob(cleaner, batch, DefaultCleanupTimeout, logger)

	if runAtStartup {
		go job.Run()
	}

	return scheduler.AddJob(ExportCleanupJobName, cronExpr, job.Run)
}
