// log_rotation.go implements the LogRotation background job, which periodically
// asks the audit writer to roll over to the current day's partition. Rotation
// also happens inline on write, so this job exists to close out a partition on
// schedule even when the service is idle overnight, and to trigger retention
// without waiting for the next audit record.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/vitrine-app/vitrine-backend/internal/audit"
)

// LogRotation periodically rotates the audit log to the current day's partition.
type LogRotation struct {
	writer   *audit.Writer
	interval time.Duration
	stopChan chan struct{}
}

// NewLogRotation creates a new LogRotation job.
// intervalHours controls how often the rotation check runs (default 24h).
func NewLogRotation(writer *audit.Writer, intervalHours int) *LogRotation {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &LogRotation{
		writer:   writer,
		interval: time.Duration(intervalHours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start begins the rotation loop. It runs one check immediately, then repeats
// on the configured interval. The loop exits when ctx is cancelled or Stop()
// is called.
func (j *LogRotation) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("audit log rotation job started", "interval", j.interval.String())

	j.runCheck()

	for {
		select {
		case <-ticker.C:
			j.runCheck()
		case <-j.stopChan:
			slog.Info("audit log rotation job stopped")
			return
		case <-ctx.Done():
			slog.Info("audit log rotation job stopped", "reason", "context cancelled")
			return
		}
	}
}

// Stop signals the rotation loop to exit.
func (j *LogRotation) Stop() {
	close(j.stopChan)
}

func (j *LogRotation) runCheck() {
	if err := j.writer.Rotate(); err != nil {
		slog.Error("audit log rotation failed", "error", err)
	}
}
