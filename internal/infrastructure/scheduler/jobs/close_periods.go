// Package jobs contains implementations of scheduled jobs for the
// leaderboard service. The single recurring job refreshes judge stats
// every cycle and settles period boundaries when they are crossed.
package jobs

import (
	"context"
	"log/slog"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLOSE PERIODS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ClosePeriodsJob runs the refresh-and-close cycle. Scheduled on a cron
// that fires at :00 and :30; the midnight firing is the one that closes
// day, week and month boundaries, the others only refresh stats.
//
// The job is safe to re-run: snapshots and win credits are idempotent
// per boundary, so a crash-and-retry never double counts.
type ClosePeriodsJob struct {
	handler *command.ClosePeriodsHandler
	logger  *slog.Logger
}

// NewClosePeriodsJob creates a new ClosePeriodsJob.
func NewClosePeriodsJob(handler *command.ClosePeriodsHandler, logger *slog.Logger) *ClosePeriodsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClosePeriodsJob{
		handler: handler,
		logger:  logger,
	}
}

// Name returns the unique job name.
func (j *ClosePeriodsJob) Name() string {
	return "close_periods"
}

// Description returns a human-readable description.
func (j *ClosePeriodsJob) Description() string {
	return "Refreshes judge stats for all users and settles day/week/month boundaries at midnight UTC"
}

// Run executes one refresh-and-close cycle.
func (j *ClosePeriodsJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.ClosePeriodsCommand{})
	if err != nil {
		return err
	}

	j.logger.Info("refresh cycle finished",
		"closed", result.Closed.Kinds(),
		"total_users", result.TotalUsers,
		"refreshed", result.RefreshedCount,
		"failed", result.FailedCount,
		"snapshots", result.SnapshotsWritten,
		"winners", result.WinnersCredited,
		"duration", result.Duration().String(),
	)

	return nil
}
