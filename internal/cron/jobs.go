package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMediaRetentionSchedule runs the media purge every 15 minutes.
const DefaultMediaRetentionSchedule = "*/15 * * * *"

// MediaStore is the subset of media.Fetcher needed by the retention job.
// Defined here to keep this package free of media imports.
type MediaStore interface {
	Purge(maxAge time.Duration) (int, error)
}

// MediaRetentionJob deletes downloaded media older than MaxAge.
type MediaRetentionJob struct {
	Store        MediaStore
	MaxAge       time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = DefaultMediaRetentionSchedule
}

// Compile-time interface check.
var _ Job = (*MediaRetentionJob)(nil)

// Name implements Job.
func (j *MediaRetentionJob) Name() string { return "media_retention" }

// Schedule implements Job.
func (j *MediaRetentionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultMediaRetentionSchedule
}

// Run purges expired media files.
func (j *MediaRetentionJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: media retention cancelled: %w", ctx.Err())
	}
	removed, err := j.Store.Purge(j.MaxAge)
	if removed > 0 {
		j.logger().Info("cron: purged downloaded media", "count", removed, "max_age", j.MaxAge)
	}
	if err != nil {
		return fmt.Errorf("cron: media retention: %w", err)
	}
	return nil
}

func (j *MediaRetentionJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
