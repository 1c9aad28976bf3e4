// Package cron runs periodic background jobs, such as purging downloaded
// media, on 5-field cron schedules.
package cron

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// parser accepts 5-field expressions and descriptors such as "@hourly".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is a periodic background task.
type Job interface {
	// Name identifies the job in logs and RunNow.
	Name() string

	// Schedule is a 5-field cron expression or a descriptor.
	Schedule() string

	// Run executes the job once. It must return when ctx is cancelled.
	Run(ctx context.Context) error
}

// ValidateSchedule reports whether expr is a schedule the Scheduler accepts.
func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("cron: invalid schedule %q: %w", expr, err)
	}
	return nil
}
