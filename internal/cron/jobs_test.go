package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// testMediaStore implements MediaStore for job tests.
type testMediaStore struct {
	purgeCalls atomic.Int32
	purgeFunc  func(maxAge time.Duration) (int, error)
}

func (s *testMediaStore) Purge(maxAge time.Duration) (int, error) {
	s.purgeCalls.Add(1)
	if s.purgeFunc != nil {
		return s.purgeFunc(maxAge)
	}
	return 0, nil
}

func TestMediaRetentionJob_Name(t *testing.T) {
	t.Parallel()
	j := &MediaRetentionJob{}
	if j.Name() != "media_retention" {
		t.Errorf("name = %q, want %q", j.Name(), "media_retention")
	}
}

func TestMediaRetentionJob_Schedule(t *testing.T) {
	t.Parallel()

	j := &MediaRetentionJob{}
	if j.Schedule() != DefaultMediaRetentionSchedule {
		t.Errorf("schedule = %q, want %q", j.Schedule(), DefaultMediaRetentionSchedule)
	}

	j.ScheduleExpr = "0 * * * *"
	if j.Schedule() != "0 * * * *" {
		t.Errorf("schedule = %q, want override", j.Schedule())
	}
}

func TestMediaRetentionJob_Run(t *testing.T) {
	t.Parallel()

	store := &testMediaStore{
		purgeFunc: func(maxAge time.Duration) (int, error) {
			if maxAge != 24*time.Hour {
				t.Errorf("maxAge = %v, want 24h", maxAge)
			}
			return 3, nil
		},
	}

	j := &MediaRetentionJob{Store: store, MaxAge: 24 * time.Hour, Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.purgeCalls.Load() != 1 {
		t.Errorf("purge calls = %d, want 1", store.purgeCalls.Load())
	}
}

func TestMediaRetentionJob_RunError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("disk gone")
	store := &testMediaStore{
		purgeFunc: func(time.Duration) (int, error) { return 1, sentinel },
	}

	j := &MediaRetentionJob{Store: store, MaxAge: time.Hour}
	if err := j.Run(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
}

func TestMediaRetentionJob_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &testMediaStore{}
	j := &MediaRetentionJob{Store: store, MaxAge: time.Hour}
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if store.purgeCalls.Load() != 0 {
		t.Error("purge should not run after cancellation")
	}
}
