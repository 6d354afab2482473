package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mweidner/product-inventory-backend/pkg/logger"
)

type fakeTerminator struct {
	count int64
	err   error
	calls []time.Time
}

func (f *fakeTerminator) TerminateExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, now)
	return f.count, f.err
}

func TestTerminateExpiredJob(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	t.Run("requiresDependencies", func(t *testing.T) {
		if _, err := NewTerminateExpiredJob(TerminateExpiredJobParams{Logger: logg}); err == nil {
			t.Fatal("expected missing product service to fail construction")
		}
		if _, err := NewTerminateExpiredJob(TerminateExpiredJobParams{Products: &fakeTerminator{}}); err == nil {
			t.Fatal("expected missing logger to fail construction")
		}
	})

	t.Run("sweepsWithCurrentTime", func(t *testing.T) {
		terminator := &fakeTerminator{count: 3}
		job, err := NewTerminateExpiredJob(TerminateExpiredJobParams{Logger: logg, Products: terminator})
		if err != nil {
			t.Fatalf("construct job: %v", err)
		}
		fixed := time.Date(2024, time.June, 1, 3, 0, 0, 0, time.UTC)
		job.(*terminateExpiredJob).now = func() time.Time { return fixed }

		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(terminator.calls) != 1 || !terminator.calls[0].Equal(fixed) {
			t.Fatalf("expected one sweep at %v, got %v", fixed, terminator.calls)
		}
	})

	t.Run("propagatesFailures", func(t *testing.T) {
		terminator := &fakeTerminator{err: errors.New("db down")}
		job, err := NewTerminateExpiredJob(TerminateExpiredJobParams{Logger: logg, Products: terminator})
		if err != nil {
			t.Fatalf("construct job: %v", err)
		}
		if err := job.Run(context.Background()); err == nil {
			t.Fatal("expected the sweep failure to propagate")
		}
	})
}
