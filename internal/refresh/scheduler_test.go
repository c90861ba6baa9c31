package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestScheduler_StopBeforeStart verifies that calling Stop() on a scheduler
// that was never started does not panic and is a safe no-op.
func TestScheduler_StopBeforeStart(t *testing.T) {
	scheduler := NewScheduler(time.Minute, func(context.Context) error { return nil }, testLogger())
	scheduler.Stop()

	// Start after Stop must not launch the loop
	scheduler.Start(context.Background())
	scheduler.Stop()
}

// TestScheduler_StopTwice verifies that Stop() is idempotent.
func TestScheduler_StopTwice(t *testing.T) {
	scheduler := NewScheduler(time.Minute, func(context.Context) error { return nil }, testLogger())
	scheduler.Start(context.Background())

	scheduler.Stop()
	scheduler.Stop()
}

func TestScheduler_CallsRefreshPeriodically(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(20*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, testLogger())

	scheduler.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	scheduler.Stop()

	if calls.Load() < 2 {
		t.Errorf("refresh called %d times, want at least 2", calls.Load())
	}
}

func TestScheduler_SkipsWhileRefreshInFlight(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	scheduler := NewScheduler(10*time.Millisecond, func(ctx context.Context) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		select {
		case <-time.After(80 * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	}, testLogger())

	scheduler.Start(context.Background())
	time.Sleep(200 * time.Millisecond)
	scheduler.Stop()

	if maxInFlight.Load() != 1 {
		t.Errorf("max concurrent refreshes = %d, want 1", maxInFlight.Load())
	}
	if scheduler.Skipped() == 0 {
		t.Error("Skipped() = 0, want ticks skipped while refresh was running")
	}
}

func TestScheduler_ErrorsAndPanicsDoNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(15*time.Millisecond, func(context.Context) error {
		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("backend down")
		}
		return nil
	}, testLogger())

	scheduler.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	scheduler.Stop()

	if calls.Load() < 3 {
		t.Errorf("refresh called %d times, want loop to survive panic and error", calls.Load())
	}
}

func TestScheduler_ContextCancellationStopsLoop(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	scheduler := NewScheduler(10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, testLogger())
	scheduler.Start(ctx)

	cancel()
	scheduler.Stop()
	after := calls.Load()

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("refresh kept running after cancellation: %d -> %d", after, calls.Load())
	}
}
