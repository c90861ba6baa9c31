package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Func performs one refresh. Errors are logged by the [Scheduler].
type Func func(ctx context.Context) error

// Scheduler manages periodic calls to a refresh [Func].
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	refresh  Func
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool

	running atomic.Bool
	skipped atomic.Int64
}

// NewScheduler creates a new refresh [Scheduler].
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(interval time.Duration, refresh Func, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		refresh:  refresh,
		logger:   logger,
	}
}

// Start begins the refresh loop in a background goroutine.
//
// The first refresh happens one interval after Start; the caller is expected
// to perform the initial load itself. Start is idempotent. If Stop was called
// before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.tick(loopCtx)
			}
		}
	}()
}

// Stop halts the scheduler and waits for any in-flight refresh to finish.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Skipped returns how many ticks were dropped because a refresh was running.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// tick starts a refresh unless one is already in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Debug("refresh skipped, previous refresh still running")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		if err := s.safeRefresh(ctx); err != nil {
			s.logger.Warn("refresh failed", "error", err.Error())
		}
	}()
}

// safeRefresh calls the refresh function with panic recovery.
// A panic is logged with a correlation ID and reported as an error.
func (s *Scheduler) safeRefresh(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("refresh panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("refresh panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.refresh(ctx)
}
