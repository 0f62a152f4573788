package store

import (
	"context"
	"sync"
	"time"

	"github.com/aurevo/aurevo-server/internal/logger"
)

// syncScheduler coalesces remote profile syncs: a burst of Schedule calls
// results in one write of the final state. At most one sync is in flight;
// at most one pending request survives, superseding any earlier pending
// ones. The remote write is a blind overwrite, so only the final write in
// a burst matters.
type syncScheduler struct {
	mu       sync.Mutex
	log      *logger.Logger
	delay    time.Duration
	run      func(ctx context.Context) error
	timer    *time.Timer
	inflight bool
	pending  bool
	closed   bool
}

func newSyncScheduler(log *logger.Logger, delay time.Duration, run func(ctx context.Context) error) *syncScheduler {
	return &syncScheduler{log: log, delay: delay, run: run}
}

// Schedule arms (or re-arms) the debounce timer. Calls landing while a
// sync is in flight are remembered as a single pending follow-up.
func (s *syncScheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.inflight {
		s.pending = true
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *syncScheduler) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.inflight {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.inflight = true
	s.mu.Unlock()

	for {
		if err := s.run(context.Background()); err != nil {
			s.log.Warn("Deferred profile sync failed", "error", err)
		}
		s.mu.Lock()
		if s.pending {
			s.pending = false
			s.mu.Unlock()
			continue
		}
		s.inflight = false
		s.mu.Unlock()
		return
	}
}

// Flush cancels any armed timer and runs one sync synchronously. Used at
// logout and shutdown so the final ledger state is not lost to the
// debounce window.
func (s *syncScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	s.mu.Unlock()
	return s.run(ctx)
}

// Close stops future scheduling. Pending timers are dropped; call Flush
// first when the last state matters.
func (s *syncScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
