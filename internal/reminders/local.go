package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/logging"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
)

// NotifyFunc delivers a due reminder.
type NotifyFunc func(r Reminder)

// LocalScheduler keeps one in-process timer per future reminder.
type LocalScheduler struct {
	mu     sync.Mutex
	clock  clock.Clock
	notify NotifyFunc
	logger logging.Logger
	timers map[string]*time.Timer
}

func NewLocalScheduler(c clock.Clock, notify NotifyFunc, logger logging.Logger) *LocalScheduler {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LocalScheduler{
		clock:  c,
		notify: notify,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Reschedule stops all pending timers and arms one per reminder that is
// still in the future. Past-due reminders are dropped.
func (s *LocalScheduler) Reschedule(ctx context.Context, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	now := s.clock.Now()
	for _, r := range Plan(tasks) {
		delay := r.FireAt.Sub(now)
		if delay <= 0 {
			continue
		}
		r := r
		s.timers[r.TaskID] = time.AfterFunc(delay, func() { s.fire(r) })
	}

	s.logger.Debug(ctx, "reminders rescheduled", "pending", len(s.timers))
	return nil
}

func (s *LocalScheduler) fire(r Reminder) {
	s.mu.Lock()
	delete(s.timers, r.TaskID)
	s.mu.Unlock()

	if s.notify != nil {
		s.notify(r)
	}
}

// Pending returns the number of armed timers.
func (s *LocalScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending reminder.
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *LocalScheduler) cancelLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
