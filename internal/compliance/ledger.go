// Package compliance keeps the per-user, per-day adherence counters and the
// log of individual completion and miss events.
//
// Both collections are written together in one storage batch, so a crash
// never leaves a counter without its event. Task ids are recorded as given;
// the ledger does not check them against the task store.
package compliance

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/common"
	"github.com/dmitrijs2005/rxkeeper/internal/logging"
	"github.com/dmitrijs2005/rxkeeper/internal/metrics"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/dmitrijs2005/rxkeeper/internal/storage"
)

type dayKey struct {
	userID string
	date   models.Date
}

// Ledger records task outcomes.
type Ledger struct {
	mu      sync.Mutex
	storage storage.Storage
	clock   clock.Clock
	logger  logging.Logger

	loaded bool
	days   []models.ComplianceDay
	index  map[dayKey]int
	events []models.TaskEvent
}

func NewLedger(s storage.Storage, c clock.Clock, logger logging.Logger) *Ledger {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Ledger{
		storage: s,
		clock:   c,
		logger:  logger.With("component", "compliance"),
	}
}

func (l *Ledger) ensureLoaded(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	days, err := storage.Load[models.ComplianceDay](ctx, l.storage, common.CollectionCompliance)
	if err != nil {
		return err
	}
	events, err := storage.Load[models.TaskEvent](ctx, l.storage, common.CollectionTaskEvents)
	if err != nil {
		return err
	}
	l.days = days
	l.index = indexDays(days)
	l.events = events
	l.loaded = true
	return nil
}

func indexDays(days []models.ComplianceDay) map[dayKey]int {
	index := make(map[dayKey]int, len(days))
	for i, d := range days {
		index[dayKey{d.UserID, d.Date}] = i
	}
	return index
}

// RecordEvent counts one outcome on today's day for the user and appends
// the event to the log.
func (l *Ledger) RecordEvent(ctx context.Context, userID, taskID string, completed bool) (models.ComplianceDay, error) {
	if strings.TrimSpace(userID) == "" {
		return models.ComplianceDay{}, fmt.Errorf("%w: missing userId", common.ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return models.ComplianceDay{}, err
	}

	now := l.clock.Now()
	key := dayKey{userID, models.DateOf(now)}

	days := slices.Clone(l.days)
	i, ok := l.index[key]
	if !ok {
		days = append(days, models.EmptyDay(userID, key.date))
		i = len(days) - 1
	}
	days[i].Record(completed)

	events := append(slices.Clone(l.events), models.TaskEvent{
		UserID:    userID,
		TaskID:    taskID,
		Completed: completed,
		At:        now,
	})

	daysRecords, err := storage.Encode(days)
	if err != nil {
		return models.ComplianceDay{}, err
	}
	eventRecords, err := storage.Encode(events)
	if err != nil {
		return models.ComplianceDay{}, err
	}
	batch := storage.Batch{
		common.CollectionCompliance: daysRecords,
		common.CollectionTaskEvents: eventRecords,
	}
	if err := l.storage.WriteBatch(ctx, batch); err != nil {
		return models.ComplianceDay{}, fmt.Errorf("failed to write compliance: %w", err)
	}

	l.days = days
	l.events = events
	if !ok {
		l.index[key] = i
	}

	metrics.TaskEvents.WithLabelValues(metrics.Outcome(completed)).Inc()
	l.logger.Info(ctx, "task event recorded",
		"user_id", userID, "task_id", taskID, "completed", completed, "percent", days[i].Percent)
	return days[i], nil
}

// Today returns today's counters for the user, or a zero day dated today.
func (l *Ledger) Today(ctx context.Context, userID string) (models.ComplianceDay, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return models.ComplianceDay{}, err
	}
	return l.dayLocked(userID, models.DateOf(l.clock.Now())), nil
}

func (l *Ledger) dayLocked(userID string, date models.Date) models.ComplianceDay {
	if i, ok := l.index[dayKey{userID, date}]; ok {
		return l.days[i]
	}
	return models.EmptyDay(userID, date)
}

// History returns exactly days entries ending today, oldest first. Days
// without events are zero-filled. days <= 0 means common.DefaultHistoryDays;
// more than common.MaxHistoryDays is a validation error.
func (l *Ledger) History(ctx context.Context, userID string, days int) ([]models.ComplianceDay, error) {
	if days <= 0 {
		days = common.DefaultHistoryDays
	}
	if days > common.MaxHistoryDays {
		return nil, fmt.Errorf("%w: history window %d exceeds %d days", common.ErrValidation, days, common.MaxHistoryDays)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	today := models.DateOf(l.clock.Now())
	out := make([]models.ComplianceDay, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		out = append(out, l.dayLocked(userID, today.AddDays(-offset)))
	}
	return out, nil
}

// MissedEvents returns the user's miss events at or after since in
// chronological order.
func (l *Ledger) MissedEvents(ctx context.Context, userID string, since time.Time) ([]models.TaskEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	var out []models.TaskEvent
	for _, e := range l.events {
		if e.UserID == userID && !e.Completed && !e.At.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}
