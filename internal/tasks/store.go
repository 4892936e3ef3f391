package tasks

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
	"github.com/dmitrijs2005/rxkeeper/internal/recurrence"
	"github.com/dmitrijs2005/rxkeeper/internal/reminders"
	"github.com/dmitrijs2005/rxkeeper/internal/storage"
	"github.com/google/uuid"
)

// Store implements the task operations over a storage.Storage.
type Store struct {
	mu        sync.Mutex
	storage   storage.Storage
	clock     clock.Clock
	scheduler reminders.Scheduler
	logger    logging.Logger
	newID     func() string

	loaded bool
	tasks  []models.Task
	index  map[string]int
}

func NewStore(s storage.Storage, c clock.Clock, sched reminders.Scheduler, logger logging.Logger) *Store {
	if sched == nil {
		sched = reminders.Nop{}
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Store{
		storage:   s,
		clock:     c,
		scheduler: sched,
		logger:    logger.With("component", "tasks"),
		newID:     uuid.NewString,
	}
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	tasks, err := storage.Load[models.Task](ctx, s.storage, common.CollectionTasks)
	if err != nil {
		return err
	}
	s.tasks = tasks
	s.index = buildIndex(tasks)
	s.loaded = true
	return nil
}

// local moves an anchor into the clock's zone. Stored times keep only their
// UTC offset, so calendar-day rules must be evaluated in the user's zone.
func (s *Store) local(t time.Time) time.Time {
	return t.In(s.clock.Now().Location())
}

func buildIndex(tasks []models.Task) map[string]int {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	return index
}

// commit persists next and, on success, makes it the in-memory state.
func (s *Store) commit(ctx context.Context, next []models.Task) error {
	if err := storage.Save(ctx, s.storage, common.CollectionTasks, next); err != nil {
		return err
	}
	s.tasks = next
	s.index = buildIndex(next)
	return nil
}

func (s *Store) reschedule(ctx context.Context) {
	err := s.scheduler.Reschedule(ctx, sortByTrigger(s.tasks, nil))
	metrics.Reschedules.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn(ctx, "failed to reschedule reminders", "error", err)
	}
}

// sortByTrigger returns a stably sorted copy of the tasks accepted by keep
// (all tasks when keep is nil).
func sortByTrigger(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextTriggerTime.Before(out[j].NextTriggerTime)
	})
	return out
}

func validateNew(in models.NewTask) error {
	var missing []string
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.Time.IsZero() {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(in.Frequency) == "" {
		missing = append(missing, "frequency")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Add validates and stores a new task with a fresh id and computed trigger.
func (s *Store) Add(ctx context.Context, in models.NewTask) (models.Task, error) {
	if err := validateNew(in); err != nil {
		return models.Task{}, err
	}
	rule, err := recurrence.Parse(in.Frequency)
	if err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.Task{}, err
	}

	t := models.Task{
		ID:              s.newID(),
		UserID:          in.UserID,
		Title:           in.Title,
		Description:     in.Description,
		Type:            in.Type,
		Time:            in.Time,
		Frequency:       rule.String(),
		NextTriggerTime: rule.Next(s.local(in.Time)),
		Notes:           in.Notes,
		CreatedAt:       s.clock.Now(),
	}
	if _, dup := s.index[t.ID]; dup {
		return models.Task{}, fmt.Errorf("%w: task %s", common.ErrAlreadyExists, t.ID)
	}

	next := append(slices.Clone(s.tasks), t)
	if err := s.commit(ctx, next); err != nil {
		return models.Task{}, err
	}

	metrics.TaskOperations.WithLabelValues("add").Inc()
	s.logger.Info(ctx, "task added", "task_id", t.ID, "user_id", t.UserID, "next_trigger", t.NextTriggerTime)
	s.reschedule(ctx)
	return t, nil
}

// ListByUser returns the user's tasks ordered by next trigger time; ties
// keep insertion order. The result is a fresh copy.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return sortByTrigger(s.tasks, func(t models.Task) bool { return t.UserID == userID }), nil
}

// ListToday returns ListByUser filtered to tasks anchored on the clock's
// current calendar day.
func (s *Store) ListToday(ctx context.Context, userID string) ([]models.Task, error) {
	now := s.clock.Now()
	today := models.DateOf(now)

	all, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if models.DateOf(t.Time.In(now.Location())) == today {
			out = append(out, t)
		}
	}
	return out, nil
}

// Flagged returns the user's flagged tasks ordered by next trigger time.
func (s *Store) Flagged(ctx context.Context, userID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return sortByTrigger(s.tasks, func(t models.Task) bool { return t.UserID == userID && t.Flagged }), nil
}

// All returns every task of every user ordered by next trigger time.
func (s *Store) All(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return sortByTrigger(s.tasks, nil), nil
}

// Get returns a task by id or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.Task{}, err
	}
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	return s.tasks[i], nil
}

// Update merges the non-nil patch fields into the task. A missing id yields
// common.ErrNotFound and nothing is written.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var rule recurrence.Rule
	if patch.Frequency != nil {
		r, err := recurrence.Parse(*patch.Frequency)
		if err != nil {
			return models.Task{}, err
		}
		rule = r
	}
	if patch.Time != nil && patch.Time.IsZero() {
		return models.Task{}, fmt.Errorf("%w: time must not be empty", common.ErrValidation)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.Task{}, err
	}
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}

	t := s.tasks[i]
	applyPatch(&t, patch)

	if patch.ReschedulesTrigger() {
		if patch.Frequency == nil {
			r, err := recurrence.Parse(t.Frequency)
			if err != nil {
				return models.Task{}, err
			}
			rule = r
		}
		t.Frequency = rule.String()
		t.NextTriggerTime = rule.Next(s.local(t.Time))
	}

	next := slices.Clone(s.tasks)
	next[i] = t
	if err := s.commit(ctx, next); err != nil {
		return models.Task{}, err
	}

	metrics.TaskOperations.WithLabelValues("update").Inc()
	s.logger.Info(ctx, "task updated", "task_id", t.ID, "next_trigger", t.NextTriggerTime)
	if patch.ReschedulesTrigger() {
		s.reschedule(ctx)
	}
	return t, nil
}

func applyPatch(t *models.Task, p models.TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Flagged != nil {
		t.Flagged = *p.Flagged
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Remove deletes a task. Removing an unknown id is a successful no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return nil
	}

	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	metrics.TaskOperations.WithLabelValues("remove").Inc()
	s.logger.Info(ctx, "task removed", "task_id", id)
	s.reschedule(ctx)
	return nil
}
