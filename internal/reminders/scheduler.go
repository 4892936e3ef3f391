// Package reminders turns the task set into reminder schedules.
//
// The stores call Scheduler.Reschedule with the complete task set whenever
// it or any trigger time changes. Implementations cancel whatever they
// scheduled before and rebuild from the new set; they never report state
// back to the stores.
package reminders

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/models"
)

// DefaultMessage is used for tasks without a description.
const DefaultMessage = "Task Reminder"

// Scheduler rebuilds reminders from a task set.
type Scheduler interface {
	Reschedule(ctx context.Context, tasks []models.Task) error
}

// Reminder is one scheduled notification.
type Reminder struct {
	TaskID  string    `json:"taskId"`
	UserID  string    `json:"userId"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	FireAt  time.Time `json:"fireAt"`
}

// Plan converts tasks into reminders ordered by fire time. Tasks without a
// trigger time are skipped.
func Plan(tasks []models.Task) []Reminder {
	plan := make([]Reminder, 0, len(tasks))
	for _, t := range tasks {
		if t.NextTriggerTime.IsZero() {
			continue
		}
		msg := t.Description
		if msg == "" {
			msg = DefaultMessage
		}
		plan = append(plan, Reminder{
			TaskID:  t.ID,
			UserID:  t.UserID,
			Title:   t.Title,
			Message: msg,
			FireAt:  t.NextTriggerTime,
		})
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].FireAt.Before(plan[j].FireAt)
	})
	return plan
}

// Nop accepts every schedule and does nothing.
type Nop struct{}

func (Nop) Reschedule(context.Context, []models.Task) error { return nil }
