// Package models defines the records persisted by the rxkeeper stores:
// tasks, compliance days, task events and the user profile.
package models

import "time"

// Task is a recurring reminder item owned by one user.
type Task struct {
	// ID is a globally unique identifier assigned at creation.
	ID string `json:"taskId"`

	// UserID identifies the owner. Immutable.
	UserID string `json:"userId"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// Type is a free-form category tag (medication, check, ...).
	Type string `json:"type,omitempty"`

	// Time is the anchor of the first or most recent occurrence.
	Time time.Time `json:"time"`
	// Frequency is the canonical recurrence rule text.
	Frequency string `json:"frequency"`
	// NextTriggerTime is derived from Time and Frequency and never set by hand.
	NextTriggerTime time.Time `json:"nextTriggerTime"`

	Notes string `json:"notes,omitempty"`

	// Flagged marks the task for the caregiver report.
	Flagged bool `json:"flagged"`
	// Completed is the last known completion state.
	Completed bool `json:"completed"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewTask carries the caller-supplied fields of a task to be created.
type NewTask struct {
	UserID      string
	Title       string
	Description string
	Type        string
	Time        time.Time
	Frequency   string
	Notes       string
}

// TaskPatch lists the fields to change on an existing task. Nil fields are
// left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Type        *string
	Time        *time.Time
	Frequency   *string
	Notes       *string
	Flagged     *bool
	Completed   *bool
}

// ReschedulesTrigger reports whether the patch touches the fields the next
// trigger time is derived from.
func (p TaskPatch) ReschedulesTrigger() bool {
	return p.Time != nil || p.Frequency != nil
}
