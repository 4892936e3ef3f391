// Package tasks owns the authoritative collection of reminder tasks.
//
// # Overview
//
// Store is a single-owner handle over the "tasks" collection of a
// storage.Storage. It loads the collection once, keeps it as an
// insertion-ordered slice plus an id index, and writes the full collection
// back after every mutation. A mutex serializes the read-modify-write
// cycles of in-process callers; writers in other processes are not
// coordinated.
//
// # Trigger times
//
// NextTriggerTime is always recurrence.Rule.Next(Time). Add computes it and
// Update recomputes it whenever the patch touches Time or Frequency.
// Frequencies are parsed at this boundary; unknown rules are rejected with
// common.ErrValidation.
//
// # Failure semantics
//
// New state is built on a copy and committed to memory only after the
// storage write succeeds, so a failed write leaves the store unchanged.
// After every committed change the full task set is handed to the
// reminders.Scheduler; scheduler errors are logged, not returned.
package tasks
