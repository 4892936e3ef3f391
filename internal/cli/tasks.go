package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/models"
	"github.com/dmitrijs2005/rxkeeper/internal/timex"
)

const displayLayout = "2006-01-02 15:04"

func (a *App) stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(a.location).Format(displayLayout)
}

func (a *App) printTasks(list []models.Task) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tasks.")
		return
	}
	for _, t := range list {
		marks := ""
		if t.Flagged {
			marks += " [flagged]"
		}
		if t.Completed {
			marks += " [done]"
		}
		fmt.Fprintf(a.out, "%s  %-24s  next %s  (%s)%s\n", t.ID, t.Title, a.stamp(t.NextTriggerTime), t.Frequency, marks)
	}
}

func (a *App) Add(ctx context.Context) error {
	var in models.NewTask
	var err error
	in.UserID = a.userID

	if in.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.Description, err = GetSimpleText(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}
	if in.Type, err = GetSimpleText(a.reader, "Type (medication, check, ...)", a.out); err != nil {
		return err
	}
	if in.Time, err = GetTimestamp(a.reader, "First occurrence", a.location, a.out); err != nil {
		return err
	}
	if in.Frequency, err = GetSimpleText(a.reader, "Frequency (daily, weekly, every N hours)", a.out); err != nil {
		return err
	}
	if in.Notes, err = GetSimpleText(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	t, err := a.tasks.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s, next reminder %s\n", t.ID, a.stamp(t.NextTriggerTime))
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.tasks.ListByUser(ctx, a.userID)
	if err != nil {
		return err
	}
	a.printTasks(list)
	return nil
}

func (a *App) Today(ctx context.Context) error {
	list, err := a.tasks.ListToday(ctx, a.userID)
	if err != nil {
		return err
	}
	a.printTasks(list)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "ID:          %s\n", t.ID)
	fmt.Fprintf(a.out, "Title:       %s\n", t.Title)
	fmt.Fprintf(a.out, "Description: %s\n", t.Description)
	fmt.Fprintf(a.out, "Type:        %s\n", t.Type)
	fmt.Fprintf(a.out, "Time:        %s\n", a.stamp(t.Time))
	fmt.Fprintf(a.out, "Frequency:   %s\n", t.Frequency)
	fmt.Fprintf(a.out, "Next:        %s\n", a.stamp(t.NextTriggerTime))
	fmt.Fprintf(a.out, "Notes:       %s\n", t.Notes)
	fmt.Fprintf(a.out, "Flagged:     %t\n", t.Flagged)
	fmt.Fprintf(a.out, "Completed:   %t\n", t.Completed)
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Press Enter to keep the current value.")
	var p models.TaskPatch
	if p.Title, err = GetOptionalText(a.reader, "Title", t.Title, a.out); err != nil {
		return err
	}
	if p.Description, err = GetOptionalText(a.reader, "Description", t.Description, a.out); err != nil {
		return err
	}
	if p.Type, err = GetOptionalText(a.reader, "Type", t.Type, a.out); err != nil {
		return err
	}
	rawTime, err := GetOptionalText(a.reader, "Time", a.stamp(t.Time), a.out)
	if err != nil {
		return err
	}
	if rawTime != nil {
		ts, err := timex.ParseTimestamp(*rawTime, a.location)
		if err != nil {
			return err
		}
		p.Time = &ts
	}
	if p.Frequency, err = GetOptionalText(a.reader, "Frequency", t.Frequency, a.out); err != nil {
		return err
	}
	if p.Notes, err = GetOptionalText(a.reader, "Notes", t.Notes, a.out); err != nil {
		return err
	}

	updated, err := a.tasks.Update(ctx, id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s, next reminder %s\n", updated.ID, a.stamp(updated.NextTriggerTime))
	return nil
}

func (a *App) Flag(ctx context.Context, id string) error {
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	flagged := !t.Flagged
	if _, err := a.tasks.Update(ctx, id, models.TaskPatch{Flagged: &flagged}); err != nil {
		return err
	}
	if flagged {
		fmt.Fprintf(a.out, "Flagged %s for the caregiver report\n", id)
	} else {
		fmt.Fprintf(a.out, "Unflagged %s\n", id)
	}
	return nil
}

func (a *App) Done(ctx context.Context, id string) error {
	return a.recordOutcome(ctx, id, true)
}

func (a *App) Miss(ctx context.Context, id string) error {
	return a.recordOutcome(ctx, id, false)
}

// recordOutcome stores the task's completion state and counts the event in
// the ledger.
func (a *App) recordOutcome(ctx context.Context, id string, completed bool) error {
	if _, err := a.tasks.Update(ctx, id, models.TaskPatch{Completed: &completed}); err != nil {
		return err
	}
	day, err := a.ledger.RecordEvent(ctx, a.userID, id, completed)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded. Today: %d/%d completed (%.1f%%)\n", day.Completed, day.Total, day.Percent)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.tasks.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}
