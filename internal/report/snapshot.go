package report

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/common"
	"github.com/dmitrijs2005/rxkeeper/internal/models"
)

// UserSource provides the patient profile.
type UserSource interface {
	Get(ctx context.Context) (models.User, error)
}

// TaskSource provides the flagged tasks of a user.
type TaskSource interface {
	Flagged(ctx context.Context, userID string) ([]models.Task, error)
}

// LedgerSource provides adherence history and missed events.
type LedgerSource interface {
	History(ctx context.Context, userID string, days int) ([]models.ComplianceDay, error)
	MissedEvents(ctx context.Context, userID string, since time.Time) ([]models.TaskEvent, error)
}

// Snapshot is the read-only input of a report.
type Snapshot struct {
	User              models.User
	ComplianceHistory []models.ComplianceDay
	FlaggedTasks      []models.Task
	MissedTaskEvents  []models.TaskEvent
	GeneratedAt       time.Time
}

// OverallRate is the mean of the daily percentages, or 0 without history.
func (s Snapshot) OverallRate() float64 {
	if len(s.ComplianceHistory) == 0 {
		return 0
	}
	var sum float64
	for _, d := range s.ComplianceHistory {
		sum += d.Percent
	}
	return sum / float64(len(s.ComplianceHistory))
}

// Builder collects snapshots.
type Builder struct {
	users  UserSource
	tasks  TaskSource
	ledger LedgerSource
	clock  clock.Clock
	days   int
}

// NewBuilder returns a builder covering the last days days; days <= 0 means
// common.DefaultHistoryDays and the window is capped at common.MaxHistoryDays.
func NewBuilder(users UserSource, tasks TaskSource, ledger LedgerSource, c clock.Clock, days int) *Builder {
	if days <= 0 {
		days = common.DefaultHistoryDays
	}
	days = min(days, common.MaxHistoryDays)
	return &Builder{users: users, tasks: tasks, ledger: ledger, clock: c, days: days}
}

// SnapshotForReport gathers the user's profile, compliance history, flagged
// tasks and the misses inside the history window. A missing profile yields
// a zero profile carrying userID.
func (b *Builder) SnapshotForReport(ctx context.Context, userID string) (Snapshot, error) {
	now := b.clock.Now()

	user, err := b.users.Get(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		user = models.User{ID: userID}
	case err != nil:
		return Snapshot{}, err
	}

	history, err := b.ledger.History(ctx, userID, b.days)
	if err != nil {
		return Snapshot{}, err
	}

	flagged, err := b.tasks.Flagged(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	y, m, d := now.Date()
	since := time.Date(y, m, d-(b.days-1), 0, 0, 0, 0, now.Location())
	missed, err := b.ledger.MissedEvents(ctx, userID, since)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		User:              user,
		ComplianceHistory: history,
		FlaggedTasks:      flagged,
		MissedTaskEvents:  missed,
		GeneratedAt:       now,
	}, nil
}
