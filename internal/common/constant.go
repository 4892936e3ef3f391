package common

// Names of the persisted collections.
const (
	CollectionTasks      = "tasks"
	CollectionCompliance = "compliance"
	CollectionTaskEvents = "task_events"
	CollectionUser       = "user"
)

// DefaultHistoryDays is the window used for compliance history and reports
// when the caller does not ask for a specific one.
const DefaultHistoryDays = 7

// MaxHistoryDays bounds the compliance history window.
const MaxHistoryDays = 366
