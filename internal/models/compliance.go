package models

import "time"

// ComplianceDay aggregates the task events of one user on one calendar day.
// Completed + Missed always equals Total.
type ComplianceDay struct {
	UserID    string  `json:"userId"`
	Date      Date    `json:"date"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Missed    int     `json:"missed"`
	Percent   float64 `json:"percent"`
}

// EmptyDay returns the zero-valued placeholder for a day without events.
func EmptyDay(userID string, date Date) ComplianceDay {
	return ComplianceDay{UserID: userID, Date: date}
}

// Record counts one event and refreshes Percent.
func (d *ComplianceDay) Record(completed bool) {
	d.Total++
	if completed {
		d.Completed++
	} else {
		d.Missed++
	}
	d.Percent = Percent(d.Completed, d.Total)
}

// Percent returns completed/total*100, or 0 when total is 0.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// TaskEvent is a single completion or miss outcome.
type TaskEvent struct {
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	Completed bool      `json:"completed"`
	At        time.Time `json:"timestamp"`
}
