// Package recurrence maps a task's anchor time and frequency rule to its
// next trigger time.
//
// Rules are a closed set parsed once at the create/edit boundary:
//
//	daily            anchor + 1 calendar day
//	every N hour(s)  anchor + N hours (fixed duration)
//	weekly           anchor + 7 calendar days
//
// Calendar arithmetic goes through time.AddDate so a daily reminder keeps
// its wall-clock time across DST changes.
package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/common"
)

// Kind selects the rule variant.
type Kind int

const (
	KindDaily Kind = iota + 1
	KindEveryNHours
	KindWeekly
)

// Rule is a parsed frequency. The zero value is invalid.
type Rule struct {
	Kind  Kind
	Hours int
}

var (
	Daily  = Rule{Kind: KindDaily}
	Weekly = Rule{Kind: KindWeekly}
)

// EveryNHours returns the fixed-interval rule for n hours.
func EveryNHours(n int) Rule {
	return Rule{Kind: KindEveryNHours, Hours: n}
}

var everyNHours = regexp.MustCompile(`^every\s+(\d+)\s+hours?$`)

// Parse reads a frequency rule. Matching is case-insensitive and ignores
// surrounding and repeated whitespace. Unknown rules fail with
// common.ErrValidation.
func Parse(text string) (Rule, error) {
	s := strings.ToLower(strings.Join(strings.Fields(text), " "))
	switch s {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	}
	if m := everyNHours.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Rule{}, fmt.Errorf("%w: hour interval must be a positive integer, got %q", common.ErrValidation, m[1])
		}
		return EveryNHours(n), nil
	}
	return Rule{}, fmt.Errorf("%w: unrecognized frequency %q", common.ErrValidation, text)
}

// Next returns the trigger that follows anchor.
func (r Rule) Next(anchor time.Time) time.Time {
	switch r.Kind {
	case KindDaily:
		return anchor.AddDate(0, 0, 1)
	case KindEveryNHours:
		return anchor.Add(time.Duration(r.Hours) * time.Hour)
	case KindWeekly:
		return anchor.AddDate(0, 0, 7)
	default:
		return anchor
	}
}

// String renders the canonical rule text stored on tasks.
func (r Rule) String() string {
	switch r.Kind {
	case KindDaily:
		return "daily"
	case KindWeekly:
		return "weekly"
	case KindEveryNHours:
		if r.Hours == 1 {
			return "every 1 hour"
		}
		return fmt.Sprintf("every %d hours", r.Hours)
	default:
		return ""
	}
}

// NextTrigger is the permissive form for callers holding raw rule text:
// an unrecognized rule returns anchor unchanged instead of failing.
func NextTrigger(anchor time.Time, frequency string) time.Time {
	r, err := Parse(frequency)
	if err != nil {
		return anchor
	}
	return r.Next(anchor)
}
