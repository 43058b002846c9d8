package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/attend-io/attend/internal/dates"
)

// Interval is a recurrence period. Completing an activity that carries
// an interval reschedules it instead of retiring it.
type Interval string

// Supported recurrence intervals. IntervalNone means the activity does
// not recur.
const (
	IntervalNone     Interval = ""
	IntervalDay      Interval = "day"
	IntervalWorkday  Interval = "workday"
	IntervalWeek     Interval = "week"
	IntervalBiweekly Interval = "biweekly"
	IntervalMonth    Interval = "month"
	IntervalQuarter  Interval = "quarter"
	IntervalYear     Interval = "year"
)

var supportedIntervals = []Interval{
	IntervalDay,
	IntervalWorkday,
	IntervalWeek,
	IntervalBiweekly,
	IntervalMonth,
	IntervalQuarter,
	IntervalYear,
}

// ParseInterval converts a user-supplied interval name. "none" and the
// empty string clear the interval; anything else must be one of the
// supported names.
func ParseInterval(s string) (Interval, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "none" {
		return IntervalNone, nil
	}
	for _, iv := range supportedIntervals {
		if v == string(iv) {
			return iv, nil
		}
	}
	names := make([]string, len(supportedIntervals))
	for i, iv := range supportedIntervals {
		names[i] = fmt.Sprintf("%q", string(iv))
	}
	return IntervalNone, &ValidationError{
		Field:  "interval",
		Reason: fmt.Sprintf("unexpected value %q; supported values are none, %s", s, strings.Join(names, ", ")),
	}
}

// Advance returns the next due date after one interval from the given
// date. The workday interval skips weekends.
func (iv Interval) Advance(from dates.Date) dates.Date {
	switch iv {
	case IntervalDay:
		return from.AddDays(1)
	case IntervalWorkday:
		d := from.AddDays(1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDays(1)
		}
		return d
	case IntervalWeek:
		return from.AddDays(7)
	case IntervalBiweekly:
		return from.AddDays(14)
	case IntervalMonth:
		return from.AddMonths(1)
	case IntervalQuarter:
		return from.AddMonths(3)
	case IntervalYear:
		return from.AddYears(1)
	}
	return from
}
