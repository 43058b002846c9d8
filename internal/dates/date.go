// Package dates resolves natural-language date phrases ("next week",
// "last quarter", a bare weekday) into concrete day-granularity ranges.
package dates

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component.
// The zero value means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the given calendar date, normalized (e.g. Feb 30
// rolls forward the way time.Date does).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime discards the time-of-day portion of t.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO YYYY-MM-DD datestamp.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid datestamp %q: %w", s, err)
	}
	return FromTime(t), nil
}

// IsZero reports whether d is the "no date" value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String returns the ISO YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight on d in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week for d.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is later than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// AddDays returns d shifted by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time(time.UTC).AddDate(0, 0, n))
}

// AddMonths returns d shifted by n months. When the target month is
// shorter than the source day the result clamps to the last day of the
// target month, so Jan 31 + 1 month is Feb 28 (or 29), not Mar 2.
func (d Date) AddMonths(n int) Date {
	y, m := d.Year, int(d.Month)-1+n
	y += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := d.Day
	if last := daysIn(y, month); day > last {
		day = last
	}
	return Date{Year: y, Month: month, Day: day}
}

// AddYears returns d shifted by n years, clamping Feb 29 to Feb 28 in
// non-leap target years.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

func daysIn(year int, month time.Month) int {
	// First of next month, minus one day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
