package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/attend-io/attend/internal/norm"
)

// ParseError reports a phrase the resolver could not interpret.
type ParseError struct {
	Phrase string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized date phrase %q", e.Phrase)
}

// Range is an inclusive span of calendar days. Single-day resolutions
// set End equal to Start.
type Range struct {
	Start Date
	End   Date
}

// Contains reports whether d falls within the range, inclusive.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

var rxDescriptive = regexp.MustCompile(
	`^(?:(last|this|next) )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|week|month|quarter|year)$`)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Layouts accepted for explicit dates, tried in order.
var absoluteLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"Jan 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
}

// Resolver translates relative-date phrases into concrete ranges.
// The location is fixed at construction; there is no package-level
// timezone state.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a resolver anchored to the given location.
// A nil location means time.Local.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc}
}

// Location returns the resolver's timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Today returns the current date in the resolver's location.
func (r *Resolver) Today() Date {
	return FromTime(time.Now().In(r.loc))
}

// Resolve interprets phrase relative to the anchor date. An empty
// phrase means "today". Phrases that match neither the relative
// grammar nor an absolute date layout yield a *ParseError.
func (r *Resolver) Resolve(phrase string, anchor Date) (Range, error) {
	cleaned := norm.Text(phrase)
	p := strings.ToLower(cleaned)
	if p == "" {
		p = "today"
	}

	switch p {
	case "today":
		return Range{anchor, anchor}, nil
	case "yesterday":
		d := anchor.AddDays(-1)
		return Range{d, d}, nil
	case "tomorrow":
		d := anchor.AddDays(1)
		return Range{d, d}, nil
	}

	m := rxDescriptive.FindStringSubmatch(p)
	if m == nil {
		for _, layout := range absoluteLayouts {
			if t, err := time.ParseInLocation(layout, cleaned, r.loc); err == nil {
				d := FromTime(t)
				return Range{d, d}, nil
			}
		}
		return Range{}, &ParseError{Phrase: phrase}
	}

	relation, period := m[1], m[2]

	if wd, ok := weekdays[period]; ok {
		return resolveWeekday(wd, relation, anchor), nil
	}

	var rng Range
	var shift func(Range, int) Range
	switch period {
	case "week":
		// The working week: Monday through Friday.
		monday := anchor.AddDays(-int((anchor.Weekday() + 6) % 7))
		rng = Range{monday, monday.AddDays(4)}
		shift = func(r Range, n int) Range {
			return Range{r.Start.AddDays(7 * n), r.End.AddDays(7 * n)}
		}
	case "month":
		start := NewDate(anchor.Year, anchor.Month, 1)
		rng = monthSpan(start, 1)
		shift = func(r Range, n int) Range {
			return monthSpan(r.Start.AddMonths(n), 1)
		}
	case "quarter":
		qm := time.Month((int(anchor.Month)-1)/3*3 + 1)
		start := NewDate(anchor.Year, qm, 1)
		rng = monthSpan(start, 3)
		shift = func(r Range, n int) Range {
			return monthSpan(r.Start.AddMonths(3*n), 3)
		}
	case "year":
		start := NewDate(anchor.Year, time.January, 1)
		rng = monthSpan(start, 12)
		shift = func(r Range, n int) Range {
			return monthSpan(r.Start.AddYears(n), 12)
		}
	}

	switch relation {
	case "last":
		rng = shift(rng, -1)
	case "next":
		rng = shift(rng, 1)
	}
	return rng, nil
}

// monthSpan is the range covering n whole months starting at start,
// which must be the first day of a month.
func monthSpan(start Date, n int) Range {
	return Range{start, start.AddMonths(n).AddDays(-1)}
}

// resolveWeekday finds the named weekday relative to the anchor. The
// bare form (and "this") means the upcoming occurrence at or after the
// anchor, never a past date; "next" is one week beyond that; "last"
// one week before it.
func resolveWeekday(wd time.Weekday, relation string, anchor Date) Range {
	d := anchor.AddDays(int((wd - anchor.Weekday() + 7) % 7))
	switch relation {
	case "next":
		d = d.AddDays(7)
	case "last":
		d = d.AddDays(-7)
	}
	return Range{d, d}
}
