package query

import (
	"regexp"
	"strconv"

	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/usage"
)

var (
	rxNumeric      = regexp.MustCompile(`^(\d+)$`)
	rxNumericRange = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
)

// ParseSelector recognizes a positional selector: a single zero-based
// index "i" or an inclusive range "i-j". For a single index the
// returned end equals the start.
func ParseSelector(s string) (start, end int, ok bool) {
	if m := rxNumeric.FindStringSubmatch(s); m != nil {
		i, _ := strconv.Atoi(m[1])
		return i, i, true
	}
	if m := rxNumericRange.FindStringSubmatch(s); m != nil {
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[2])
		return i, j, true
	}
	return 0, 0, false
}

// Current returns the result list of the most recent query.
func (e *Engine) Current() []*models.Activity {
	return e.current
}

// SetCurrent installs a list (e.g. a project's subordinate tasks) as
// the new context.
func (e *Engine) SetCurrent(list []*models.Activity) {
	e.current = list
}

// ClearContext drops both the current result list and the fallback
// history, e.g. after a purge.
func (e *Engine) ClearContext() {
	e.current = nil
	e.recent = nil
}

// RecordCreated notes a newly created activity in the fallback
// context used before any listing command has run.
func (e *Engine) RecordCreated(a *models.Activity) {
	e.recent = append(e.recent, a)
	if len(e.recent) > recentLimit {
		e.recent = e.recent[len(e.recent)-recentLimit:]
	}
}

// Context returns the active positional context: the current query
// result, or the recently created activities if nothing has been
// listed yet.
func (e *Engine) Context() []*models.Activity {
	if len(e.current) > 0 {
		return e.current
	}
	return e.recent
}

// Forget removes a deleted activity from both context lists so stale
// positional references cannot reach it.
func (e *Engine) Forget(a *models.Activity) {
	e.current = without(e.current, a)
	e.recent = without(e.recent, a)
}

// without copies list minus a. The context shares its backing array
// with the slice Evaluate returned to the caller, so filtering in
// place would corrupt the caller's copy.
func without(list []*models.Activity, a *models.Activity) []*models.Activity {
	out := make([]*models.Activity, 0, len(list))
	for _, x := range list {
		if x != a {
			out = append(out, x)
		}
	}
	return out
}

// Select resolves a positional selector against the active context.
func (e *Engine) Select(selector string) ([]*models.Activity, error) {
	context := e.Context()
	if len(context) == 0 {
		return nil, usage.Errorf(`no activity context is defined; use "list", "due", "overdue" or another listing command first`)
	}
	i, j, ok := ParseSelector(selector)
	if !ok {
		return nil, usage.Errorf("expected a number or numeric range, got %q", selector)
	}
	if j < i {
		return nil, usage.Errorf("invalid range %q: end precedes start", selector)
	}
	for _, n := range []int{i, j} {
		if n > len(context)-1 {
			return nil, usage.Errorf("index %d is out of range in the current context; valid range is 0-%d", n, len(context)-1)
		}
	}
	out := make([]*models.Activity, j-i+1)
	copy(out, context[i:j+1])
	return out, nil
}
