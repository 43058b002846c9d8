// Package query evaluates multi-predicate filters over the activity
// collection and owns the "current context" that positional commands
// resolve against.
package query

import (
	"sort"
	"strings"

	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/index"
	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/usage"
)

// Criteria describes one query: attribute filters, the attributes that
// combine with OR instead of AND, and the result ordering.
type Criteria struct {
	// Fields maps attribute name to requested values. Multiple values
	// for one attribute all have to match.
	Fields map[string][]string
	// Or names the Fields entries that are unioned against the full
	// collection instead of narrowing the running result.
	Or []string
	// Sort lists explicit sort keys; nil means the default (due, then
	// title), and the single key "none" disables sorting.
	Sort []string
}

// Engine evaluates criteria against the index store and keeps the
// result context for follow-up positional commands.
type Engine struct {
	store    *index.Store
	resolver *dates.Resolver
	source   func() []*models.Activity

	current []*models.Activity
	// recent holds the most recently created single activities; it is
	// the fallback context before any listing command has run.
	recent []*models.Activity
}

// recentLimit caps the fallback context of recently created activities.
const recentLimit = 8

// NewEngine builds an engine over the given index store. The source
// function yields the full activity collection for scans the indexes
// cannot answer (absent-value queries, stalled projects).
func NewEngine(store *index.Store, resolver *dates.Resolver, source func() []*models.Activity) *Engine {
	return &Engine{store: store, resolver: resolver, source: source}
}

// Evaluate runs the query, installs the result as the new current
// context, and returns it in sorted order.
func (e *Engine) Evaluate(c Criteria) ([]*models.Activity, error) {
	fields := make(map[string][]string, len(c.Fields)+2)
	for k, v := range c.Fields {
		fields[k] = v
	}

	// Implicit defaults: hide completed activities and snoozed ones
	// unless the caller asked for them.
	if vals, ok := fields["complete"]; ok {
		if isAny(vals) {
			delete(fields, "complete")
		}
	} else {
		fields["complete"] = []string{"false"}
	}
	if vals, ok := fields["not_before"]; ok {
		if isAny(vals) {
			delete(fields, "not_before")
		}
	} else {
		fields["not_before"] = []string{"today"}
	}

	full := e.fullSet()
	orGroup := make(map[string]bool, len(c.Or))
	for _, f := range c.Or {
		orGroup[f] = true
	}

	// Conjunctive filters narrow the running set one attribute at a
	// time, short-circuiting once nothing is left.
	result := full
	for _, field := range sortedFields(fields) {
		if orGroup[field] {
			continue
		}
		matched, err := e.evalField(field, fields[field], full)
		if err != nil {
			return nil, err
		}
		result = result.Intersect(matched)
		if len(result) == 0 {
			break
		}
	}

	// OR-group members each run against the pre-filter collection;
	// their union then intersects the conjunctive result.
	if len(c.Or) > 0 {
		union := make(index.Set)
		for _, field := range c.Or {
			vals, ok := fields[field]
			if !ok {
				return nil, usage.Errorf("or-group attribute %q has no filter value", field)
			}
			matched, err := e.evalField(field, vals, full)
			if err != nil {
				return nil, err
			}
			union = union.Union(matched)
		}
		result = result.Intersect(union)
	}

	list := result.Slice()
	if err := sortActivities(list, c.Sort); err != nil {
		return nil, err
	}
	e.current = list
	return list, nil
}

func (e *Engine) fullSet() index.Set {
	all := e.source()
	full := make(index.Set, len(all))
	for _, a := range all {
		full[a.IDHex()] = a
	}
	return full
}

// evalField resolves one attribute filter against the given base set.
func (e *Engine) evalField(field string, values []string, full index.Set) (index.Set, error) {
	switch field {
	case "due":
		rng, err := e.resolveRange(field, values)
		if err != nil {
			return nil, err
		}
		return e.dueBetween(rng.Start.String(), rng.End.String()), nil
	case "overdue":
		rng, err := e.resolveRange(field, values)
		if err != nil {
			return nil, err
		}
		return e.dueBetween("", rng.End.String()), nil
	case "not_before":
		rng, err := e.resolveRange(field, values)
		if err != nil {
			return nil, err
		}
		return e.visibleBy(rng.Start.String(), full), nil
	case "stalled":
		matched := make(index.Set)
		for id, a := range full {
			if len(a.Tasks()) == 0 {
				matched[id] = a
			}
		}
		return matched, nil
	case "title", "words", "tags", "complete", "project", "interval", "tasks":
		result := full
		for _, v := range values {
			result = result.Intersect(e.store.Lookup(index.Attribute(field), v))
			if len(result) == 0 {
				break
			}
		}
		return result, nil
	}
	return nil, usage.Errorf("cannot filter by unknown attribute %q", field)
}

// resolveRange turns a single-valued date filter into a concrete range.
func (e *Engine) resolveRange(field string, values []string) (dates.Range, error) {
	if len(values) > 1 {
		return dates.Range{}, usage.Errorf("only one value is supported when filtering by %s; got %d", field, len(values))
	}
	phrase := ""
	if len(values) == 1 {
		phrase = values[0]
	}
	return e.resolver.Resolve(phrase, e.resolver.Today())
}

// dueBetween unions the due-index entries whose ISO datestamp falls in
// [lo, hi]. An empty lo means "anything at or before hi".
func (e *Engine) dueBetween(lo, hi string) index.Set {
	matched := make(index.Set)
	for _, key := range e.store.Keys(index.AttrDue) {
		if key < lo || key > hi {
			continue
		}
		matched = matched.Union(e.store.Lookup(index.AttrDue, key))
	}
	return matched
}

// visibleBy matches activities whose snooze date has arrived by the
// given datestamp, plus everything that was never snoozed.
func (e *Engine) visibleBy(stamp string, full index.Set) index.Set {
	matched := make(index.Set)
	for _, key := range e.store.Keys(index.AttrNotBefore) {
		if key <= stamp {
			matched = matched.Union(e.store.Lookup(index.AttrNotBefore, key))
		}
	}
	for id, a := range full {
		if _, snoozed := a.NotBefore(); !snoozed {
			matched[id] = a
		}
	}
	return matched
}

func isAny(values []string) bool {
	if len(values) != 1 {
		return false
	}
	v := strings.ToLower(values[0])
	return v == "any" || v == "all"
}

func sortedFields(fields map[string][]string) []string {
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
