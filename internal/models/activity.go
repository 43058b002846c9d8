// Package models holds the activity entity and its change history.
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/norm"
)

// Event is one entry in an activity's append-only change history.
type Event struct {
	When time.Time `json:"when"`
	What string    `json:"what"`
}

// Note is a timestamped free-form annotation.
type Note struct {
	When string // RFC 3339 creation timestamp, also the sort key
	Text string
}

// Activity is something you want or need to do: a task, or a project
// with subordinate tasks. All mutation goes through typed setters so
// that validation and history logging cannot be bypassed.
type Activity struct {
	id        uuid.UUID
	title     string
	tags      map[string]struct{}
	due       dates.Date // zero = no due date
	notBefore dates.Date // zero = not snoozed
	complete  bool
	interval  Interval
	project   bool
	tasks     map[string]struct{} // subordinate activity ids, compact hex
	notes     map[string]string   // RFC 3339 timestamp -> text
	history   []Event

	resolver *dates.Resolver
	// rehydrating suppresses history events while replaying stored state.
	rehydrating bool
}

// New creates an empty activity with a fresh identifier. The resolver
// supplies timezone-aware "today" anchors for date-valued setters.
func New(resolver *dates.Resolver) *Activity {
	return &Activity{
		id:       uuid.New(),
		tags:     make(map[string]struct{}),
		tasks:    make(map[string]struct{}),
		notes:    make(map[string]string),
		resolver: resolver,
	}
}

// ID returns the activity's unique identifier.
func (a *Activity) ID() uuid.UUID { return a.id }

// IDHex returns the identifier in the compact hex form used for file
// names and subordinate-task references.
func (a *Activity) IDHex() string {
	return strings.ReplaceAll(a.id.String(), "-", "")
}

// Title returns the normalized title.
func (a *Activity) Title() string { return a.title }

// Complete reports whether the activity is done.
func (a *Activity) Complete() bool { return a.complete }

// Project reports whether the activity is a container for tasks.
func (a *Activity) Project() bool { return a.project }

// Interval returns the recurrence interval, IntervalNone if unset.
func (a *Activity) Interval() Interval { return a.interval }

// Due returns the due date and whether one is set.
func (a *Activity) Due() (dates.Date, bool) {
	return a.due, !a.due.IsZero()
}

// NotBefore returns the snooze date and whether one is set.
func (a *Activity) NotBefore() (dates.Date, bool) {
	return a.notBefore, !a.notBefore.IsZero()
}

// Tags returns the tag set in sorted order.
func (a *Activity) Tags() []string {
	return sortedKeys(a.tags)
}

// Tasks returns the subordinate task ids in sorted order.
func (a *Activity) Tasks() []string {
	return sortedKeys(a.tasks)
}

// History returns a copy of the change log.
func (a *Activity) History() []Event {
	out := make([]Event, len(a.history))
	copy(out, a.history)
	return out
}

// Notes returns all notes ordered by creation time.
func (a *Activity) Notes() []Note {
	keys := sortedKeys(a.notes)
	out := make([]Note, 0, len(keys))
	for _, k := range keys {
		out = append(out, Note{When: k, Text: a.notes[k]})
	}
	return out
}

// SetTitle normalizes and stores the title.
func (a *Activity) SetTitle(value string) {
	a.title = norm.Text(value)
	a.logEvent("title=" + a.title)
}

// SetTags updates the tag set. Values are lowercased; a leading "-"
// removes the named tag instead of adding it.
func (a *Activity) SetTags(values []string) {
	for _, v := range values {
		v = strings.ToLower(norm.Text(v))
		if v == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(v, "-"); ok {
			delete(a.tags, rest)
			continue
		}
		a.tags[v] = struct{}{}
	}
	a.logEvent(fmt.Sprintf("tags=%v", a.Tags()))
}

// SetDue resolves a date phrase and stores the resulting day. For a
// range phrase like "next week" the due date is the end of the range.
// "none" clears the due date; the empty phrase means today.
func (a *Activity) SetDue(phrase string) error {
	if strings.ToLower(norm.Text(phrase)) == "none" {
		a.due = dates.Date{}
		a.logEvent("due=none")
		return nil
	}
	rng, err := a.resolver.Resolve(phrase, a.resolver.Today())
	if err != nil {
		return err
	}
	a.setDueDate(rng.End)
	return nil
}

// SetDueDate stores a concrete due date, bypassing phrase resolution.
func (a *Activity) SetDueDate(d dates.Date) {
	a.setDueDate(d)
}

func (a *Activity) setDueDate(d dates.Date) {
	a.due = d
	a.logEvent("due=" + d.String())
}

// SetNotBefore hides the activity from default listings until the
// resolved date. "none" or an empty phrase clears the snooze.
func (a *Activity) SetNotBefore(phrase string) error {
	p := strings.ToLower(norm.Text(phrase))
	if p == "" || p == "none" {
		a.notBefore = dates.Date{}
		a.logEvent("not_before=none")
		return nil
	}
	rng, err := a.resolver.Resolve(phrase, a.resolver.Today())
	if err != nil {
		return err
	}
	a.notBefore = rng.Start
	a.logEvent("not_before=" + a.notBefore.String())
	return nil
}

// SetComplete flips the completion flag. Completing an activity that
// has a recurrence interval advances the due date by one interval from
// today and resets the flag, so the activity comes around again.
func (a *Activity) SetComplete(value bool) {
	a.complete = value
	a.logEvent("complete=" + strconv.FormatBool(value))
	if a.complete && a.interval != IntervalNone && !a.rehydrating {
		a.setDueDate(a.interval.Advance(a.resolver.Today()))
		a.complete = false
		a.logEvent("complete=false")
	}
}

// SetInterval parses and stores a recurrence interval name.
func (a *Activity) SetInterval(value string) error {
	iv, err := ParseInterval(value)
	if err != nil {
		return err
	}
	a.interval = iv
	if iv == IntervalNone {
		a.logEvent("interval=none")
	} else {
		a.logEvent("interval=" + string(iv))
	}
	return nil
}

// SetProject marks or unmarks the activity as a project. A project
// with subordinate tasks cannot be unmarked.
func (a *Activity) SetProject(value bool) error {
	if !value {
		if err := a.canClearProject(); err != nil {
			return err
		}
	}
	a.project = value
	a.logEvent("project=" + strconv.FormatBool(value))
	return nil
}

// canClearProject enforces the invariant that a project keeps its flag
// while subordinate tasks remain.
func (a *Activity) canClearProject() error {
	if len(a.tasks) > 0 {
		return &ValidationError{
			Field:  "project",
			Reason: fmt.Sprintf("cannot clear the project flag while %d subordinate tasks remain", len(a.tasks)),
		}
	}
	return nil
}

// AddTask registers a subordinate task by id.
func (a *Activity) AddTask(idHex string) {
	a.tasks[idHex] = struct{}{}
}

// RemoveTask drops a subordinate task reference.
func (a *Activity) RemoveTask(idHex string) {
	delete(a.tasks, idHex)
}

// AddNote attaches a normalized note stamped with the current time.
func (a *Activity) AddNote(text string) {
	when := time.Now().In(a.resolver.Location()).Format(time.RFC3339)
	a.notes[when] = norm.Text(text)
}

// Words returns the lowercased word set drawn from the title, tags,
// interval, and notes. The words index and keyword rules consume it.
func (a *Activity) Words() map[string]struct{} {
	words := make(map[string]struct{})
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			words[w] = struct{}{}
		}
	}
	add(a.title)
	for tag := range a.tags {
		add(tag)
	}
	if a.interval != IntervalNone {
		add(string(a.interval))
	}
	for _, text := range a.notes {
		add(text)
	}
	return words
}

// Set dispatches a field mutation by name. It backs the "modify" verb
// and keyword-map construction; unknown fields are rejected rather
// than silently ignored.
func (a *Activity) Set(field string, values []string) error {
	setter, ok := setters[field]
	if !ok {
		return &ValidationError{Field: field, Reason: "no such attribute"}
	}
	return setter(a, values)
}

// Validate reports whether Set would accept the field update, without
// mutating the activity. Batch operations check every field this way
// first, so a rejected update leaves the activity untouched.
func (a *Activity) Validate(field string, values []string) error {
	check, ok := checkers[field]
	if !ok {
		return &ValidationError{Field: field, Reason: "no such attribute"}
	}
	if check == nil {
		return nil
	}
	return check(a, values)
}

// checkers mirrors setters with validation-only functions. A nil entry
// means the field accepts any value.
var checkers = map[string]func(a *Activity, values []string) error{
	"title": nil,
	"tags":  nil,
	"due": func(a *Activity, values []string) error {
		phrase := strings.Join(values, " ")
		if strings.ToLower(norm.Text(phrase)) == "none" {
			return nil
		}
		_, err := a.resolver.Resolve(phrase, a.resolver.Today())
		return err
	},
	"not_before": func(a *Activity, values []string) error {
		phrase := strings.ToLower(norm.Text(strings.Join(values, " ")))
		if phrase == "" || phrase == "none" {
			return nil
		}
		_, err := a.resolver.Resolve(phrase, a.resolver.Today())
		return err
	},
	"complete": func(a *Activity, values []string) error {
		_, err := parseBool("complete", values)
		return err
	},
	"interval": func(a *Activity, values []string) error {
		_, err := ParseInterval(strings.Join(values, " "))
		return err
	},
	"project": func(a *Activity, values []string) error {
		v, err := parseBool("project", values)
		if err != nil {
			return err
		}
		if !v {
			return a.canClearProject()
		}
		return nil
	},
}

// setters maps field names to typed mutation functions. This is the
// explicit replacement for constructing activities from free-form
// keyword maps.
var setters = map[string]func(a *Activity, values []string) error{
	"title": func(a *Activity, values []string) error {
		a.SetTitle(strings.Join(values, " "))
		return nil
	},
	"tags": func(a *Activity, values []string) error {
		a.SetTags(values)
		return nil
	},
	"due": func(a *Activity, values []string) error {
		return a.SetDue(strings.Join(values, " "))
	},
	"not_before": func(a *Activity, values []string) error {
		return a.SetNotBefore(strings.Join(values, " "))
	},
	"complete": func(a *Activity, values []string) error {
		v, err := parseBool("complete", values)
		if err != nil {
			return err
		}
		a.SetComplete(v)
		return nil
	},
	"interval": func(a *Activity, values []string) error {
		return a.SetInterval(strings.Join(values, " "))
	},
	"project": func(a *Activity, values []string) error {
		v, err := parseBool("project", values)
		if err != nil {
			return err
		}
		return a.SetProject(v)
	},
}

func parseBool(field string, values []string) (bool, error) {
	if len(values) != 1 {
		return false, &ValidationError{Field: field, Reason: "expected a single true/false value"}
	}
	switch strings.ToLower(values[0]) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}
	return false, &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("expected true or false, got %q", values[0]),
	}
}

func (a *Activity) logEvent(what string) {
	if a.rehydrating {
		return
	}
	a.history = append(a.history, Event{
		When: time.Now().In(a.resolver.Location()),
		What: what,
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *Activity) String() string {
	return a.title
}
