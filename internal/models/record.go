package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attend-io/attend/internal/dates"
)

// Record is the serialization contract for an activity: identifier,
// title, and completion flag are always present, optional attributes
// only when non-empty.
type Record struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Complete  bool              `json:"complete"`
	Due       string            `json:"due,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Interval  string            `json:"interval,omitempty"`
	NotBefore string            `json:"not_before,omitempty"`
	Project   bool              `json:"project,omitempty"`
	Tasks     []string          `json:"tasks,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
	History   []eventRecord     `json:"history,omitempty"`
}

type eventRecord struct {
	What string `json:"what"`
	When string `json:"when"`
}

// Record captures the activity's current state for persistence.
func (a *Activity) Record() Record {
	rec := Record{
		ID:       a.IDHex(),
		Title:    a.title,
		Complete: a.complete,
		Project:  a.project,
		Interval: string(a.interval),
	}
	if d, ok := a.Due(); ok {
		rec.Due = d.String()
	}
	if d, ok := a.NotBefore(); ok {
		rec.NotBefore = d.String()
	}
	if len(a.tags) > 0 {
		rec.Tags = a.Tags()
	}
	if len(a.tasks) > 0 {
		rec.Tasks = a.Tasks()
	}
	if len(a.notes) > 0 {
		rec.Notes = make(map[string]string, len(a.notes))
		for k, v := range a.notes {
			rec.Notes[k] = v
		}
	}
	for _, e := range a.history {
		rec.History = append(rec.History, eventRecord{
			What: e.What,
			When: e.When.Format(time.RFC3339),
		})
	}
	return rec
}

// Rehydrate rebuilds an activity from a stored record. History events
// are replayed verbatim; no new events are logged during rebuild.
func Rehydrate(resolver *dates.Resolver, rec Record) (*Activity, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid activity id %q: %w", rec.ID, err)
	}

	a := New(resolver)
	a.id = id
	a.rehydrating = true
	defer func() { a.rehydrating = false }()

	a.SetTitle(rec.Title)
	if len(rec.Tags) > 0 {
		a.SetTags(rec.Tags)
	}
	if rec.Due != "" {
		d, err := dates.ParseDate(rec.Due)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", rec.ID, err)
		}
		a.due = d
	}
	if rec.NotBefore != "" {
		d, err := dates.ParseDate(rec.NotBefore)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", rec.ID, err)
		}
		a.notBefore = d
	}
	if err := a.SetInterval(rec.Interval); err != nil {
		return nil, fmt.Errorf("activity %s: %w", rec.ID, err)
	}
	a.complete = rec.Complete
	if err := a.SetProject(rec.Project); err != nil {
		return nil, fmt.Errorf("activity %s: %w", rec.ID, err)
	}
	for _, idHex := range rec.Tasks {
		a.AddTask(idHex)
	}
	for k, v := range rec.Notes {
		a.notes[k] = v
	}
	for _, e := range rec.History {
		when, err := time.Parse(time.RFC3339, e.When)
		if err != nil {
			return nil, fmt.Errorf("activity %s: invalid history timestamp %q: %w", rec.ID, e.When, err)
		}
		a.history = append(a.history, Event{When: when, What: e.What})
	}
	return a, nil
}
