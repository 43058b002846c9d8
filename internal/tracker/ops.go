package tracker

import (
	"errors"
	"strconv"
	"strings"

	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/usage"
)

// BatchResult reports how many activities in a ranged operation were
// actually changed.
type BatchResult struct {
	Succeeded int
	Total     int
}

// Modify applies field updates to the selected activities. Extra
// positional arguments may include "complete" or "done" as shorthand.
// Updates are atomic per activity: a validation failure on any field
// leaves that activity completely unchanged, is reported, and the
// batch continues with the rest.
func (m *Manager) Modify(selector string, args []string, kwargs map[string][]string) ([]*models.Activity, BatchResult, error) {
	updates := make(map[string][]string, len(kwargs)+1)
	for k, v := range kwargs {
		updates[k] = v
	}
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "complete", "done":
			updates["complete"] = []string{"true"}
		default:
			return nil, BatchResult{}, usage.Errorf("unrecognized argument %q", arg)
		}
	}
	if len(updates) == 0 {
		return nil, BatchResult{}, usage.Errorf("nothing to modify; supply field:value arguments")
	}

	selected, err := m.engine.Select(selector)
	if err != nil {
		return nil, BatchResult{}, err
	}

	result := BatchResult{Total: len(selected)}
	for _, a := range selected {
		// Every field must validate before anything is applied, so a
		// rejected activity keeps its current state and index entries.
		if err := validateUpdates(a, updates); err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				m.log.Errorf("skipping %q: %v", a.Title(), verr)
				continue
			}
			return nil, result, err
		}
		if err := m.applyUpdates(a, updates); err != nil {
			// Validation passed, so this is unexpected; re-index before
			// surfacing it so partial mutations stay visible to queries.
			m.store.Index(a)
			return nil, result, err
		}
		m.store.Index(a)
		result.Succeeded++
	}
	m.engine.SetCurrent(selected)
	return selected, result, nil
}

func validateUpdates(a *models.Activity, updates map[string][]string) error {
	for field, values := range updates {
		if err := a.Validate(field, values); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) applyUpdates(a *models.Activity, updates map[string][]string) error {
	for field, values := range updates {
		if err := a.Set(field, values); err != nil {
			return err
		}
	}
	return nil
}

// Complete marks the selected activities as done. Recurring activities
// reschedule themselves instead.
func (m *Manager) Complete(selector string) (BatchResult, error) {
	selected, err := m.engine.Select(selector)
	if err != nil {
		return BatchResult{}, err
	}
	result := BatchResult{Total: len(selected)}
	for _, a := range selected {
		a.SetComplete(true)
		m.store.Index(a)
		result.Succeeded++
	}
	return result, nil
}

// Delete removes the selected activities from the collection and from
// every index. Deletion always retracts; queries can never return a
// dangling reference.
func (m *Manager) Delete(selector string) (int, error) {
	selected, err := m.engine.Select(selector)
	if err != nil {
		return 0, err
	}
	for _, a := range selected {
		m.store.Retract(a)
		m.engine.Forget(a)
		delete(m.activities, a.IDHex())
	}
	return len(selected), nil
}

// rescheduleUnits are the keyword arguments Reschedule accepts for
// shifting a due date by a count of calendar units.
var rescheduleUnits = map[string]func(d dates.Date, n int) dates.Date{
	"days":   func(d dates.Date, n int) dates.Date { return d.AddDays(n) },
	"weeks":  func(d dates.Date, n int) dates.Date { return d.AddDays(7 * n) },
	"months": func(d dates.Date, n int) dates.Date { return d.AddMonths(n) },
	"years":  func(d dates.Date, n int) dates.Date { return d.AddYears(n) },
}

// Reschedule moves the due date of the selected activities. With no
// arguments the due date slips one day; a keyword argument like
// weeks:2 shifts by that many units; positional words form a date
// phrase resolved relative to today. Activities without a due date are
// skipped and counted as failures.
func (m *Manager) Reschedule(selector string, args []string, kwargs map[string][]string) (BatchResult, error) {
	shift, err := buildShift(m.resolver, args, kwargs)
	if err != nil {
		return BatchResult{}, err
	}

	selected, err := m.engine.Select(selector)
	if err != nil {
		return BatchResult{}, err
	}
	result := BatchResult{Total: len(selected)}
	for i, a := range selected {
		due, ok := a.Due()
		if !ok {
			m.log.Errorf("activity %d:%q has no due date; reschedule ignored", i, a.Title())
			continue
		}
		a.SetDueDate(shift(due))
		m.store.Index(a)
		result.Succeeded++
	}
	return result, nil
}

// buildShift turns reschedule arguments into a due-date transform.
func buildShift(resolver *dates.Resolver, args []string, kwargs map[string][]string) (func(dates.Date) dates.Date, error) {
	if len(args) > 0 {
		if len(kwargs) > 0 {
			return nil, usage.Errorf("supply either a date phrase or unit:count, not both")
		}
		phrase := strings.Join(args, " ")
		rng, err := resolver.Resolve(phrase, resolver.Today())
		if err != nil {
			return nil, err
		}
		return func(dates.Date) dates.Date { return rng.End }, nil
	}

	switch len(kwargs) {
	case 0:
		return func(d dates.Date) dates.Date { return d.AddDays(1) }, nil
	case 1:
		for unit, values := range kwargs {
			apply, ok := rescheduleUnits[strings.ToLower(unit)]
			if !ok {
				return nil, usage.Errorf("unsupported unit %q; expected days, weeks, months, or years", unit)
			}
			if len(values) != 1 {
				return nil, usage.Errorf("%s takes a single count", unit)
			}
			n, err := strconv.Atoi(values[0])
			if err != nil {
				return nil, usage.Errorf("%s:%s is not a whole number", unit, values[0])
			}
			return func(d dates.Date) dates.Date { return apply(d, n) }, nil
		}
	}
	return nil, usage.Errorf("supply at most one unit:count argument")
}

// Later snoozes the selected activities: they disappear from default
// listings until the resolved date. An empty phrase means tomorrow.
func (m *Manager) Later(selector, phrase string) (BatchResult, error) {
	if strings.TrimSpace(phrase) == "" {
		phrase = "tomorrow"
	}
	selected, err := m.engine.Select(selector)
	if err != nil {
		return BatchResult{}, err
	}
	result := BatchResult{Total: len(selected)}
	for _, a := range selected {
		if err := a.SetNotBefore(phrase); err != nil {
			return result, err
		}
		m.store.Index(a)
		result.Succeeded++
	}
	return result, nil
}

// AddNote attaches a note to each selected activity.
func (m *Manager) AddNote(selector, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, usage.Errorf("missing note text")
	}
	selected, err := m.engine.Select(selector)
	if err != nil {
		return 0, err
	}
	for _, a := range selected {
		a.AddNote(text)
		m.store.Index(a)
	}
	return len(selected), nil
}

// Notes returns the selected activities for note display.
func (m *Manager) Notes(selector string) ([]*models.Activity, error) {
	return m.engine.Select(selector)
}

// Incorporate makes the activities selected by taskSel subordinate
// tasks of the single project selected by projectSel, marking it as a
// project if needed.
func (m *Manager) Incorporate(taskSel, projectSel string) (*models.Activity, int, error) {
	tasks, err := m.engine.Select(taskSel)
	if err != nil {
		return nil, 0, err
	}
	projects, err := m.engine.Select(projectSel)
	if err != nil {
		return nil, 0, err
	}
	if len(projects) != 1 {
		return nil, 0, usage.Errorf("the target must be a single activity, got %d", len(projects))
	}
	project := projects[0]

	// Reject the selection before mutating anything, so a bad range
	// cannot leave the project half-changed or unindexed.
	for _, task := range tasks {
		if task == project {
			return nil, 0, usage.Errorf("a project cannot incorporate itself")
		}
	}

	if !project.Project() {
		if err := project.SetProject(true); err != nil {
			return nil, 0, err
		}
	}
	for _, task := range tasks {
		project.AddTask(task.IDHex())
	}
	m.store.Index(project)
	return project, len(tasks), nil
}

// TasksOf resolves the subordinate tasks of the single selected
// project and installs them as the new context. Dangling references
// (tasks deleted since incorporation) are skipped with a warning.
func (m *Manager) TasksOf(selector string) (*models.Activity, []*models.Activity, error) {
	selected, err := m.engine.Select(selector)
	if err != nil {
		return nil, nil, err
	}
	if len(selected) != 1 {
		return nil, nil, usage.Errorf("expected a single activity, got %d", len(selected))
	}
	project := selected[0]

	var tasks []*models.Activity
	for _, idHex := range project.Tasks() {
		task, ok := m.activities[idHex]
		if !ok {
			m.log.Warningf("project %q references missing task %s", project.Title(), idHex)
			continue
		}
		tasks = append(tasks, task)
	}
	m.engine.SetCurrent(tasks)
	return project, tasks, nil
}

// Full returns the complete serialized records selected by arg:
// "" or "last" for the most recent context entry, "first", "all", a
// single index, or an index range.
func (m *Manager) Full(arg string) ([]models.Record, error) {
	context := m.engine.Context()
	if len(context) == 0 {
		return nil, usage.Errorf(`no activity context is defined; use "list" or another listing command first`)
	}

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "last", "previous":
		return []models.Record{context[len(context)-1].Record()}, nil
	case "first":
		return []models.Record{context[0].Record()}, nil
	case "all":
		out := make([]models.Record, len(context))
		for i, a := range context {
			out[i] = a.Record()
		}
		return out, nil
	}

	selected, err := m.engine.Select(arg)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, len(selected))
	for i, a := range selected {
		out[i] = a.Record()
	}
	return out, nil
}
