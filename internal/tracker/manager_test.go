package tracker

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attend-io/attend/internal/config"
	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/logging"
	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/usage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(
		dates.NewResolver(time.UTC),
		config.DefaultKeywords(),
		logging.New(io.Discard, logging.LevelError),
	)
}

func titles(list []*models.Activity) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Title()
	}
	return out
}

func TestNewActivity(t *testing.T) {
	m := newTestManager(t)
	a, err := m.New([]string{"Take", "a", "nap"}, map[string][]string{"tags": {"home"}})
	require.NoError(t, err)
	assert.Equal(t, "Take a nap", a.Title())
	assert.Equal(t, []string{"home"}, a.Tags())
	assert.Equal(t, 1, m.Count())

	// Positional and keyword title together is ambiguous.
	_, err = m.New([]string{"nap"}, map[string][]string{"title": {"nap"}})
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)

	// Unknown fields are rejected.
	_, err = m.New(nil, map[string][]string{"zone": {"inbox"}})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNewAppliesKeywordRules(t *testing.T) {
	m := newTestManager(t)
	a, err := m.New([]string{"water plants weekly"}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntervalWeek, a.Interval())
	d, ok := a.Due()
	require.True(t, ok)
	assert.Equal(t, m.Resolver().Today(), d)

	// Explicit due/interval win over rule defaults.
	b, err := m.New([]string{"pay rent monthly"}, map[string][]string{
		"due":      {"2030-01-01"},
		"interval": {"quarter"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntervalQuarter, b.Interval())
	d, _ = b.Due()
	assert.Equal(t, "2030-01-01", d.String())
}

func TestQueryUsesContext(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"alpha"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"beta"}, nil)
	require.NoError(t, err)

	got, err := m.Query(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, titles(got))

	sel, err := m.Select("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, titles(sel))
}

func TestNewActivityFallbackContext(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"only one"}, nil)
	require.NoError(t, err)

	// No listing has run, yet the new activity is addressable.
	sel, err := m.Select("0")
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, titles(sel))
}

func TestQuerySortKeyword(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"zeta"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"alpha"}, nil)
	require.NoError(t, err)

	got, err := m.Query(map[string][]string{"sort": {"title"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, titles(got))
}

func TestModify(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"alpha"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"beta"}, nil)
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	modified, result, err := m.Modify("0-1", nil, map[string][]string{"tags": {"batch"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Total)
	for _, a := range modified {
		assert.Contains(t, a.Tags(), "batch")
	}

	// The "done" shorthand completes.
	_, err = m.Query(nil, nil)
	require.NoError(t, err)
	_, result, err = m.Modify("0", []string{"done"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	// Queries no longer see the completed activity.
	got, err := m.Query(nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestModifyContinuesPastValidationFailure(t *testing.T) {
	m := newTestManager(t)
	project, err := m.New([]string{"the project"}, map[string][]string{"project": {"true"}})
	require.NoError(t, err)
	task, err := m.New([]string{"the task"}, nil)
	require.NoError(t, err)
	project.AddTask(task.IDHex())

	_, err = m.Query(map[string][]string{"sort": {"title"}}, nil)
	require.NoError(t, err)

	// Clearing the project flag fails for the project (it still has a
	// task); the batch keeps going with the task.
	_, result, err := m.Modify("0-1", nil, map[string][]string{
		"tags":    {"urgent"},
		"project": {"false"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Total)
	assert.True(t, project.Project())

	// The rejected activity is left completely unchanged: the tag
	// update in the same batch was not applied either.
	assert.Empty(t, project.Tags())
	assert.Contains(t, task.Tags(), "urgent")

	// Index state agrees with activity state on both sides.
	got, err := m.Query(map[string][]string{"tags": {"urgent"}, "complete": {"any"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"the task"}, titles(got))
}

func TestModifyBadPhraseLeavesActivitiesUntouched(t *testing.T) {
	m := newTestManager(t)
	a, err := m.New([]string{"steady"}, map[string][]string{"tags": {"keep"}})
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	// An unresolvable date phrase surfaces before any field applies.
	_, _, err = m.Modify("0", nil, map[string][]string{
		"tags": {"extra"},
		"due":  {"flurpsday"},
	})
	var perr *dates.ParseError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, []string{"keep"}, a.Tags())
	_, hasDue := a.Due()
	assert.False(t, hasDue)

	got, err := m.Query(map[string][]string{"tags": {"extra"}, "complete": {"any"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompleteRecurring(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"water plants"}, map[string][]string{
		"due":      {"yesterday"},
		"interval": {"week"},
	})
	require.NoError(t, err)
	_, err = m.Query(map[string][]string{"complete": {"any"}}, nil)
	require.NoError(t, err)

	result, err := m.Complete("0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	// Recurring activity is still open with a new due date, and the
	// index reflects it.
	got, err := m.Query(map[string][]string{"due": {m.Resolver().Today().AddDays(7).String()}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"water plants"}, titles(got))
}

func TestDeleteRetractsIndexes(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"doomed"}, map[string][]string{"tags": {"gone"}})
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	n, err := m.Delete("0")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, m.Count())

	// No dangling reference survives in index or context.
	got, err := m.Query(map[string][]string{"tags": {"gone"}, "complete": {"any"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, m.Current())
}

func TestReschedule(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"dated"}, map[string][]string{"due": {"2030-06-01"}})
	require.NoError(t, err)
	_, err = m.New([]string{"undated"}, nil)
	require.NoError(t, err)
	_, err = m.Query(map[string][]string{"sort": {"title"}}, nil)
	require.NoError(t, err)

	// Default: slip one day.
	result, err := m.Reschedule("0", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	a, err := m.Select("0")
	require.NoError(t, err)
	d, _ := a[0].Due()
	assert.Equal(t, "2030-06-02", d.String())

	// Unit keyword.
	result, err = m.Reschedule("0", nil, map[string][]string{"weeks": {"2"}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded)
	d, _ = a[0].Due()
	assert.Equal(t, "2030-06-16", d.String())

	// Phrase resolves relative to today.
	result, err = m.Reschedule("0", []string{"tomorrow"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded)
	d, _ = a[0].Due()
	assert.Equal(t, m.Resolver().Today().AddDays(1), d)

	// Undated activities are skipped, not failed.
	result, err = m.Reschedule("0-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Total)

	// Bad unit.
	_, err = m.Reschedule("0", nil, map[string][]string{"fortnights": {"1"}})
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestLaterSnoozes(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"snooze me"}, nil)
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	result, err := m.Later("0", "2099-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	got, err := m.Query(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got, "snoozed activity hidden from default listing")

	got, err = m.Query(map[string][]string{"not_before": {"any"}}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNotes(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"annotated"}, nil)
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	n, err := m.AddNote("0", "remember  the  milk")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	selected, err := m.Notes("0")
	require.NoError(t, err)
	require.Len(t, selected, 1)
	notes := selected[0].Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "remember the milk", notes[0].Text)

	_, err = m.AddNote("0", "   ")
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestIncorporateAndTasks(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"big project"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"task one"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"task two"}, nil)
	require.NoError(t, err)
	_, err = m.Query(map[string][]string{"sort": {"title"}}, nil)
	require.NoError(t, err)
	// Context order: big project, task one, task two.

	project, added, err := m.Incorporate("1-2", "0")
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.True(t, project.Project())
	assert.Len(t, project.Tasks(), 2)

	// The project now shows up in the project listing...
	got, err := m.Query(map[string][]string{"project": {"true"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"big project"}, titles(got))

	// ...and its tasks become the context.
	proj, tasks, err := m.TasksOf("0")
	require.NoError(t, err)
	assert.Equal(t, "big project", proj.Title())
	assert.ElementsMatch(t, []string{"task one", "task two"}, titles(tasks))
	assert.ElementsMatch(t, []string{"task one", "task two"}, titles(m.Current()))
}

func TestIncorporateSelfRejected(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"loner"}, nil)
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	_, _, err = m.Incorporate("0", "0")
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestIncorporateRangeIncludingTargetRejected(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"a task"}, nil)
	require.NoError(t, err)
	target, err := m.New([]string{"the target"}, nil)
	require.NoError(t, err)
	_, err = m.Query(map[string][]string{"sort": {"title"}}, nil)
	require.NoError(t, err)

	// The task range includes the target itself; nothing may change.
	_, _, err = m.Incorporate("0-1", "1")
	var uerr *usage.Error
	require.ErrorAs(t, err, &uerr)

	assert.False(t, target.Project())
	assert.Empty(t, target.Tasks())

	// The project index never saw it either.
	got, err := m.Query(map[string][]string{"project": {"true"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFull(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"alpha"}, nil)
	require.NoError(t, err)
	_, err = m.New([]string{"beta"}, nil)
	require.NoError(t, err)
	_, err = m.Query(nil, nil)
	require.NoError(t, err)

	recs, err := m.Full("")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "beta", recs[0].Title)

	recs, err = m.Full("first")
	require.NoError(t, err)
	assert.Equal(t, "alpha", recs[0].Title)

	recs, err = m.Full("all")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = m.Full("0-1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = m.Full("9")
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestPurge(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"ephemeral"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Purge())
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.Current())

	got, err := m.Query(map[string][]string{"complete": {"any"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	_, err := m.New([]string{"persisted"}, map[string][]string{"tags": {"keep"}})
	require.NoError(t, err)

	dir := t.TempDir()
	n, err := m.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	other := newTestManager(t)
	n, err = other.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := other.Query(map[string][]string{"tags": {"keep"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, titles(got))
}

func TestSaveEmptyCollection(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Save(t.TempDir())
	var uerr *usage.Error
	assert.ErrorAs(t, err, &uerr)
}

func TestImport(t *testing.T) {
	m := newTestManager(t)
	path := filepath.Join(t.TempDir(), "inbox.txt")
	content := "buy stamps\n\n# a comment\nwater plants weekly\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := m.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := m.Query(map[string][]string{"words": {"weekly"}}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.IntervalWeek, got[0].Interval())
}
