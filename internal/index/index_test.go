package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/models"
)

func newActivity(t *testing.T, title string, tags ...string) *models.Activity {
	t.Helper()
	a := models.New(dates.NewResolver(time.UTC))
	a.SetTitle(title)
	if len(tags) > 0 {
		a.SetTags(tags)
	}
	return a
}

func TestIndexAndLookup(t *testing.T) {
	s := NewStore()
	a := newActivity(t, "Feed the cat", "home", "pets")
	s.Index(a)

	assert.Contains(t, s.Lookup(AttrTitle, "feed the cat"), a.IDHex())
	assert.Contains(t, s.Lookup(AttrTitle, "Feed The Cat"), a.IDHex(), "lookup is case-insensitive")
	assert.Contains(t, s.Lookup(AttrTags, "pets"), a.IDHex())
	assert.Contains(t, s.Lookup(AttrWords, "cat"), a.IDHex())
	assert.Contains(t, s.Lookup(AttrComplete, "false"), a.IDHex())
	assert.Empty(t, s.Lookup(AttrTags, "work"))
	assert.Empty(t, s.Lookup(AttrDue, "2024-03-06"), "absent values are not indexed")
}

func TestReindexAfterMutation(t *testing.T) {
	s := NewStore()
	a := newActivity(t, "Feed the cat", "pets")
	s.Index(a)

	a.SetTags([]string{"-pets", "chores"})
	a.SetTitle("Feed the dog")
	s.Index(a)

	assert.Empty(t, s.Lookup(AttrTags, "pets"))
	assert.Empty(t, s.Lookup(AttrTitle, "feed the cat"))
	assert.Empty(t, s.Lookup(AttrWords, "cat"))
	assert.Contains(t, s.Lookup(AttrTags, "chores"), a.IDHex())
	assert.Contains(t, s.Lookup(AttrWords, "dog"), a.IDHex())
}

func TestReindexKeepsOtherActivities(t *testing.T) {
	s := NewStore()
	a := newActivity(t, "Walk the dog", "pets")
	b := newActivity(t, "Brush the cat", "pets")
	s.Index(a)
	s.Index(b)

	a.SetTags([]string{"-pets"})
	s.Index(a)

	got := s.Lookup(AttrTags, "pets")
	assert.NotContains(t, got, a.IDHex())
	assert.Contains(t, got, b.IDHex())
}

func TestIndexIdempotent(t *testing.T) {
	s := NewStore()
	a := newActivity(t, "Feed the cat", "pets")
	s.Index(a)
	s.Index(a)

	assert.Len(t, s.Lookup(AttrTags, "pets"), 1)
	assert.Len(t, s.Lookup(AttrWords, "feed"), 1)
	assert.Len(t, s.Lookup(AttrComplete, "false"), 1)
}

func TestRetract(t *testing.T) {
	s := NewStore()
	a := newActivity(t, "Feed the cat", "pets")
	s.Index(a)
	s.Retract(a)

	assert.Empty(t, s.Lookup(AttrTags, "pets"))
	assert.Empty(t, s.Lookup(AttrTitle, "feed the cat"))
	assert.Empty(t, s.Lookup(AttrComplete, "false"))
	assert.Empty(t, s.Keys(AttrTags), "emptied keys are pruned")

	// Retracting an unknown activity is a no-op.
	s.Retract(newActivity(t, "never indexed"))
}

func TestDateKeysSortable(t *testing.T) {
	s := NewStore()
	resolver := dates.NewResolver(time.UTC)
	for _, due := range []string{"2024-03-10", "2024-03-02", "2024-11-01"} {
		a := models.New(resolver)
		a.SetTitle("due " + due)
		require.NoError(t, a.SetDue(due))
		s.Index(a)
	}
	assert.Equal(t, []string{"2024-03-02", "2024-03-10", "2024-11-01"}, s.Keys(AttrDue))
}

func TestSetOperations(t *testing.T) {
	a := newActivity(t, "a")
	b := newActivity(t, "b")
	c := newActivity(t, "c")
	s1 := Set{a.IDHex(): a, b.IDHex(): b}
	s2 := Set{b.IDHex(): b, c.IDHex(): c}

	inter := s1.Intersect(s2)
	assert.Len(t, inter, 1)
	assert.Contains(t, inter, b.IDHex())

	union := s1.Union(s2)
	assert.Len(t, union, 3)

	assert.Len(t, union.Slice(), 3)
}
