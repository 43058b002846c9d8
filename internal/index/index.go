// Package index maintains inverted indexes over the activity
// collection, one per indexable attribute, plus the reverse index that
// makes re-indexing after a mutation safe.
package index

import (
	"sort"
	"strconv"
	"strings"

	"github.com/attend-io/attend/internal/models"
)

// Attribute names an indexable activity attribute.
type Attribute string

// The indexable attributes.
const (
	AttrTitle     Attribute = "title"
	AttrWords     Attribute = "words"
	AttrTags      Attribute = "tags"
	AttrDue       Attribute = "due"
	AttrComplete  Attribute = "complete"
	AttrNotBefore Attribute = "not_before"
	AttrProject   Attribute = "project"
	AttrInterval  Attribute = "interval"
	AttrTasks     Attribute = "tasks"
)

// Attributes lists every indexed attribute.
var Attributes = []Attribute{
	AttrTitle,
	AttrWords,
	AttrTags,
	AttrDue,
	AttrComplete,
	AttrNotBefore,
	AttrProject,
	AttrInterval,
	AttrTasks,
}

// Set is a collection of activities keyed by id.
type Set map[string]*models.Activity

// Intersect returns the activities present in both sets.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for id, a := range small {
		if _, ok := large[id]; ok {
			out[id] = a
		}
	}
	return out
}

// Union returns the activities present in either set.
func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for id, a := range s {
		out[id] = a
	}
	for id, a := range o {
		out[id] = a
	}
	return out
}

// Slice returns the set's activities in a deterministic (id) order.
func (s Set) Slice() []*models.Activity {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.Activity, 0, len(ids))
	for _, id := range ids {
		out = append(out, s[id])
	}
	return out
}

// Store holds the forward indexes (attribute value -> activities) and
// the reverse index (activity -> registered values per attribute).
type Store struct {
	forward map[Attribute]map[string]Set
	reverse map[string]map[Attribute][]string
}

// NewStore returns an empty index store.
func NewStore() *Store {
	s := &Store{
		forward: make(map[Attribute]map[string]Set, len(Attributes)),
		reverse: make(map[string]map[Attribute][]string),
	}
	for _, attr := range Attributes {
		s.forward[attr] = make(map[string]Set)
	}
	return s
}

// Index registers the activity's current values under every indexable
// attribute, first retracting whatever it was registered under before.
// Calling it twice with no intervening mutation changes nothing.
func (s *Store) Index(a *models.Activity) {
	s.Retract(a)
	record := make(map[Attribute][]string, len(Attributes))
	for _, attr := range Attributes {
		keys := extractors[attr](a)
		for _, key := range keys {
			byKey := s.forward[attr][key]
			if byKey == nil {
				byKey = make(Set)
				s.forward[attr][key] = byKey
			}
			byKey[a.IDHex()] = a
		}
		record[attr] = keys
	}
	s.reverse[a.IDHex()] = record
}

// Retract removes every index entry for the activity and clears its
// reverse-index record. Deleting an activity without retracting it
// leaves dangling references behind.
func (s *Store) Retract(a *models.Activity) {
	id := a.IDHex()
	record, ok := s.reverse[id]
	if !ok {
		return
	}
	for attr, keys := range record {
		for _, key := range keys {
			byKey := s.forward[attr][key]
			delete(byKey, id)
			if len(byKey) == 0 {
				delete(s.forward[attr], key)
			}
		}
	}
	delete(s.reverse, id)
}

// Lookup returns the activities registered under the given value. An
// unknown attribute or value yields an empty set, not an error.
func (s *Store) Lookup(attr Attribute, value string) Set {
	out := make(Set)
	for id, a := range s.forward[attr][normalizeKey(value)] {
		out[id] = a
	}
	return out
}

// Keys returns the sorted distinct values registered under attr. Date
// queries scan it for range matches.
func (s *Store) Keys(attr Attribute) []string {
	byKey := s.forward[attr]
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(value string) string {
	return strings.ToLower(value)
}

// extractors yields the index keys each attribute contributes for an
// activity. Absent optional values contribute no keys at all.
var extractors = map[Attribute]func(a *models.Activity) []string{
	AttrTitle: func(a *models.Activity) []string {
		if a.Title() == "" {
			return nil
		}
		return []string{normalizeKey(a.Title())}
	},
	AttrWords: func(a *models.Activity) []string {
		words := a.Words()
		out := make([]string, 0, len(words))
		for w := range words {
			out = append(out, w)
		}
		sort.Strings(out)
		return out
	},
	AttrTags: func(a *models.Activity) []string {
		return a.Tags()
	},
	AttrDue: func(a *models.Activity) []string {
		if d, ok := a.Due(); ok {
			return []string{d.String()}
		}
		return nil
	},
	AttrComplete: func(a *models.Activity) []string {
		return []string{strconv.FormatBool(a.Complete())}
	},
	AttrNotBefore: func(a *models.Activity) []string {
		if d, ok := a.NotBefore(); ok {
			return []string{d.String()}
		}
		return nil
	},
	AttrProject: func(a *models.Activity) []string {
		return []string{strconv.FormatBool(a.Project())}
	},
	AttrInterval: func(a *models.Activity) []string {
		if a.Interval() == models.IntervalNone {
			return nil
		}
		return []string{string(a.Interval())}
	},
	AttrTasks: func(a *models.Activity) []string {
		return a.Tasks()
	},
}
