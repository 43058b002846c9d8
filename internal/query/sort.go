package query

import (
	"sort"
	"strings"

	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/usage"
)

// dueAbsent sorts activities without a due date after every dated one.
const dueAbsent = "9999-99-99"

// sortKeys maps a sort key name to the comparable string it extracts.
var sortKeys = map[string]func(a *models.Activity) string{
	"due": func(a *models.Activity) string {
		if d, ok := a.Due(); ok {
			return d.String()
		}
		return dueAbsent
	},
	"title": func(a *models.Activity) string {
		return strings.ToLower(a.Title())
	},
	"not_before": func(a *models.Activity) string {
		if d, ok := a.NotBefore(); ok {
			return d.String()
		}
		return ""
	},
	"interval": func(a *models.Activity) string {
		return string(a.Interval())
	},
}

// sortActivities orders the list by the given keys. Nil keys means the
// default (due, then title); the single key "none" leaves the list in
// set order.
func sortActivities(list []*models.Activity, keys []string) error {
	if keys == nil {
		keys = []string{"due", "title"}
	}
	if len(keys) == 1 && strings.ToLower(keys[0]) == "none" {
		return nil
	}

	getters := make([]func(a *models.Activity) string, 0, len(keys))
	for _, k := range keys {
		getter, ok := sortKeys[strings.ToLower(k)]
		if !ok {
			return usage.Errorf("unknown sort key %q", k)
		}
		getters = append(getters, getter)
	}

	sort.SliceStable(list, func(i, j int) bool {
		for _, get := range getters {
			vi, vj := get(list[i]), get(list[j])
			if vi != vj {
				return vi < vj
			}
		}
		return false
	})
	return nil
}
