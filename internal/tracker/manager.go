// Package tracker coordinates the activity collection, its indexes,
// and the query engine behind the command verbs.
package tracker

import (
	"strings"

	"github.com/attend-io/attend/internal/config"
	"github.com/attend-io/attend/internal/dates"
	"github.com/attend-io/attend/internal/index"
	"github.com/attend-io/attend/internal/logging"
	"github.com/attend-io/attend/internal/models"
	"github.com/attend-io/attend/internal/query"
	"github.com/attend-io/attend/internal/usage"
)

// Manager owns the in-memory activity collection and keeps the index
// store synchronized with every mutation.
type Manager struct {
	resolver   *dates.Resolver
	store      *index.Store
	engine     *query.Engine
	activities map[string]*models.Activity
	keywords   []config.KeywordRule
	log        *logging.Logger
}

// NewManager creates an empty manager.
func NewManager(resolver *dates.Resolver, keywords []config.KeywordRule, log *logging.Logger) *Manager {
	m := &Manager{
		resolver:   resolver,
		store:      index.NewStore(),
		activities: make(map[string]*models.Activity),
		keywords:   keywords,
		log:        log,
	}
	m.engine = query.NewEngine(m.store, resolver, m.all)
	return m
}

func (m *Manager) all() []*models.Activity {
	out := make([]*models.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, a)
	}
	return out
}

// Count returns the number of activities in memory.
func (m *Manager) Count() int {
	return len(m.activities)
}

// Resolver returns the date resolver shared by all components.
func (m *Manager) Resolver() *dates.Resolver {
	return m.resolver
}

// Current returns the active positional context.
func (m *Manager) Current() []*models.Activity {
	return m.engine.Context()
}

// Select resolves a positional selector ("2", "3-5") against the
// current context.
func (m *Manager) Select(selector string) ([]*models.Activity, error) {
	return m.engine.Select(selector)
}

// Add places an activity under management and indexes it.
func (m *Manager) Add(a *models.Activity) *models.Activity {
	m.activities[a.IDHex()] = a
	m.store.Index(a)
	return a
}

// New creates an activity from positional title words and keyword
// arguments, applies the keyword default rules, and records it in the
// fallback context.
func (m *Manager) New(args []string, kwargs map[string][]string) (*models.Activity, error) {
	if len(args) > 0 {
		if _, ok := kwargs["title"]; ok {
			return nil, usage.Errorf("title given both positionally and as title:...")
		}
	}

	a := models.New(m.resolver)
	if len(args) > 0 {
		a.SetTitle(strings.Join(args, " "))
	}
	for field, values := range kwargs {
		if err := a.Set(field, values); err != nil {
			return nil, err
		}
	}

	m.applyKeywords(a)
	m.Add(a)
	m.engine.RecordCreated(a)
	m.log.Debugf("created activity %s (%q)", a.IDHex(), a.Title())
	return a, nil
}

// applyKeywords applies the configured default rules to an activity
// whose word set contains a trigger word. Explicit due dates and
// intervals are never overridden.
func (m *Manager) applyKeywords(a *models.Activity) {
	words := a.Words()
	for _, rule := range m.keywords {
		if _, ok := words[strings.ToLower(rule.Word)]; !ok {
			continue
		}
		if rule.Due != "" {
			if _, has := a.Due(); !has {
				if err := a.SetDue(rule.Due); err != nil {
					m.log.Warningf("keyword %q: bad due phrase %q: %v", rule.Word, rule.Due, err)
				}
			}
		}
		if rule.Interval != "" && a.Interval() == models.IntervalNone {
			if err := a.SetInterval(rule.Interval); err != nil {
				m.log.Warningf("keyword %q: bad interval %q: %v", rule.Word, rule.Interval, err)
			}
		}
		if len(rule.Tags) > 0 {
			a.SetTags(rule.Tags)
		}
	}
}

// Query evaluates keyword-argument filters. The reserved "sort" key
// selects explicit sort keys ("sort:none" disables ordering); the
// orGroup names attributes combined with OR instead of AND. The result
// becomes the new current context.
func (m *Manager) Query(kwargs map[string][]string, orGroup []string) ([]*models.Activity, error) {
	crit := query.Criteria{
		Fields: make(map[string][]string, len(kwargs)),
		Or:     orGroup,
	}
	for field, values := range kwargs {
		if field == "sort" {
			crit.Sort = values
			continue
		}
		crit.Fields[field] = values
	}
	return m.engine.Evaluate(crit)
}

// Purge discards every activity, all indexes, and the context.
func (m *Manager) Purge() int {
	count := len(m.activities)
	m.activities = make(map[string]*models.Activity)
	m.store = index.NewStore()
	m.engine = query.NewEngine(m.store, m.resolver, m.all)
	return count
}
