package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordRule applies default attributes to a newly created activity
// whose word set contains the trigger word. Explicitly supplied due
// dates and intervals always win over rule defaults.
type KeywordRule struct {
	Word     string   `yaml:"word"`
	Due      string   `yaml:"due,omitempty"`
	Interval string   `yaml:"interval,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// DefaultKeywords returns the built-in rule set: recurrence words set
// due=today plus the matching interval.
func DefaultKeywords() []KeywordRule {
	return []KeywordRule{
		{Word: "daily", Due: "today", Interval: "day"},
		{Word: "weekly", Due: "today", Interval: "week"},
		{Word: "biweekly", Due: "today", Interval: "biweekly"},
		{Word: "monthly", Due: "today", Interval: "month"},
		{Word: "quarterly", Due: "today", Interval: "quarter"},
		{Word: "yearly", Due: "today", Interval: "year"},
		{Word: "annually", Due: "today", Interval: "year"},
	}
}

// LoadKeywords reads rules from a YAML file and appends them to the
// built-in defaults. An empty path, or a missing file, yields just the
// defaults.
func LoadKeywords(path string) ([]KeywordRule, error) {
	rules := DefaultKeywords()
	if path == "" || !FileExists(path) {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file %s: %w", path, err)
	}
	var extra []KeywordRule
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file %s: %w", path, err)
	}
	return append(rules, extra...), nil
}
