package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anchor is a known Wednesday.
var anchor = NewDate(2024, time.March, 6)

func resolve(t *testing.T, phrase string) Range {
	t.Helper()
	r := NewResolver(time.UTC)
	rng, err := r.Resolve(phrase, anchor)
	require.NoError(t, err)
	return rng
}

func TestResolveSingleDays(t *testing.T) {
	tests := []struct {
		phrase string
		want   string
	}{
		{"today", "2024-03-06"},
		{"", "2024-03-06"},
		{"  Today ", "2024-03-06"},
		{"yesterday", "2024-03-05"},
		{"tomorrow", "2024-03-07"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			rng := resolve(t, tt.phrase)
			assert.Equal(t, tt.want, rng.Start.String())
			assert.Equal(t, rng.Start, rng.End, "single-day phrases have End == Start")
		})
	}
}

func TestResolveWeekdays(t *testing.T) {
	tests := []struct {
		phrase string
		want   string
	}{
		// Bare weekdays resolve to the upcoming occurrence, never the past.
		{"monday", "2024-03-11"},
		{"tuesday", "2024-03-12"},
		{"wednesday", "2024-03-06"}, // anchor's own weekday resolves to the anchor
		{"thursday", "2024-03-07"},
		{"friday", "2024-03-08"},
		{"saturday", "2024-03-09"},
		{"sunday", "2024-03-10"},
		{"this friday", "2024-03-08"},
		{"next monday", "2024-03-18"},
		{"next wednesday", "2024-03-13"},
		{"last monday", "2024-03-04"},
		{"last wednesday", "2024-02-28"},
		{"last thursday", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			rng := resolve(t, tt.phrase)
			assert.Equal(t, tt.want, rng.Start.String())
			assert.Equal(t, rng.Start, rng.End)
		})
	}
}

func TestResolvePeriods(t *testing.T) {
	tests := []struct {
		phrase    string
		wantStart string
		wantEnd   string
	}{
		// "week" is the working week, Monday through Friday.
		{"week", "2024-03-04", "2024-03-08"},
		{"this week", "2024-03-04", "2024-03-08"},
		{"next week", "2024-03-11", "2024-03-15"},
		{"last week", "2024-02-26", "2024-03-01"},
		{"this month", "2024-03-01", "2024-03-31"},
		{"next month", "2024-04-01", "2024-04-30"},
		{"last month", "2024-02-01", "2024-02-29"},
		{"this quarter", "2024-01-01", "2024-03-31"},
		{"next quarter", "2024-04-01", "2024-06-30"},
		{"last quarter", "2023-10-01", "2023-12-31"},
		{"this year", "2024-01-01", "2024-12-31"},
		{"next year", "2025-01-01", "2025-12-31"},
		{"last year", "2023-01-01", "2023-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			rng := resolve(t, tt.phrase)
			assert.Equal(t, tt.wantStart, rng.Start.String())
			assert.Equal(t, tt.wantEnd, rng.End.String())
		})
	}
}

func TestResolveQuarterAcrossYearBoundary(t *testing.T) {
	r := NewResolver(time.UTC)

	novAnchor := NewDate(2024, time.November, 20)
	rng, err := r.Resolve("next quarter", novAnchor)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", rng.Start.String())
	assert.Equal(t, "2025-03-31", rng.End.String())

	febAnchor := NewDate(2024, time.February, 10)
	rng, err = r.Resolve("last quarter", febAnchor)
	require.NoError(t, err)
	assert.Equal(t, "2023-10-01", rng.Start.String())
	assert.Equal(t, "2023-12-31", rng.End.String())
}

func TestResolveAbsolute(t *testing.T) {
	tests := []struct {
		phrase string
		want   string
	}{
		{"2021-07-03", "2021-07-03"},
		{"2021-7-3", "2021-07-03"},
		{"Jul 3 2021", "2021-07-03"},
		{"July 3, 2021", "2021-07-03"},
		{"3 Jul 2021", "2021-07-03"},
		{"07/03/2021", "2021-07-03"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			rng := resolve(t, tt.phrase)
			assert.Equal(t, tt.want, rng.Start.String())
			assert.Equal(t, rng.Start, rng.End)
		})
	}
}

func TestResolveUnrecognized(t *testing.T) {
	r := NewResolver(time.UTC)
	_, err := r.Resolve("sometime soonish", anchor)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "sometime soonish", perr.Phrase)
}

func TestRangeContains(t *testing.T) {
	rng := Range{NewDate(2024, time.March, 4), NewDate(2024, time.March, 8)}
	assert.True(t, rng.Contains(NewDate(2024, time.March, 4)))
	assert.True(t, rng.Contains(NewDate(2024, time.March, 8)))
	assert.False(t, rng.Contains(NewDate(2024, time.March, 3)))
	assert.False(t, rng.Contains(NewDate(2024, time.March, 9)))
}

func TestDateArithmetic(t *testing.T) {
	assert.Equal(t, "2024-02-29", NewDate(2024, time.January, 31).AddMonths(1).String(), "clamps to month end")
	assert.Equal(t, "2023-02-28", NewDate(2023, time.January, 31).AddMonths(1).String())
	assert.Equal(t, "2025-02-28", NewDate(2024, time.February, 29).AddYears(1).String())
	assert.Equal(t, "2023-12-01", NewDate(2024, time.March, 1).AddMonths(-3).String())
	assert.Equal(t, "2024-03-01", NewDate(2024, time.February, 29).AddDays(1).String())

	d, err := ParseDate("2024-03-06")
	if assert.NoError(t, err) {
		assert.Equal(t, anchor, d)
	}
	_, err = ParseDate("03/06/2024")
	assert.Error(t, err)

	assert.True(t, Date{}.IsZero())
	assert.False(t, anchor.IsZero())
	assert.Equal(t, time.Wednesday, anchor.Weekday())
}
