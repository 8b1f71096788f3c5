package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)

func TestParseSmartDateAt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso passthrough", "2025-12-01", "2025-12-01"},
		{"next month", "next month", "2025-05-15"},
		{"next week", "next week", "2025-04-22"},
		{"tomorrow", "tomorrow", "2025-04-16"},
		{"today", "today", "2025-04-15"},
		{"next named month", "next june", "2025-06-15"},
		{"next named month with day", "next june 3", "2025-06-03"},
		{"month day", "june 20", "2025-06-20"},
		{"month day ordinal", "june 21st", "2025-06-21"},
		{"day of month", "21st of june", "2025-06-21"},
		{"mm slash dd", "06/20", "2025-06-20"},
		{"mm dash dd", "6-20", "2025-06-20"},
		{"bare month defaults to 15th", "december", "2025-12-15"},
		{"earlier month rolls to next year", "january 10", "2026-01-10"},
		{"same month earlier day rolls", "april 1", "2026-04-01"},
		{"unparseable falls back to next month", "whenever works", "2025-05-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSmartDateAt(tt.input, testAnchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSmartDateAtErrors(t *testing.T) {
	_, err := ParseSmartDateAt("", testAnchor)
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, err = ParseSmartDateAt("floop 12", testAnchor)
	var unknownMonth *UnknownMonthError
	assert.ErrorAs(t, err, &unknownMonth)
	assert.Equal(t, "floop", unknownMonth.Month)

	_, err = ParseSmartDateAt("june 45", testAnchor)
	var invalidDay *InvalidDayError
	assert.ErrorAs(t, err, &invalidDay)
	assert.Equal(t, "45", invalidDay.Day)

	_, err = ParseSmartDateAt("13/10", testAnchor)
	assert.ErrorAs(t, err, &unknownMonth)
}

func TestParseSmartDateMonthEndAnchors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		anchor time.Time
		want   string
	}{
		{"tomorrow crosses into april", "tomorrow", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), "2025-04-01"},
		{"next week crosses into april", "next week", time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC), "2025-04-04"},
		{"tomorrow crosses february", "tomorrow", time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), "2025-03-01"},
		{"tomorrow crosses the year", "tomorrow", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2026-01-01"},
		{"next week crosses the year", "next week", time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), "2026-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSmartDateAt(tt.input, tt.anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			_, err = time.Parse("2006-01-02", got)
			assert.NoError(t, err)
		})
	}
}

func TestParseSmartDateDecemberAnchorWraps(t *testing.T) {
	decAnchor := time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	got, err := ParseSmartDateAt("next month", decAnchor)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", got)
}
