package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "standard site date", input: "11 Dec 2025", expected: "2025-12-11", ok: true},
		{name: "single digit day", input: "3 Jan 2026", expected: "2026-01-03", ok: true},
		{name: "surrounding whitespace", input: "  21 Jun 2025  ", expected: "2025-06-21", ok: true},
		{name: "full month name", input: "11 December 2025", expected: "2025-12-11", ok: true},
		{name: "unknown month", input: "11 Foo 2025", ok: false},
		{name: "day out of range", input: "32 Dec 2025", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "tomorrow", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "24 hour", input: "14:30", expected: "14:30:00", ok: true},
		{name: "24 hour with seconds", input: "14:30:45", expected: "14:30:45", ok: true},
		{name: "12 hour PM", input: "2:30 PM", expected: "14:30:00", ok: true},
		{name: "12 hour AM", input: "9:05 AM", expected: "09:05:00", ok: true},
		{name: "midnight", input: "12:00 AM", expected: "00:00:00", ok: true},
		{name: "noon", input: "12:00 PM", expected: "12:00:00", ok: true},
		{name: "lowercase meridiem", input: "2:30 pm", expected: "14:30:00", ok: true},
		{name: "no space before meridiem", input: "2:30PM", expected: "14:30:00", ok: true},
		{name: "hour out of range", input: "25:00", ok: false},
		{name: "not a time", input: "afternoon", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTime(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

// Every valid 12-hour input must re-parse with a 24-hour reference
// parser to the same wall-clock time.
func TestNormalizeTimeTwelveHourRoundTrip(t *testing.T) {
	inputs := []string{
		"12:00 AM", "12:30 AM", "1:00 AM", "6:45 AM", "11:59 AM",
		"12:00 PM", "12:01 PM", "1:15 PM", "6:45 PM", "11:59 PM",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			normalized, ok := NormalizeTime(input)
			require.True(t, ok)

			reference, err := time.Parse("3:04 PM", input)
			require.NoError(t, err)

			reparsed, err := time.Parse("15:04:05", normalized)
			require.NoError(t, err)

			assert.Equal(t, reference.Hour(), reparsed.Hour())
			assert.Equal(t, reference.Minute(), reparsed.Minute())
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "1h 50m", expected: 110},
		{input: "1h50m", expected: 110},
		{input: "1h50", expected: 110},
		{input: "5h 30m", expected: 330},
		{input: "2h", expected: 120},
		{input: "45m", expected: 45},
		{input: "1:50", expected: 110},
		{input: "", expected: 0},
		{input: "soon", expected: 0},
		// Seconds are discarded, never rounded into minutes
		{input: "1h 50m 59s", expected: 110},
		// A bare minute tail above 59 is not a minute tail
		{input: "1h75", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDuration(tt.input))
		})
	}
}

func TestNextDate(t *testing.T) {
	assert.Equal(t, "2025-12-12", NextDate("2025-12-11"))
	assert.Equal(t, "2026-01-01", NextDate("2025-12-31"))
	// Unparseable dates pass through untouched
	assert.Equal(t, "n/a", NextDate("n/a"))
}

func TestExpandDateRange(t *testing.T) {
	dates, err := ExpandDateRange("2025-12-30", "2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-30", "2025-12-31", "2026-01-01", "2026-01-02"}, dates)

	single, err := ExpandDateRange("2025-12-30", "2025-12-30")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-30"}, single)

	_, err = ExpandDateRange("2026-01-02", "2025-12-30")
	assert.Error(t, err)

	_, err = ExpandDateRange("30 Dec 2025", "2026-01-02")
	assert.Error(t, err)
}
