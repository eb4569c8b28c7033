package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dclay/budgie/internal/normalize"
)

func TestParseDate_Auto(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{"31/01/2024", "2024-01-31", true},
		{"13/02/2024", "2024-02-13", true}, // day > 12, unambiguously day-first
		{"02/13/2024", "2024-02-13", true}, // second component > 12 forces month-first
		{"05/02/2024", "2024-02-05", true}, // ambiguous defaults to day-first
		{"31.01.2024", "2024-01-31", true},
		{"31-01-2024", "2024-01-31", true},
		{"Feb 05, 2024", "2024-02-05", true},
		{"5 Feb 2024", "2024-02-05", true},
		{"05-Feb-2024", "2024-02-05", true},
		{"31 January 2024", "2024-01-31", true},
		{"32/01/2024", "", false}, // day out of bounds
		{"14/13/2024", "", false}, // no slot assignment gives a valid month
		{"01/01/1850", "", false}, // year out of bounds
		{"not a date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalize.ParseDate(tt.input, normalize.DateAuto)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_ExplicitHints(t *testing.T) {
	got, ok := normalize.ParseDate("05/02/2024", normalize.DateMonthFirst)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-02", got)

	got, ok = normalize.ParseDate("05/02/2024", normalize.DateDayFirst)
	assert.True(t, ok)
	assert.Equal(t, "2024-02-05", got)

	_, ok = normalize.ParseDate("05/02/2024", normalize.DateISO)
	assert.False(t, ok)
}

func TestDetectDateFormat(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    normalize.DateFormat
	}{
		{"iso column", []string{"2024-01-05", "2024-01-06"}, normalize.DateISO},
		{"day first proven", []string{"05/01/2024", "13/01/2024"}, normalize.DateDayFirst},
		{"month first proven", []string{"01/05/2024", "01/13/2024"}, normalize.DateMonthFirst},
		{"ambiguous stays day first", []string{"05/01/2024", "06/01/2024"}, normalize.DateAuto},
		{"month names", []string{"5 Feb 2024", "6 Feb 2024"}, normalize.DateMonthName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.DetectDateFormat(tt.samples))
		})
	}
}
