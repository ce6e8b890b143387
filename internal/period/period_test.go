package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMonthKey(t *testing.T) {
	assert.Equal(t, "2025-06", FormatMonthKey(2025, 5))
	assert.Equal(t, "2024-12", FormatMonthKey(2024, 11))
	assert.Equal(t, "0999-01", FormatMonthKey(999, 0))
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		key       string
		year      int
		month     int
		wantError bool
	}{
		{"2025-06", 2025, 5, false},
		{"2025-6", 2025, 5, false},
		{"2024-12", 2024, 11, false},
		{" 2024-01 ", 2024, 0, false},
		{"2024-13", 0, 0, true},
		{"2024-00", 0, 0, true},
		{"2024", 0, 0, true},
		{"abcd-01", 0, 0, true},
		{"2024-xx", 0, 0, true},
	}
	for _, tt := range tests {
		year, month, err := ParseMonthKey(tt.key)
		if tt.wantError {
			assert.Error(t, err, "ParseMonthKey(%q)", tt.key)
			continue
		}
		require.NoError(t, err, "ParseMonthKey(%q)", tt.key)
		assert.Equal(t, tt.year, year)
		assert.Equal(t, tt.month, month)
	}
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m < 12; m++ {
		y, got, err := ParseMonthKey(FormatMonthKey(2030, m))
		require.NoError(t, err)
		assert.Equal(t, 2030, y)
		assert.Equal(t, m, got)
	}
}

func TestMonthsBetween(t *testing.T) {
	a := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, MonthsBetween(a, b))
	assert.Equal(t, -3, MonthsBetween(b, a))
	assert.Equal(t, 0, MonthsBetween(a, a))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(0))
	assert.Equal(t, "Dec", MonthName(11))
	assert.Equal(t, "???", MonthName(12))
}
