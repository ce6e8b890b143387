// Package period formats and parses the YYYY-MM keys used for actual entries.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatMonthKey returns a key like "2025-06" for year 2025, month 5 (0-based).
func FormatMonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month+1)
}

// ParseMonthKey parses "2025-06" (or "2025-6") into year and 0-based month.
func ParseMonthKey(key string) (year, month int, err error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month key format: %q", key)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in month key %q: %w", key, err)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in month key %q: %w", key, err)
	}
	if m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("month %d out of range in %q", m, key)
	}

	return year, m - 1, nil
}

// MonthsBetween counts calendar months from a to b, ignoring days.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// MonthName returns the short English name for a 0-based month.
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return "???"
	}
	return time.Month(month + 1).String()[:3]
}
