package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/cashflow/internal/model"
)

// dateSeparators are tried in order; day-month-year order is fixed.
var dateSeparators = []string{"/", "-", "."}

// ParseDate parses DD/MM/YYYY, DD-MM-YYYY or DD.MM.YYYY into midnight UTC.
// Out-of-range days and months roll over the way calendar arithmetic does.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, sep := range dateSeparators {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		if len(parts) < 3 {
			return time.Time{}, false
		}
		day, ok1 := leadingInt(parts[0])
		month, ok2 := leadingInt(parts[1])
		year, ok3 := leadingInt(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return time.Time{}, false
		}
		if year >= 0 && year < 100 {
			year += 1900
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ParseDateOrNow falls back to the current day when raw cannot be parsed.
// The second result reports whether the fallback was used.
func ParseDateOrNow(raw string, now func() time.Time) (time.Time, bool) {
	if d, ok := ParseDate(raw); ok {
		return d, false
	}
	return Today(now), true
}

// Today truncates now() to midnight UTC.
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// leadingInt parses the leading digits of s, ignoring whatever follows.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeYears shifts placeholder future years back. If the latest year in
// txs exceeds currentYear+1, every date later than currentYear moves back by
// the excess. Returns the number of years shifted (0 when untouched).
func NormalizeYears(txs []model.Transaction, currentYear int) int {
	if len(txs) == 0 {
		return 0
	}
	maxYear := txs[0].TransactionDate.Year()
	for _, tx := range txs[1:] {
		if y := tx.TransactionDate.Year(); y > maxYear {
			maxYear = y
		}
	}
	if maxYear <= currentYear+1 {
		return 0
	}

	diff := maxYear - currentYear
	for i := range txs {
		txs[i].TransactionDate = shiftYear(txs[i].TransactionDate, currentYear, diff)
		txs[i].ValueDate = shiftYear(txs[i].ValueDate, currentYear, diff)
	}
	return diff
}

func shiftYear(t time.Time, currentYear, diff int) time.Time {
	if t.Year() <= currentYear {
		return t
	}
	return time.Date(t.Year()-diff, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
