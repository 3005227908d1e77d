package alerts

import (
	"strconv"
	"strings"
	"time"
)

// isoLayout takes both padded and unpadded month and day (1990-3-15).
const isoLayout = "2006-1-2"

// ParseDate reads the two date spellings found in roster documents. A string
// containing "-" is ISO (YYYY-MM-DD, optionally followed by a time part);
// anything else is DD/MM/YYYY. The result is midnight UTC of that calendar day.
// Empty, malformed or impossible dates (31/02/2024) return ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "-") {
		if i := strings.IndexAny(s, "T "); i > 0 {
			s = s[:i]
		}
		t, err := time.Parse(isoLayout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// CalendarDay truncates now to its calendar date in now's own location,
// expressed as midnight UTC so it compares directly with ParseDate results.
func CalendarDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil is the number of calendar days from now's date to target.
// Negative when target is in the past. Time of day never participates.
func DaysUntil(target, now time.Time) int {
	return int(CalendarDay(target).Sub(CalendarDay(now)).Hours() / 24)
}
