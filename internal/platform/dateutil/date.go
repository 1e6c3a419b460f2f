package dateutil

import (
	"strings"
	"time"
)

// Layout is the calendar-day key format used across the snapshot store.
const Layout = "2006-01-02"

func Format(t time.Time) string {
	return t.Format(Layout)
}

func Parse(raw string) (time.Time, error) {
	return time.Parse(Layout, strings.TrimSpace(raw))
}

// Sanitize returns raw in canonical form when it is a valid calendar date,
// and the formatted now otherwise. An invalid date string must never reach
// a storage key.
func Sanitize(raw string, now time.Time) string {
	parsed, err := Parse(raw)
	if err != nil {
		return Format(now)
	}
	return Format(parsed)
}

func PrevDay(date string) string {
	return shiftDay(date, -1)
}

func NextDay(date string) string {
	return shiftDay(date, 1)
}

func shiftDay(date string, days int) string {
	parsed, err := Parse(date)
	if err != nil {
		return Format(time.Now().AddDate(0, 0, days))
	}
	return Format(parsed.AddDate(0, 0, days))
}
