package localday

import (
	"fmt"
	"time"
)

// JST is the fixed household timezone. The provider stamps readings in UTC;
// every calendar decision in this program happens in JST.
var JST = time.FixedZone("JST", 9*60*60)

// DateLayout is the wire format for calendar dates on the CLI and in storage.
const DateLayout = "2006-01-02"

// Date returns local midnight for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, JST)
}

// Parse interprets a YYYY-MM-DD string as a JST calendar date.
func Parse(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, JST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Truncate drops the time-of-day portion, keeping the JST calendar date.
func Truncate(t time.Time) time.Time {
	local := t.In(JST)
	return Date(local.Year(), local.Month(), local.Day())
}

// Yesterday returns the previous JST calendar day relative to now.
func Yesterday(now time.Time) time.Time {
	return Truncate(now).AddDate(0, 0, -1)
}

// Window resolves the inclusive UTC query range covering one JST day:
// local midnight through 23:59:59. The provider's range inclusivity is not
// guaranteed, so callers must still re-validate each reading with SameDay.
func Window(day time.Time) (startUTC, endUTC time.Time) {
	start := Truncate(day)
	end := start.Add(24*time.Hour - time.Second)
	return start.UTC(), end.UTC()
}

// SameDay reports whether the UTC-stamped instant falls on the given JST
// calendar day. This is the authoritative membership test for readings.
func SameDay(ts time.Time, day time.Time) bool {
	local := ts.In(JST)
	target := day.In(JST)
	return local.Year() == target.Year() &&
		local.Month() == target.Month() &&
		local.Day() == target.Day()
}
