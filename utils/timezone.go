package utils

import (
	"fmt"
	"time"
)

// Time/zone helpers for the scheduling core. All conversions take an explicit
// IANA zone; nothing here consults the process-local zone.

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// LoadZone resolves an IANA zone name. Unknown names are a ValidationError;
// slot computation must never silently fall back to UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, Validationf("timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, Validationf("unknown timezone %q", name)
	}
	return loc, nil
}

// ParseDateKey validates a calendar date in YYYY-MM-DD form.
func ParseDateKey(date string) (year int, month time.Month, day int, err error) {
	t, perr := time.Parse(DateLayout, date)
	if perr != nil {
		return 0, 0, 0, Validationf("invalid date %q, want YYYY-MM-DD", date)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// ParseMinuteOfDay converts an HH:MM string into minutes from midnight.
func ParseMinuteOfDay(tod string) (int, error) {
	t, err := time.Parse(TimeLayout, tod)
	if err != nil {
		return 0, Validationf("invalid time of day %q, want HH:MM", tod)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ResolveCivilTime converts a calendar date plus minutes-from-midnight in the
// given zone into an absolute instant. time.Date performs the offset
// correction for DST transitions: times inside a spring-forward gap are
// shifted past the gap, and ambiguous fall-back times resolve to the first
// occurrence. The result is stable under re-resolution.
func ResolveCivilTime(date string, minuteOfDay int, loc *time.Location) (time.Time, error) {
	y, m, d, err := ParseDateKey(date)
	if err != nil {
		return time.Time{}, err
	}
	if minuteOfDay < 0 || minuteOfDay >= 24*60 {
		return time.Time{}, Validationf("minute of day %d out of range", minuteOfDay)
	}
	return time.Date(y, m, d, minuteOfDay/60, minuteOfDay%60, 0, 0, loc), nil
}

// DateKeyInZone returns the civil date of an instant in the given zone.
func DateKeyInZone(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// WeekdayInZone returns the weekday index (0=Sunday) of an instant in the
// given zone.
func WeekdayInZone(t time.Time, loc *time.Location) int {
	return int(t.In(loc).Weekday())
}

// FormatInZone renders an instant for display. Display formatting is the one
// place an unknown zone degrades to UTC instead of failing.
func FormatInZone(t time.Time, zoneName string) string {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(fmt.Sprintf("%s %s MST", DateLayout, TimeLayout))
}
