package schedule

import (
	"fmt"
	"time"
)

// Selection is the transient state of one scheduling edit: a naive calendar
// day plus a zero-padded wall-clock time, interpreted in an IANA timezone.
// Only the year/month/day components of Date are meaningful.
type Selection struct {
	Date     time.Time
	Hour     string
	Minute   string
	Timezone string
}

// NewSelection builds a Selection for the given day and "HH:MM" wall-clock
// time in tz.
func NewSelection(day time.Time, hhmm string, tz string) (Selection, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return Selection{}, fmt.Errorf("invalid posting time %q: %w", hhmm, err)
	}
	return Selection{
		Date:     day,
		Hour:     fmt.Sprintf("%02d", t.Hour()),
		Minute:   fmt.Sprintf("%02d", t.Minute()),
		Timezone: tz,
	}, nil
}

// SelectionFromInstant derives the Selection a stored instant represents in tz.
func SelectionFromInstant(at time.Time, tz string) (Selection, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Selection{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	lt := at.In(loc)
	return Selection{
		Date:     lt,
		Hour:     fmt.Sprintf("%02d", lt.Hour()),
		Minute:   fmt.Sprintf("%02d", lt.Minute()),
		Timezone: tz,
	}, nil
}

// Instant combines the selection's calendar day and wall-clock time in its
// timezone and returns the absolute UTC instant. Pure: identical selections
// always yield identical instants.
func Instant(sel Selection) (time.Time, error) {
	loc, err := time.LoadLocation(sel.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", sel.Timezone, err)
	}

	t, err := time.Parse("15:04", sel.Hour+":"+sel.Minute)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %s:%s: %w", sel.Hour, sel.Minute, err)
	}

	return time.Date(
		sel.Date.Year(), sel.Date.Month(), sel.Date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	).UTC(), nil
}

// ValidForNow checks the today-boundary rule: when the selected day is today
// in the selection's timezone, the selected time must be at least minLead
// ahead of now. Any other day is always valid.
func ValidForNow(sel Selection, now time.Time, minLead time.Duration) (bool, error) {
	loc, err := time.LoadLocation(sel.Timezone)
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", sel.Timezone, err)
	}

	localNow := now.In(loc)
	if !sameYMD(sel.Date, localNow) {
		return true, nil
	}

	at, err := Instant(sel)
	if err != nil {
		return false, err
	}
	return at.Sub(now) >= minLead, nil
}

func sameYMD(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
