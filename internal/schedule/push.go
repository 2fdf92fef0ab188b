package schedule

import (
	"sort"
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
)

// Shift is one post's move in a cascade push.
type Shift struct {
	Post  *domain.Post
	NewAt time.Time
}

// PlanPush computes the shift set that frees targetDay: the blocking posts on
// targetDay plus the contiguous daily chain that follows them, each moved
// forward by exactly one calendar day in tz. The walk stops at the first gap
// day; posts after the gap are untouched. Returns an empty plan when nothing
// is scheduled on the target day.
//
// The day increment is a calendar-day increment in tz, not a 24-hour
// duration, so wall-clock times survive DST transitions.
func PlanPush(window []*domain.Post, targetDay time.Time, tz string) ([]Shift, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	anchor := time.Date(targetDay.Year(), targetDay.Month(), targetDay.Day(), 0, 0, 0, 0, loc)

	var onward []*domain.Post
	for _, p := range window {
		if !p.IsScheduled() {
			continue
		}
		if !dayOf(p.ScheduledAt.In(loc), loc).Before(anchor) {
			onward = append(onward, p)
		}
	}
	sort.Slice(onward, func(i, j int) bool {
		return onward[i].ScheduledAt.Before(*onward[j].ScheduledAt)
	})

	var shifts []Shift
	chainDay := anchor
	for _, p := range onward {
		day := dayOf(p.ScheduledAt.In(loc), loc)
		switch {
		case day.Equal(chainDay):
			// Same day as the chain head: part of the block being freed.
		case day.Equal(chainDay.AddDate(0, 0, 1)):
			chainDay = day
		default:
			// First gap ends the chain.
			return shifts, nil
		}
		if len(shifts) == 0 && !day.Equal(anchor) {
			// Nothing on the target day itself: the day is free, no push needed.
			return nil, nil
		}
		shifts = append(shifts, Shift{Post: p, NewAt: nextDay(*p.ScheduledAt, loc)})
	}

	return shifts, nil
}

// nextDay returns the instant one calendar day after at, keeping the same
// wall-clock time in loc.
func nextDay(at time.Time, loc *time.Location) time.Time {
	lt := at.In(loc)
	return time.Date(
		lt.Year(), lt.Month(), lt.Day()+1,
		lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(),
		loc,
	).UTC()
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
