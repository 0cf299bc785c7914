package domain

import "time"

// DateOf truncates t to its calendar date in loc, expressed as UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// IsUpcoming reports a scheduled meeting dated today or later.
func IsUpcoming(m Meeting, today time.Time) bool {
	return m.Status == StatusScheduled && !m.Date.Before(today)
}

// IsPast reports a completed meeting, or a scheduled one whose date has
// passed. Stored status is not changed by this view.
func IsPast(m Meeting, today time.Time) bool {
	if m.Status == StatusCompleted {
		return true
	}
	return m.Status == StatusScheduled && m.Date.Before(today)
}

// Partition splits meetings into upcoming and past views relative to today
// (a UTC midnight date). Cancelled and pending_approval meetings appear in
// neither.
func Partition(meetings []Meeting, today time.Time) (upcoming, past []Meeting) {
	upcoming = []Meeting{}
	past = []Meeting{}
	for _, m := range meetings {
		switch {
		case IsUpcoming(m, today):
			upcoming = append(upcoming, m)
		case IsPast(m, today):
			past = append(past, m)
		}
	}
	return upcoming, past
}

// CanComplete reports whether an operator may mark m completed on today: the
// date must have passed, or be today.
func CanComplete(m Meeting, today time.Time) bool {
	return m.Status == StatusScheduled && !m.Date.After(today)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date as
// UTC midnight.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, value); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return DateOf(t, loc), nil
}
