// Package anniversary derives age and next-occurrence fields from a stored
// date of birth. Every function is pure: the reference time is always passed in.
package anniversary

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date wire format accepted and produced by the API.
	DateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// milestones are the ages celebrated regardless of the multiple-of-ten rule.
var milestones = map[int]struct{}{
	16: {}, 18: {}, 21: {}, 25: {}, 30: {}, 40: {}, 50: {}, 65: {}, 75: {}, 80: {}, 90: {}, 100: {},
}

// InvalidDateError reports a birth date that is missing or cannot be parsed.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid date %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid date %q", e.Value)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// Fields are the derived, never-persisted values attached to a birthday.
type Fields struct {
	Age            int       `json:"age"`
	NextOccurrence time.Time `json:"nextBirthday"`
	DaysUntil      int       `json:"daysUntilBirthday"`
	IsToday        bool      `json:"isToday"`
	NextAge        int       `json:"nextAge"`
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s, Err: err}
	}
	return DateOf(t), nil
}

// DateOf drops the time of day, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// On returns the anniversary of birth in the given year.
// A Feb 29 birth date falls on Feb 28 in non-leap years.
func On(birth time.Time, year int) time.Time {
	_, m, d := birth.Date()
	if m == time.February && d == 29 && !isLeap(year) {
		d = 28
	}
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

// Age returns whole years elapsed from birth to now.
func Age(birth, now time.Time) int {
	today := DateOf(now)
	age := today.Year() - birth.Year()
	if today.Before(On(birth, today.Year())) {
		age--
	}
	return age
}

// NextOccurrence returns the nearest anniversary on or after now's calendar date.
func NextOccurrence(birth, now time.Time) time.Time {
	today := DateOf(now)
	next := On(birth, today.Year())
	if next.Before(today) {
		next = On(birth, today.Year()+1)
	}
	return next
}

// DaysUntil returns the number of days from now's calendar date to the next occurrence.
// It is 0 on the anniversary itself.
func DaysUntil(birth, now time.Time) int {
	return int(NextOccurrence(birth, now).Sub(DateOf(now)) / day)
}

// Compute returns all derived fields for birth relative to now.
func Compute(birth, now time.Time) (Fields, error) {
	if birth.IsZero() {
		return Fields{}, &InvalidDateError{Value: birth.String()}
	}
	next := NextOccurrence(birth, now)
	days := int(next.Sub(DateOf(now)) / day)
	return Fields{
		Age:            Age(birth, now),
		NextOccurrence: next,
		DaysUntil:      days,
		IsToday:        days == 0,
		NextAge:        next.Year() - birth.Year(),
	}, nil
}

// IsMilestone reports whether turning age is considered noteworthy.
func IsMilestone(age int) bool {
	if age <= 0 {
		return false
	}
	if age%10 == 0 {
		return true
	}
	_, ok := milestones[age]
	return ok
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
