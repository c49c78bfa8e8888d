package anniversary

import (
	"errors"
	"testing"
	"time"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestCompute_Examples(t *testing.T) {
	birth := date(t, "1990-03-15")
	cases := []struct {
		now     string
		age     int
		next    string
		days    int
		isToday bool
		nextAge int
	}{
		{"2024-03-10", 33, "2024-03-15", 5, false, 34},
		{"2024-03-15", 34, "2024-03-15", 0, true, 34},
		{"2024-03-16", 34, "2025-03-15", 364, false, 35},
		{"2024-12-31", 34, "2025-03-15", 74, false, 35},
	}
	for _, tc := range cases {
		f, err := Compute(birth, date(t, tc.now))
		if err != nil {
			t.Fatalf("Compute(%s): %v", tc.now, err)
		}
		if f.Age != tc.age || f.DaysUntil != tc.days || f.IsToday != tc.isToday || f.NextAge != tc.nextAge {
			t.Fatalf("now=%s got %+v", tc.now, f)
		}
		if got := f.NextOccurrence.Format(DateLayout); got != tc.next {
			t.Fatalf("now=%s next=%s want %s", tc.now, got, tc.next)
		}
	}
}

func TestCompute_IgnoresTimeOfDay(t *testing.T) {
	birth := date(t, "1990-03-15")
	late := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	f, err := Compute(birth, late)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if f.DaysUntil != 0 || !f.IsToday || f.Age != 34 {
		t.Fatalf("late on the birthday should still be today: %+v", f)
	}

	// The calendar date is taken in the reference time's own location.
	tokyo := time.FixedZone("JST", 9*3600)
	early := time.Date(2024, 3, 15, 1, 0, 0, 0, tokyo) // still Mar 14 in UTC
	if d := DaysUntil(birth, early); d != 0 {
		t.Fatalf("DaysUntil in JST = %d, want 0", d)
	}
}

func TestCompute_ZeroBirthIsInvalid(t *testing.T) {
	_, err := Compute(time.Time{}, time.Now())
	var ide *InvalidDateError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InvalidDateError, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Fatalf("expected error for impossible date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
	var ide *InvalidDateError
	if _, err := ParseDate("yesterday"); !errors.As(err, &ide) {
		t.Fatalf("expected InvalidDateError, got %v", err)
	}
	got, err := ParseDate("1990-03-15T22:30:00-05:00")
	if err != nil {
		t.Fatalf("ParseDate rfc3339: %v", err)
	}
	if got.Format(DateLayout) != "1990-03-15" || got.Location() != time.UTC || got.Hour() != 0 {
		t.Fatalf("unexpected parsed date: %v", got)
	}
}

func TestFeb29_ClampsToFeb28InCommonYears(t *testing.T) {
	birth := date(t, "2000-02-29")

	f, _ := Compute(birth, date(t, "2023-02-27"))
	if f.NextOccurrence.Format(DateLayout) != "2023-02-28" || f.DaysUntil != 1 || f.Age != 22 {
		t.Fatalf("common year, day before: %+v", f)
	}

	f, _ = Compute(birth, date(t, "2023-02-28"))
	if !f.IsToday || f.Age != 23 {
		t.Fatalf("common year, clamped anniversary: %+v", f)
	}

	f, _ = Compute(birth, date(t, "2024-02-28"))
	if f.NextOccurrence.Format(DateLayout) != "2024-02-29" || f.DaysUntil != 1 || f.Age != 23 {
		t.Fatalf("leap year, day before: %+v", f)
	}

	f, _ = Compute(birth, date(t, "2024-02-29"))
	if !f.IsToday || f.Age != 24 {
		t.Fatalf("leap year anniversary: %+v", f)
	}

	f, _ = Compute(birth, date(t, "2024-03-01"))
	if f.NextOccurrence.Format(DateLayout) != "2025-02-28" {
		t.Fatalf("after leap day: %+v", f)
	}
}

func TestProperties(t *testing.T) {
	births := []string{"1990-03-15", "2000-02-29", "1985-12-31", "1970-01-01", "2010-07-04"}
	start := date(t, "2023-01-01")
	for _, b := range births {
		birth := date(t, b)
		prevAge := Age(birth, start)
		for i := 0; i < 3*366; i++ {
			now := start.AddDate(0, 0, i)
			f, err := Compute(birth, now)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if f.NextOccurrence.Before(now) {
				t.Fatalf("birth=%s now=%s next %s is before now", b, now, f.NextOccurrence)
			}
			if f.NextOccurrence.Sub(now) >= 366*day {
				t.Fatalf("birth=%s now=%s next %s too far", b, now, f.NextOccurrence)
			}
			if (f.DaysUntil == 0) != f.NextOccurrence.Equal(now) {
				t.Fatalf("birth=%s now=%s days=%d next=%s", b, now, f.DaysUntil, f.NextOccurrence)
			}
			if f.Age < prevAge || f.Age > prevAge+1 {
				t.Fatalf("birth=%s now=%s age jumped %d -> %d", b, now, prevAge, f.Age)
			}
			if f.Age == prevAge+1 && !f.IsToday {
				t.Fatalf("birth=%s now=%s age increased away from the anniversary", b, now)
			}
			again, _ := Compute(birth, now)
			if again != f {
				t.Fatalf("Compute is not deterministic: %+v vs %+v", f, again)
			}
			prevAge = f.Age
		}
	}
}

func TestIsMilestone(t *testing.T) {
	for _, age := range []int{10, 16, 18, 20, 21, 25, 30, 65, 75, 100, 110} {
		if !IsMilestone(age) {
			t.Fatalf("IsMilestone(%d) = false", age)
		}
	}
	for _, age := range []int{0, 1, 17, 22, 33, 66, 99} {
		if IsMilestone(age) {
			t.Fatalf("IsMilestone(%d) = true", age)
		}
	}
}
