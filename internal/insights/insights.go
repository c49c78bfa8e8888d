// Package insights aggregates birthdays and their derived fields into the
// dashboard, analytics and reminder views.
package insights

import (
	"math"
	"sort"
	"strings"
	"time"

	"birthdayReminderTracker/internal/anniversary"
	"birthdayReminderTracker/models"
)

const (
	UpcomingLimit  = 5
	RecentLimit    = 5
	MilestoneLimit = 10

	weekDays  = 7
	monthDays = 30
)

// Entry is a birthday together with its derived fields, as returned by the API.
type Entry struct {
	models.Birthday
	anniversary.Fields
}

// Annotate attaches derived fields computed against now.
func Annotate(b models.Birthday, now time.Time) (Entry, error) {
	f, err := anniversary.Compute(b.DateOfBirth, now)
	if err != nil {
		return Entry{}, err
	}
	if b.GiftIdeas == nil {
		b.GiftIdeas = []string{}
	}
	return Entry{Birthday: b, Fields: f}, nil
}

// AnnotateAll is Annotate over a slice, preserving order.
func AnnotateAll(bs []models.Birthday, now time.Time) ([]Entry, error) {
	out := make([]Entry, 0, len(bs))
	for _, b := range bs {
		e, err := Annotate(b, now)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Stats are the headline counters of the dashboard.
type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	ThisWeek  int `json:"thisWeek"`
	ThisMonth int `json:"thisMonth"`
}

type DashboardView struct {
	Stats             Stats   `json:"stats"`
	TodaysBirthdays   []Entry `json:"todaysBirthdays"`
	UpcomingBirthdays []Entry `json:"upcomingBirthdays"`
	RecentlyAdded     []Entry `json:"recentlyAdded"`
}

// Dashboard counts birthdays falling today, within a week and within 30 days,
// and lists today's, the next upcoming (excluding today) and the newest entries.
func Dashboard(entries []Entry) DashboardView {
	v := DashboardView{
		Stats:             Stats{Total: len(entries)},
		TodaysBirthdays:   []Entry{},
		UpcomingBirthdays: []Entry{},
	}
	for _, e := range entries {
		switch {
		case e.DaysUntil == 0:
			v.Stats.Today++
			v.TodaysBirthdays = append(v.TodaysBirthdays, e)
		case e.DaysUntil >= 1:
			v.UpcomingBirthdays = append(v.UpcomingBirthdays, e)
		}
		if e.DaysUntil <= weekDays {
			v.Stats.ThisWeek++
		}
		if e.DaysUntil <= monthDays {
			v.Stats.ThisMonth++
		}
	}
	sortByDaysUntil(v.TodaysBirthdays)
	sortByDaysUntil(v.UpcomingBirthdays)
	v.UpcomingBirthdays = head(v.UpcomingBirthdays, UpcomingLimit)

	recent := append([]Entry(nil), entries...)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].ID > recent[j].ID
	})
	v.RecentlyAdded = head(recent, RecentLimit)
	return v
}

// Count is one bucket of a distribution.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type AnalyticsView struct {
	TotalBirthdays        int                         `json:"totalBirthdays"`
	RelationshipBreakdown map[models.Relationship]int `json:"relationshipBreakdown"`
	MonthlyDistribution   []Count                     `json:"monthlyDistribution"`
	AgeGroups             []Count                     `json:"ageGroups"`
	UpcomingMilestones    []Entry                     `json:"upcomingMilestones"`
	AverageAge            int                         `json:"averageAge"`
	OldestPerson          *Entry                      `json:"oldestPerson"`
	YoungestPerson        *Entry                      `json:"youngestPerson"`
}

// Age group labels in display order.
var AgeGroups = []string{"Under 18", "18-29", "30-49", "50-69", "70+"}

func ageGroup(age int) int {
	switch {
	case age < 18:
		return 0
	case age < 30:
		return 1
	case age < 50:
		return 2
	case age < 70:
		return 3
	}
	return 4
}

// Analytics summarises entries by relationship, birth month and age, and
// picks out upcoming milestone birthdays.
func Analytics(entries []Entry) AnalyticsView {
	v := AnalyticsView{
		TotalBirthdays:        len(entries),
		RelationshipBreakdown: make(map[models.Relationship]int, len(models.Relationships)),
		MonthlyDistribution:   make([]Count, 12),
		AgeGroups:             make([]Count, len(AgeGroups)),
		UpcomingMilestones:    []Entry{},
	}
	for _, r := range models.Relationships {
		v.RelationshipBreakdown[r] = 0
	}
	for m := time.January; m <= time.December; m++ {
		v.MonthlyDistribution[m-1].Label = m.String()
	}
	for i, g := range AgeGroups {
		v.AgeGroups[i].Label = g
	}

	var ageSum int
	for i := range entries {
		e := entries[i]
		v.RelationshipBreakdown[e.Relationship]++
		v.MonthlyDistribution[e.DateOfBirth.Month()-1].Count++
		v.AgeGroups[ageGroup(e.Age)].Count++
		ageSum += e.Age
		if anniversary.IsMilestone(e.NextAge) {
			v.UpcomingMilestones = append(v.UpcomingMilestones, e)
		}
		if v.OldestPerson == nil || older(e, *v.OldestPerson) {
			v.OldestPerson = &entries[i]
		}
		if v.YoungestPerson == nil || older(*v.YoungestPerson, e) {
			v.YoungestPerson = &entries[i]
		}
	}
	if len(entries) > 0 {
		v.AverageAge = int(math.Round(float64(ageSum) / float64(len(entries))))
	}
	sortByDaysUntil(v.UpcomingMilestones)
	v.UpcomingMilestones = head(v.UpcomingMilestones, MilestoneLimit)
	return v
}

// older reports whether a was born strictly before b, breaking ties by id.
func older(a, b Entry) bool {
	if !a.DateOfBirth.Equal(b.DateOfBirth) {
		return a.DateOfBirth.Before(b.DateOfBirth)
	}
	return a.ID < b.ID
}

// Reminders returns the active entries whose reminder is enabled and whose
// next occurrence is within their configured lead time, soonest first.
func Reminders(entries []Entry) []Entry {
	out := []Entry{}
	for _, e := range entries {
		if !e.IsActive || !e.ReminderSettings.Enabled {
			continue
		}
		lead := e.ReminderSettings.DaysBefore
		if lead <= 0 {
			lead = models.DefaultReminderDays
		}
		if e.DaysUntil <= lead {
			out = append(out, e)
		}
	}
	sortByDaysUntil(out)
	return out
}

func sortByDaysUntil(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].DaysUntil != es[j].DaysUntil {
			return es[i].DaysUntil < es[j].DaysUntil
		}
		ni, nj := strings.ToLower(es[i].Name), strings.ToLower(es[j].Name)
		if ni != nj {
			return ni < nj
		}
		return es[i].ID < es[j].ID
	})
}

func head(es []Entry, n int) []Entry {
	if len(es) > n {
		return es[:n]
	}
	return es
}
