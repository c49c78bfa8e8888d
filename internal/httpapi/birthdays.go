package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/insights"
	"birthdayReminderTracker/models"
	"birthdayReminderTracker/repository"
)

type reminderPayload struct {
	Enabled    *bool `json:"enabled"`
	DaysBefore *int  `json:"daysBefore"`
}

// birthdayPayload is the body of create and update requests.
// Absent fields are left untouched on update.
type birthdayPayload struct {
	Name             *string          `json:"name"`
	DateOfBirth      *string          `json:"dateOfBirth"`
	Relationship     *string          `json:"relationship"`
	Email            *string          `json:"email"`
	Phone            *string          `json:"phone"`
	Notes            *string          `json:"notes"`
	GiftIdeas        []string         `json:"giftIdeas"`
	ReminderSettings *reminderPayload `json:"reminderSettings"`
}

// apply validates p and copies it onto b, collecting every offending field.
func (p *birthdayPayload) apply(b *models.Birthday, creating bool, today time.Time) error {
	f := apperr.Fields{}

	if p.Name != nil || creating {
		name := deref(p.Name)
		checkText(f, "name", &name, true, models.MaxNameLength)
		b.Name = name
	}
	if p.DateOfBirth != nil || creating {
		raw := strings.TrimSpace(deref(p.DateOfBirth))
		if raw == "" {
			f.Add("dateOfBirth", "is required")
		} else if d, ok := checkPastDate(f, "dateOfBirth", raw, today); ok {
			b.DateOfBirth = d
		}
	}
	if p.Relationship != nil {
		rel := models.Relationship(strings.ToLower(strings.TrimSpace(*p.Relationship)))
		switch {
		case rel == "" && creating:
			b.Relationship = models.DefaultRelationship
		case rel == "":
		case rel.Valid():
			b.Relationship = rel
		default:
			f.Add("relationship", "must be one of family, friend, colleague, acquaintance, other")
		}
	}
	if p.Email != nil {
		email := *p.Email
		checkEmail(f, "email", &email, false)
		b.Email = email
	}
	if p.Phone != nil {
		b.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Notes != nil {
		notes := *p.Notes
		checkText(f, "notes", &notes, false, models.MaxNotesLength)
		b.Notes = notes
	}
	if p.GiftIdeas != nil {
		ideas := make(datatypes.JSONSlice[string], 0, len(p.GiftIdeas))
		for _, idea := range p.GiftIdeas {
			idea = strings.TrimSpace(idea)
			if idea == "" {
				continue
			}
			if utf8.RuneCountInString(idea) > models.MaxGiftIdeaLength {
				f.Add("giftIdeas", fmt.Sprintf("each gift idea cannot be more than %d characters", models.MaxGiftIdeaLength))
			}
			ideas = append(ideas, idea)
		}
		b.GiftIdeas = ideas
	}
	if rs := p.ReminderSettings; rs != nil {
		if rs.Enabled != nil {
			b.ReminderSettings.Enabled = *rs.Enabled
		}
		if rs.DaysBefore != nil {
			checkRange(f, "reminderSettings.daysBefore", *rs.DaysBefore, models.MinReminderDays, models.MaxReminderDays)
			b.ReminderSettings.DaysBefore = *rs.DaysBefore
		}
	}
	return f.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func birthdayStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Birthday not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("A birthday with this name and date already exists")
	}
	return apperr.Internal(err)
}

func (s *Server) annotate(b models.Birthday) (insights.Entry, error) {
	e, err := insights.Annotate(b, s.today())
	if err != nil {
		return insights.Entry{}, apperr.Internal(fmt.Errorf("birthday %d: %w", b.ID, err))
	}
	return e, nil
}

func (s *Server) listBirthdays(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	f := apperr.Fields{}
	sortBy, ok := repository.ParseSortKey(c.Query("sortBy"))
	if !ok {
		f.Add("sortBy", "must be one of nextBirthday, name, dateOfBirth, relationship")
	}
	var rel models.Relationship
	if raw := strings.ToLower(strings.TrimSpace(c.Query("relationship"))); raw != "" && raw != "all" {
		rel = models.Relationship(raw)
		if !rel.Valid() {
			f.Add("relationship", "must be all or one of family, friend, colleague, acquaintance, other")
		}
	}
	if err := f.Err(); err != nil {
		apperr.Abort(c, err)
		return
	}
	page, limit := parsePage(c.Query("page"), c.Query("limit"))
	today := s.today()

	rows, total, err := s.birthdays.List(c.Request.Context(), repository.ListParams{
		UserID:       p.UserID,
		Search:       c.Query("search"),
		Relationship: rel,
		SortBy:       sortBy,
		Page:         page,
		Limit:        limit,
		Today:        today,
	})
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	entries, err := insights.AnnotateAll(rows, today)
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"birthdays":  entries,
		"pagination": newPagination(page, limit, total),
	})
}

func (s *Server) createBirthday(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	var body birthdayPayload
	if err := bindJSON(c, &body); err != nil {
		apperr.Abort(c, err)
		return
	}
	b := models.NewBirthday(p.UserID, "", time.Time{})
	if err := body.apply(b, true, s.today()); err != nil {
		apperr.Abort(c, err)
		return
	}
	created, err := s.birthdays.Create(c.Request.Context(), b)
	if err != nil {
		apperr.Abort(c, birthdayStoreErr(err))
		return
	}
	e, err := s.annotate(*created)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Birthday created successfully", "birthday": e})
}

// loadBirthday resolves the :id parameter to an active birthday of the caller.
func (s *Server) loadBirthday(c *gin.Context) (*models.Birthday, error) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		return nil, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	b, err := s.birthdays.GetActive(c.Request.Context(), p.UserID, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if b == nil {
		return nil, apperr.NotFound("Birthday not found")
	}
	return b, nil
}

func (s *Server) getBirthday(c *gin.Context) {
	b, err := s.loadBirthday(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	e, err := s.annotate(*b)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"birthday": e})
}

func (s *Server) updateBirthday(c *gin.Context) {
	b, err := s.loadBirthday(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	var body birthdayPayload
	if err := bindJSON(c, &body); err != nil {
		apperr.Abort(c, err)
		return
	}
	if err := body.apply(b, false, s.today()); err != nil {
		apperr.Abort(c, err)
		return
	}
	if err := s.birthdays.Update(c.Request.Context(), b); err != nil {
		apperr.Abort(c, birthdayStoreErr(err))
		return
	}
	e, err := s.annotate(*b)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Birthday updated successfully", "birthday": e})
}

func (s *Server) deleteBirthday(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	if err := s.birthdays.SoftDelete(c.Request.Context(), p.UserID, id); err != nil {
		apperr.Abort(c, birthdayStoreErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Birthday deleted successfully"})
}
