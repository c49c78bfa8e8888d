package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"birthdayReminderTracker/models"
)

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortNextBirthday SortKey = "nextBirthday"
	SortName         SortKey = "name"
	SortDateOfBirth  SortKey = "dateOfBirth"
	SortRelationship SortKey = "relationship"
)

// ParseSortKey maps a query value onto a SortKey. Empty selects SortNextBirthday.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortNextBirthday, true
	case SortNextBirthday, SortName, SortDateOfBirth, SortRelationship:
		return k, true
	}
	return "", false
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// ListParams represents filters, ordering and pagination for List.
type ListParams struct {
	UserID       int64
	Search       string              // case-insensitive substring of name
	Relationship models.Relationship // empty means any
	SortBy       SortKey
	Page         int       // 1-based
	Limit        int       // page size, capped at MaxPageSize
	Today        time.Time // reference date for SortNextBirthday, in the caller's zone
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = SortNextBirthday
	}
	if p.Today.IsZero() {
		p.Today = time.Now()
	}
}

func (p ListParams) filters(db *gorm.DB) *gorm.DB {
	db = db.Where("user_id = ? AND is_active = ?", p.UserID, true)
	if s := strings.TrimSpace(p.Search); s != "" {
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if p.Relationship != "" {
		db = db.Where("relationship = ?", p.Relationship)
	}
	return db
}

func (p ListParams) order(db *gorm.DB) *gorm.DB {
	switch p.SortBy {
	case SortName:
		return db.Order("LOWER(name), id")
	case SortDateOfBirth:
		return db.Order("date_of_birth, LOWER(name), id")
	case SortRelationship:
		return db.Order("relationship, LOWER(name), id")
	}
	// Anniversaries still ahead this year (today included) come first,
	// then the ones that wrap into next year, each by month and day.
	return db.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                "CASE WHEN strftime('%m-%d', date_of_birth) >= ? THEN 0 ELSE 1 END, strftime('%m-%d', date_of_birth), LOWER(name), id",
		Vars:               []any{p.Today.Format("01-02")},
		WithoutParentheses: true,
	}})
}

// List returns one page of the owner's active birthdays and the total number
// of rows matching the filters.
func (r *BirthdayRepository) List(ctx context.Context, p ListParams) ([]models.Birthday, int64, error) {
	p.normalize()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Birthday{}).Scopes(p.filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []models.Birthday{}
	err := r.db.WithContext(ctx).
		Scopes(p.filters, p.order).
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
