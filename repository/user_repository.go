package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"birthdayReminderTracker/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserSummary is a user row with the number of active birthdays it owns.
type UserSummary struct {
	models.User
	BirthdayCount int64 `gorm:"column:birthday_count" json:"birthdayCount"`
}

// DeleteSummary reports what a user deletion removed.
type DeleteSummary struct {
	UserID           int64 `json:"userId"`
	BirthdaysDeleted int64 `json:"birthdaysDeleted"`
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u with a normalized email and returns it with its generated ID.
// A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks a user up by email, ignoring case and surrounding space.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Update writes the mutable profile columns of u, including the password hash.
// Role is only changed through UpdateRole.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u.Email = NormalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":               u.Name,
		"email":              u.Email,
		"password_hash":      u.PasswordHash,
		"phone":              u.Phone,
		"date_of_birth":      u.DateOfBirth,
		"profile_picture":    u.ProfilePicture,
		"pref_notifications": u.Preferences.Notifications,
		"pref_reminder_days": u.Preferences.ReminderDays,
		"updated_at":         u.UpdatedAt,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRole sets the role for the given email.
// Intended for administrative flows and tests.
func (r *UserRepository) UpdateRole(ctx context.Context, email string, role models.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", NormalizeEmail(email)).
		Updates(map[string]any{"role": role, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns users ordered by id together with their active birthday counts.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := make([]UserSummary, 0, limit)
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM birthdays b WHERE b.user_id = users.id AND b.is_active = 1) AS birthday_count").
		Order("users.id").Limit(limit).Offset(offset).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// Delete removes the user and every birthday it owns, active or not, in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) (*DeleteSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	summary := &DeleteSummary{UserID: id}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", id).Delete(&models.Birthday{})
		if res.Error != nil {
			return fmt.Errorf("delete birthdays: %w", res.Error)
		}
		summary.BirthdaysDeleted = res.RowsAffected

		res = tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
