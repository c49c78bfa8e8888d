package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"birthdayReminderTracker/models"
)

type BirthdayRepository struct {
	db *gorm.DB
}

func NewBirthdayRepository(db *gorm.DB) *BirthdayRepository {
	return &BirthdayRepository{db: db}
}

// Create inserts b. An active birthday with the same owner, name (ignoring case)
// and date of birth yields ErrDuplicate; the unique index decides, so two
// concurrent creates cannot both succeed.
func (r *BirthdayRepository) Create(ctx context.Context, b *models.Birthday) (*models.Birthday, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if b.GiftIdeas == nil {
		b.GiftIdeas = datatypes.JSONSlice[string]{}
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

// GetActive returns the owner's active birthday with the given id, or nil.
func (r *BirthdayRepository) GetActive(ctx context.Context, userID, id int64) (*models.Birthday, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b models.Birthday
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// GetByID returns the birthday regardless of owner or active state.
func (r *BirthdayRepository) GetByID(ctx context.Context, id int64) (*models.Birthday, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b models.Birthday
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Update writes the mutable columns of an active birthday owned by b.UserID.
func (r *BirthdayRepository) Update(ctx context.Context, b *models.Birthday) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if b.GiftIdeas == nil {
		b.GiftIdeas = datatypes.JSONSlice[string]{}
	}
	b.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Birthday{}).
		Where("id = ? AND user_id = ? AND is_active = ?", b.ID, b.UserID, true).
		Updates(map[string]any{
			"name":                 b.Name,
			"date_of_birth":        b.DateOfBirth,
			"relationship":         b.Relationship,
			"email":                b.Email,
			"phone":                b.Phone,
			"notes":                b.Notes,
			"gift_ideas":           b.GiftIdeas,
			"reminder_enabled":     b.ReminderSettings.Enabled,
			"reminder_days_before": b.ReminderSettings.DaysBefore,
			"updated_at":           b.UpdatedAt,
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

// SoftDelete marks the owner's active birthday inactive. Deleting an already
// inactive or foreign birthday yields ErrNotFound.
func (r *BirthdayRepository) SoftDelete(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Birthday{}).
		Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns every active birthday of the owner ordered by id.
func (r *BirthdayRepository) ListActive(ctx context.Context, userID int64) ([]models.Birthday, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.Birthday{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of active birthdays across all users.
func (r *BirthdayRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Birthday{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
