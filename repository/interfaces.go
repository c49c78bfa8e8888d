package repository

import (
	"context"

	"birthdayReminderTracker/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, email string, role models.Role) error
	List(ctx context.Context, limit, offset int) ([]UserSummary, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) (*DeleteSummary, error)
}

// BirthdayRepositoryI defines operations on Birthday entities.
// Every method except GetByID and Count is scoped to one owner and to active rows.
type BirthdayRepositoryI interface {
	Create(ctx context.Context, b *models.Birthday) (*models.Birthday, error)
	GetActive(ctx context.Context, userID, id int64) (*models.Birthday, error)
	GetByID(ctx context.Context, id int64) (*models.Birthday, error)
	Update(ctx context.Context, b *models.Birthday) error
	SoftDelete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, p ListParams) ([]models.Birthday, int64, error)
	ListActive(ctx context.Context, userID int64) ([]models.Birthday, error)
	Count(ctx context.Context) (int64, error)
}

var (
	_ UserRepositoryI     = (*UserRepository)(nil)
	_ BirthdayRepositoryI = (*BirthdayRepository)(nil)
)
