package models

import "time"

// Role distinguishes regular accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultReminderDays is the lead time applied when a user or birthday does not specify one.
const DefaultReminderDays = 7

// Preferences holds per-user notification settings.
type Preferences struct {
	Notifications bool `gorm:"column:pref_notifications" json:"notifications"`
	ReminderDays  int  `gorm:"column:pref_reminder_days" json:"reminderDays"`
}

// User represents an account in the system.
// It maps to the `users` table in SQLite.
type User struct {
	ID             int64       `gorm:"column:id;primaryKey" json:"id"`
	Name           string      `gorm:"column:name" json:"name"`
	Email          string      `gorm:"column:email" json:"email"`
	PasswordHash   string      `gorm:"column:password_hash" json:"-"`
	Role           Role        `gorm:"column:role" json:"role"`
	Phone          string      `gorm:"column:phone" json:"phone,omitempty"`
	DateOfBirth    *time.Time  `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	ProfilePicture string      `gorm:"column:profile_picture" json:"profilePicture"`
	Preferences    Preferences `gorm:"embedded" json:"preferences"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// NewUser returns a regular user with default preferences.
func NewUser(name, email string) *User {
	return &User{
		Name:  name,
		Email: email,
		Role:  RoleUser,
		Preferences: Preferences{
			Notifications: true,
			ReminderDays:  DefaultReminderDays,
		},
	}
}

// IsAdmin reports whether the stored role is admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
