package models

import (
	"time"

	"gorm.io/datatypes"
)

// Relationship describes how a birthday contact relates to its owner.
type Relationship string

const (
	RelationshipFamily       Relationship = "family"
	RelationshipFriend       Relationship = "friend"
	RelationshipColleague    Relationship = "colleague"
	RelationshipAcquaintance Relationship = "acquaintance"
	RelationshipOther        Relationship = "other"
)

// Relationships lists every accepted relationship value.
var Relationships = []Relationship{
	RelationshipFamily,
	RelationshipFriend,
	RelationshipColleague,
	RelationshipAcquaintance,
	RelationshipOther,
}

// Valid reports whether r is one of Relationships.
func (r Relationship) Valid() bool {
	for _, v := range Relationships {
		if r == v {
			return true
		}
	}
	return false
}

// Field limits shared by validation and the schema.
const (
	MaxNameLength       = 60
	MaxNotesLength      = 500
	MaxGiftIdeaLength   = 100
	MinReminderDays     = 1
	MaxReminderDays     = 365
	DefaultRelationship = RelationshipFriend
)

// ReminderSettings controls when a birthday shows up in the reminders view.
type ReminderSettings struct {
	Enabled    bool `gorm:"column:reminder_enabled" json:"enabled"`
	DaysBefore int  `gorm:"column:reminder_days_before" json:"daysBefore"`
}

// Birthday is a contact's birthday owned by a user.
// DateOfBirth is stored as a UTC midnight calendar date.
// Records are soft-deleted by clearing IsActive.
type Birthday struct {
	ID               int64                       `gorm:"column:id;primaryKey" json:"id"`
	UserID           int64                       `gorm:"column:user_id" json:"userId"`
	Name             string                      `gorm:"column:name" json:"name"`
	DateOfBirth      time.Time                   `gorm:"column:date_of_birth" json:"dateOfBirth"`
	Relationship     Relationship                `gorm:"column:relationship" json:"relationship"`
	Email            string                      `gorm:"column:email" json:"email,omitempty"`
	Phone            string                      `gorm:"column:phone" json:"phone,omitempty"`
	Notes            string                      `gorm:"column:notes" json:"notes,omitempty"`
	GiftIdeas        datatypes.JSONSlice[string] `gorm:"column:gift_ideas" json:"giftIdeas"`
	ReminderSettings ReminderSettings            `gorm:"embedded" json:"reminderSettings"`
	IsActive         bool                        `gorm:"column:is_active" json:"isActive"`
	CreatedAt        time.Time                   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt        time.Time                   `gorm:"column:updated_at" json:"updatedAt"`
}

func (Birthday) TableName() string { return "birthdays" }

// NewBirthday returns an active birthday with default relationship and reminder settings.
func NewBirthday(userID int64, name string, dob time.Time) *Birthday {
	return &Birthday{
		UserID:       userID,
		Name:         name,
		DateOfBirth:  dob,
		Relationship: DefaultRelationship,
		GiftIdeas:    datatypes.JSONSlice[string]{},
		ReminderSettings: ReminderSettings{
			Enabled:    true,
			DaysBefore: DefaultReminderDays,
		},
		IsActive: true,
	}
}
