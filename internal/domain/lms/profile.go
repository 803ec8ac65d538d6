package lms

import "github.com/google/uuid"

// Profile holds display fields keyed by the auth user id.
type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `gorm:"column:full_name" json:"full_name"`
	Email    string    `gorm:"column:email" json:"email"`
}

func (Profile) TableName() string { return "profiles" }
