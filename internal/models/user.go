package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleFounder  Role = "FOUNDER"
	RoleInvestor Role = "INVESTOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleFounder || r == RoleInvestor
}

// User is the login identity behind a founder or an investor.
type User struct {
	ID                     string     `gorm:"primaryKey;size:36" json:"id"`
	Name                   string     `gorm:"size:200" json:"name"`
	Email                  string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone                  string     `gorm:"size:50" json:"phone"`
	PasswordHash           string     `gorm:"size:255" json:"-"`
	Role                   Role       `gorm:"size:20;not null" json:"role"`
	Verified               bool       `gorm:"default:false" json:"verified"`
	Onboarded              bool       `gorm:"default:false" json:"onboarded"`
	OTP                    string     `gorm:"size:10" json:"-"`
	OTPExpiresAt           *time.Time `json:"-"`
	PasswordResetToken     string     `gorm:"size:64;index" json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	LastLogin              *time.Time `json:"last_login,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
