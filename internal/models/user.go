package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an auth identity. Profile data lives on the Profile row (1:1).
type User struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Native auth
	PasswordHash string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the public-facing identity attached to a User.
type Profile struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `gorm:"type:text" json:"bio"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppRole is an assignable privilege level.
type AppRole string

const (
	RoleAdmin     AppRole = "admin"
	RoleModerator AppRole = "moderator"
	RoleUser      AppRole = "user"
)

// UserRole grants a role to a user. Absence of a row means RoleUser.
type UserRole struct {
	ID     string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string  `gorm:"not null;index" json:"user_id"`
	Role   AppRole `gorm:"not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}
