package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"type:varchar(10);not null;default:user;check:role IN ('user','admin')" json:"role"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`

	Sessions []Session `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

type Session struct {
	TokenHash string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"index;not null;type:varchar(36)"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
