package model

import (
	"time"
)

// User forum account
// Email and Username are stored lowercase and are both unique.
// Only the bcrypt hash of the password is stored.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"type:varchar(200)"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string    `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Avatar       string    `gorm:"type:varchar(255);default:'avatar.svg'"`
	Bio          string    `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName "user" is reserved in postgres
func (User) TableName() string { return "account" }

// DisplayName prefers the full name and falls back to the username
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
