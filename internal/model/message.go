package model

import (
	"time"
	"unicode/utf8"
)

// Message post written by User inside Room
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	RoomID    uint      `gorm:"not null;index"`
	Room      Room      `gorm:"constraint:OnDelete:CASCADE"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`
}

func (Message) TableName() string { return "message" }

// summaryLen runes shown when a message is referenced elsewhere
const summaryLen = 50

// Summary first characters of the body
func (m Message) Summary() string {
	if utf8.RuneCountInString(m.Body) <= summaryLen {
		return m.Body
	}
	return string([]rune(m.Body)[:summaryLen])
}

// WrittenBy reports whether userID authored the message
func (m Message) WrittenBy(userID uint) bool {
	return userID != 0 && m.UserID == userID
}

// All lists every model for AutoMigrate, parents first
func All() []interface{} {
	return []interface{}{&User{}, &Topic{}, &Room{}, &Message{}}
}
