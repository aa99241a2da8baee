package model

import (
	"time"
)

// Room discussion space owned by Host and tagged with Topic.
// Participants are the users that have posted in the room.
type Room struct {
	ID           uint      `gorm:"primaryKey"`
	HostID       uint      `gorm:"not null;index"`
	Host         User      `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE"`
	TopicID      uint      `gorm:"not null;index"`
	Topic        Topic     `gorm:"constraint:OnDelete:RESTRICT"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Description  string    `gorm:"type:text"`
	Participants []User    `gorm:"many2many:room_participant;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time `gorm:"index"`
}

func (Room) TableName() string { return "room" }

// HostedBy reports whether userID owns the room
func (r Room) HostedBy(userID uint) bool {
	return userID != 0 && r.HostID == userID
}
