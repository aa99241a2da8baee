package model

// Topic label attached to rooms, unique by exact name
type Topic struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(200);not null;uniqueIndex"`
}

func (Topic) TableName() string { return "topic" }
