package repository

import (
	"forum-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roomOrder newest activity first
const roomOrder = "room.updated_at DESC, room.created_at DESC, room.id DESC"

// RoomRepository room storage
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a RoomRepository
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) withRelations() *gorm.DB {
	return r.db.Preload("Host").Preload("Topic").Preload("Participants")
}

// Create inserts the room only; Host and Topic must already exist
func (r *RoomRepository) Create(room *model.Room) error {
	return r.db.Omit(clause.Associations).Create(room).Error
}

// GetByID loads a room with host, topic and participants
func (r *RoomRepository) GetByID(id uint) (*model.Room, error) {
	var room model.Room
	if err := r.withRelations().First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// Search returns rooms whose topic name, name or description contains q.
// Each room appears at most once since a room has exactly one topic.
func (r *RoomRepository) Search(q string) ([]model.Room, error) {
	pattern := containsPattern(q)

	var rooms []model.Room
	err := r.withRelations().
		Select("room.*").
		Joins("JOIN topic ON topic.id = room.topic_id").
		Where(icontains("topic.name")+" OR "+icontains("room.name")+" OR "+icontains("room.description"),
			pattern, pattern, pattern).
		Order(roomOrder).
		Find(&rooms).Error
	return rooms, err
}

// ListByHost rooms owned by hostID
func (r *RoomRepository) ListByHost(hostID uint) ([]model.Room, error) {
	var rooms []model.Room
	err := r.withRelations().
		Where("host_id = ?", hostID).
		Order(roomOrder).
		Find(&rooms).Error
	return rooms, err
}

// Update overwrites name, topic and description
func (r *RoomRepository) Update(room *model.Room) error {
	return r.db.Model(room).
		Omit(clause.Associations).
		Select("Name", "TopicID", "Description", "UpdatedAt").
		Updates(room).Error
}

// Delete removes the room together with its messages and participant links
func (r *RoomRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM room_participant WHERE room_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// addParticipant links userID to roomID; an existing link is left alone
func addParticipant(db *gorm.DB, roomID, userID uint) error {
	return db.Table("room_participant").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{"room_id": roomID, "user_id": userID}).Error
}

// Count all rooms
func (r *RoomRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Room{}).Count(&count).Error
	return count, err
}
