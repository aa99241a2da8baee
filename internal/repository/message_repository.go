package repository

import (
	"forum-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository message storage
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message and makes its author a participant of the room,
// both or neither. User and Room must already exist.
func (r *MessageRepository) Create(message *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(message).Error; err != nil {
			return err
		}
		return addParticipant(tx, message.RoomID, message.UserID)
	})
}

// GetByID loads a message with its author and room
func (r *MessageRepository) GetByID(id uint) (*model.Message, error) {
	var message model.Message
	err := r.db.Preload("User").Preload("Room").First(&message, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

// Delete removes one message
func (r *MessageRepository) Delete(id uint) error {
	res := r.db.Delete(&model.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRoom messages of a room, newest created first
func (r *MessageRepository) ListByRoom(roomID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}

// ListByUser messages written by userID, newest updated first
func (r *MessageRepository) ListByUser(userID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("User").Preload("Room").
		Where("user_id = ?", userID).
		Order("updated_at DESC, created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}

// ListByTopic messages in rooms whose topic name contains q, newest updated first
func (r *MessageRepository) ListByTopic(q string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("User").Preload("Room").
		Select("message.*").
		Joins("JOIN room ON room.id = message.room_id").
		Joins("JOIN topic ON topic.id = room.topic_id").
		Where(icontains("topic.name"), containsPattern(q)).
		Order("message.updated_at DESC, message.created_at DESC, message.id DESC").
		Find(&messages).Error
	return messages, err
}

// All messages in default order
func (r *MessageRepository) All() ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("User").Preload("Room").
		Order("updated_at DESC, created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}
