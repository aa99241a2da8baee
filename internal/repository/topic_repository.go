package repository

import (
	"errors"

	"forum-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicWithCount topic plus the number of rooms tagged with it
type TopicWithCount struct {
	model.Topic
	RoomCount int64
}

type TopicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// GetOrCreate returns the topic named exactly name, creating it if absent.
// created is true only when this call inserted the row.
func (r *TopicRepository) GetOrCreate(name string) (*model.Topic, bool, error) {
	var topic model.Topic
	err := r.db.Where("name = ?", name).First(&topic).Error
	if err == nil {
		return &topic, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	topic = model.Topic{Name: name}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&topic)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 && topic.ID != 0 {
		return &topic, true, nil
	}

	// lost a race with another insert of the same name
	if err := r.db.Where("name = ?", name).First(&topic).Error; err != nil {
		return nil, false, notFound(err)
	}
	return &topic, false, nil
}

// Search topics whose name contains q, case-insensitively
func (r *TopicRepository) Search(q string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.Where(icontains("name"), containsPattern(q)).
		Order("id ASC").
		Find(&topics).Error
	return topics, err
}

// All topics
func (r *TopicRepository) All() ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.Order("id ASC").Find(&topics).Error
	return topics, err
}

// WithRoomCounts lists topics with their room counts; limit <= 0 means all
func (r *TopicRepository) WithRoomCounts(limit int) ([]TopicWithCount, error) {
	var rows []TopicWithCount
	q := r.db.Model(&model.Topic{}).
		Select("topic.id, topic.name, COUNT(room.id) AS room_count").
		Joins("LEFT JOIN room ON room.topic_id = topic.id").
		Group("topic.id, topic.name").
		Order("topic.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}
