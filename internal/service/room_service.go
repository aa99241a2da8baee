package service

import (
	"fmt"
	"strings"

	"forum-system/internal/model"
	"forum-system/internal/repository"
)

// homeTopicLimit topics shown in the home sidebar
const homeTopicLimit = 5

// RoomInput room form after binding
type RoomInput struct {
	Topic       string
	Name        string
	Description string
}

// Home data behind the room list
type Home struct {
	Rooms      []model.Room
	RoomCount  int
	Topics     []repository.TopicWithCount
	TotalRooms int64
	Activities []model.Message
}

// RoomDetail a room with its messages newest first
type RoomDetail struct {
	Room     *model.Room
	Messages []model.Message
}

// RoomService rooms, topics and posting
type RoomService struct {
	rooms    *repository.RoomRepository
	topics   *repository.TopicRepository
	messages *repository.MessageRepository
}

// NewRoomService creates a RoomService
func NewRoomService(rooms *repository.RoomRepository, topics *repository.TopicRepository, messages *repository.MessageRepository) *RoomService {
	return &RoomService{rooms: rooms, topics: topics, messages: messages}
}

// Home searches rooms by topic name, name or description. The activity feed
// is filtered on topic name only.
func (s *RoomService) Home(q string) (*Home, error) {
	rooms, err := s.rooms.Search(q)
	if err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}
	topics, err := s.topics.WithRoomCounts(homeTopicLimit)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	total, err := s.rooms.Count()
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	activities, err := s.messages.ListByTopic(q)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return &Home{
		Rooms:      rooms,
		RoomCount:  len(rooms),
		Topics:     topics,
		TotalRooms: total,
		Activities: activities,
	}, nil
}

// Get loads room id
func (s *RoomService) Get(id uint) (*model.Room, error) {
	room, err := s.rooms.GetByID(id)
	if err != nil {
		return nil, translate(err)
	}
	return room, nil
}

// Detail loads room id and its messages
func (s *RoomService) Detail(id uint) (*RoomDetail, error) {
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByRoom(id)
	if err != nil {
		return nil, err
	}
	return &RoomDetail{Room: room, Messages: messages}, nil
}

// Editable loads room id if userID hosts it
func (s *RoomService) Editable(userID, id uint) (*model.Room, error) {
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !room.HostedBy(userID) {
		return nil, ErrNotAllowed
	}
	return room, nil
}

func (in RoomInput) normalize() (RoomInput, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	in.Name = strings.TrimSpace(in.Name)
	if in.Topic == "" || in.Name == "" {
		return in, ErrValidation
	}
	return in, nil
}

// Create a room hosted by hostID, creating its topic if needed
func (s *RoomService) Create(hostID uint, in RoomInput) (*model.Room, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	topic, _, err := s.topics.GetOrCreate(in.Topic)
	if err != nil {
		return nil, fmt.Errorf("resolve topic %q: %w", in.Topic, err)
	}

	room := &model.Room{
		HostID:      hostID,
		TopicID:     topic.ID,
		Topic:       *topic,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.rooms.Create(room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// Update overwrites name, topic and description of a room hosted by userID
func (s *RoomService) Update(userID, id uint, in RoomInput) (*model.Room, error) {
	room, err := s.Editable(userID, id)
	if err != nil {
		return nil, err
	}
	in, err = in.normalize()
	if err != nil {
		return nil, fmt.Errorf("update room %d: %w", id, err)
	}
	topic, _, err := s.topics.GetOrCreate(in.Topic)
	if err != nil {
		return nil, fmt.Errorf("resolve topic %q: %w", in.Topic, err)
	}

	room.Name = in.Name
	room.TopicID = topic.ID
	room.Topic = *topic
	room.Description = in.Description
	if err := s.rooms.Update(room); err != nil {
		return nil, fmt.Errorf("update room %d: %w", id, err)
	}
	return room, nil
}

// Delete removes a room hosted by userID along with its messages
func (s *RoomService) Delete(userID, id uint) error {
	if _, err := s.Editable(userID, id); err != nil {
		return err
	}
	if err := s.rooms.Delete(id); err != nil {
		return translate(err)
	}
	return nil
}

// Post adds a message by userID to room id and makes the user a participant
func (s *RoomService) Post(userID, id uint, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("post to room %d: %w", id, ErrValidation)
	}
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	message := &model.Message{UserID: userID, RoomID: id, Body: body}
	if err := s.messages.Create(message); err != nil {
		return nil, fmt.Errorf("post to room %d: %w", id, err)
	}
	return message, nil
}

// Topics whose name contains q
func (s *RoomService) Topics(q string) ([]model.Topic, error) {
	return s.topics.Search(q)
}

// AllTopics for the room form's suggestions
func (s *RoomService) AllTopics() ([]model.Topic, error) {
	return s.topics.All()
}
