package service

import (
	"forum-system/internal/model"
	"forum-system/internal/repository"
)

// MessageService message lookups and author-only deletion
type MessageService struct {
	messages *repository.MessageRepository
}

// NewMessageService creates a MessageService
func NewMessageService(messages *repository.MessageRepository) *MessageService {
	return &MessageService{messages: messages}
}

// Deletable loads message id if userID wrote it
func (s *MessageService) Deletable(userID, id uint) (*model.Message, error) {
	message, err := s.messages.GetByID(id)
	if err != nil {
		return nil, translate(err)
	}
	if !message.WrittenBy(userID) {
		return nil, ErrNotAllowed
	}
	return message, nil
}

// Delete removes a message written by userID and returns its room id
func (s *MessageService) Delete(userID, id uint) (uint, error) {
	message, err := s.Deletable(userID, id)
	if err != nil {
		return 0, err
	}
	if err := s.messages.Delete(id); err != nil {
		return 0, translate(err)
	}
	return message.RoomID, nil
}

// Activity every message in default order
func (s *MessageService) Activity() ([]model.Message, error) {
	return s.messages.All()
}
