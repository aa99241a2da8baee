package service

import (
	"errors"
	"fmt"
	"strings"

	"forum-system/internal/model"
	"forum-system/internal/repository"
	"forum-system/pkg/password"
)

// RegisterInput registration form after binding
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// ProfileInput editable profile fields. An empty Avatar keeps the current one.
type ProfileInput struct {
	Name     string
	Username string
	Email    string
	Bio      string
	Avatar   string
}

// Profile everything shown on a user's profile page
type Profile struct {
	User       *model.User
	Rooms      []model.Room
	Topics     []repository.TopicWithCount
	TotalRooms int64
	Activities []model.Message
}

type UserService struct {
	users    *repository.UserRepository
	rooms    *repository.RoomRepository
	topics   *repository.TopicRepository
	messages *repository.MessageRepository
}

func NewUserService(users *repository.UserRepository, rooms *repository.RoomRepository, topics *repository.TopicRepository, messages *repository.MessageRepository) *UserService {
	return &UserService{users: users, rooms: rooms, topics: topics, messages: messages}
}

// NormalizeEmail emails are stored and compared lowercase
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with lowercase username and email
func (s *UserService) Register(in RegisterInput) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("register: %w", ErrValidation)
	}

	taken, err := s.users.ExistsOther(0, email, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("register %s: %w", email, ErrDuplicate)
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("register %s: %w", email, translate(err))
	}
	return user, nil
}

// GetByEmail looks an account up by its (normalized) email
func (s *UserService) GetByEmail(email string) (*model.User, error) {
	u, err := s.users.GetByEmail(NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Authenticate checks the credentials. Unknown emails and wrong passwords
// both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(email, plainPassword string) (*model.User, error) {
	u, err := s.users.GetByEmail(NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) || (err == nil && plainPassword == "") {
		password.Burn(plainPassword)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	u, err := s.users.GetByID(id)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Profile loads a user with hosted rooms, topics and own messages
func (s *UserService) Profile(id uint) (*Profile, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListByHost(id)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.WithRoomCounts(0)
	if err != nil {
		return nil, err
	}
	total, err := s.rooms.Count()
	if err != nil {
		return nil, err
	}
	activities, err := s.messages.ListByUser(id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Rooms: rooms, Topics: topics, TotalRooms: total, Activities: activities}, nil
}

// UpdateProfile overwrites the profile of userID
func (s *UserService) UpdateProfile(userID uint, in ProfileInput) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("update profile: %w", ErrValidation)
	}
	taken, err := s.users.ExistsOther(userID, email, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("update profile %d: %w", userID, ErrDuplicate)
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Username = username
	user.Email = email
	user.Bio = in.Bio
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if err := s.users.UpdateProfile(user); err != nil {
		return nil, fmt.Errorf("update profile %d: %w", userID, translate(err))
	}
	return user, nil
}
