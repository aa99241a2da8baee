package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const SessionKeyPrefix = "forum:session:"

// ErrSessionNotFound the session expired or was destroyed
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps server-side login sessions so that logging out
// invalidates the token even before it expires.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return SessionKeyPrefix + id
}

// Create starts a session for userID and returns its id
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Get returns the user owning session id
func (s *SessionStore) Get(ctx context.Context, id string) (uint, error) {
	if id == "" {
		return 0, ErrSessionNotFound
	}

	val, err := s.client.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return uint(userID), nil
}

// Delete destroys session id; deleting an unknown session is not an error
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
