package service

import (
	"context"
	"errors"
	"fmt"

	"forum-system/pkg/jwt"
	"forum-system/pkg/redis"
)

// ErrNoSession the request carries no live session
var ErrNoSession = errors.New("no session")

// SessionService issues and revokes login sessions. The cookie holds a
// signed token whose ID must still exist in the session store.
type SessionService struct {
	jwt   *jwt.JWTService
	store *redis.SessionStore
}

func NewSessionService(jwtSvc *jwt.JWTService, store *redis.SessionStore) *SessionService {
	return &SessionService{jwt: jwtSvc, store: store}
}

// Start creates a session for userID and returns the token for the cookie
func (s *SessionService) Start(ctx context.Context, userID uint) (string, error) {
	sessionID, err := s.store.Create(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := s.jwt.GenerateToken(userID, sessionID)
	if err != nil {
		_ = s.store.Delete(ctx, sessionID)
		return "", err
	}
	return token, nil
}

// Resolve returns the user id behind token
func (s *SessionService) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrNoSession
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	stored, err := s.store.Get(ctx, claims.ID)
	if errors.Is(err, redis.ErrSessionNotFound) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	if stored != userID {
		return 0, fmt.Errorf("%w: session %s belongs to another user", ErrNoSession, claims.ID)
	}
	return userID, nil
}

// End destroys the session behind token. Invalid tokens are ignored.
func (s *SessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.ID)
}
