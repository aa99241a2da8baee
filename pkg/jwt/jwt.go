package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"forum-system/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService signs and validates session tokens (HS256).
// Subject carries the user id and ID the server-side session id.
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
}

// SessionClaims token payload
type SessionClaims struct {
	jwtv5.RegisteredClaims
}

// UserID parses the subject back into a user id
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
	}
}

// ExpireAfter token lifetime, also used for the cookie and session TTL
func (s *JWTService) ExpireAfter() time.Duration {
	return s.expireAfter
}

// GenerateToken signs a token for userID bound to sessionID
func (s *JWTService) GenerateToken(userID uint, sessionID string) (string, error) {
	if userID == 0 {
		return "", errors.New("userID is required")
	}
	if sessionID == "" {
		return "", errors.New("sessionID is required")
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        sessionID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	claims := &SessionClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
