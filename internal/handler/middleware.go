package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"forum-system/config"
	"forum-system/internal/model"
	"forum-system/internal/service"
	"forum-system/pkg/logger"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxUserKey  = "current_user"
	ctxFlashKey = "flash_id"
)

// Sessions ties the session cookie to the session service and loads the
// current user for every request.
type Sessions struct {
	sessions *service.SessionService
	users    *service.UserService
	cookies  config.SessionConfig
	maxAge   int
}

func NewSessions(sessions *service.SessionService, users *service.UserService, cookies config.SessionConfig, ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: sessions,
		users:    users,
		cookies:  cookies,
		maxAge:   int(ttl / time.Second),
	}
}

// CurrentUser the logged in user, nil for anonymous requests
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

func flashID(c *gin.Context) string {
	return c.GetString(ctxFlashKey)
}

func (s *Sessions) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", s.cookies.Domain, s.cookies.Secure, true)
}

// Authenticate resolves the session cookie into the current user. Stale or
// forged cookies are cleared and the request continues anonymously.
func (s *Sessions) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.ensureFlashID(c)

		token, err := c.Cookie(s.cookies.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := s.sessions.Resolve(c.Request.Context(), token)
		switch {
		case errors.Is(err, service.ErrNoSession):
			s.setCookie(c, s.cookies.CookieName, "", -1)
		case err != nil:
			logger.Warn("resolve session failed", zap.Error(err))
		default:
			user, err := s.users.GetByID(userID)
			if errors.Is(err, service.ErrNotFound) {
				_ = s.sessions.End(c.Request.Context(), token)
				s.setCookie(c, s.cookies.CookieName, "", -1)
			} else if err != nil {
				logger.Warn("load session user failed", zap.Uint("user_id", userID), zap.Error(err))
			} else {
				c.Set(ctxUserKey, user)
			}
		}

		c.Next()
	}
}

// ensureFlashID gives every browser an anonymous id for its flash queue
func (s *Sessions) ensureFlashID(c *gin.Context) {
	id, err := c.Cookie(s.cookies.FlashCookieName)
	if err == nil {
		if _, perr := uuid.Parse(id); perr == nil {
			c.Set(ctxFlashKey, id)
			return
		}
	}
	id = uuid.NewString()
	s.setCookie(c, s.cookies.FlashCookieName, id, 0)
	c.Set(ctxFlashKey, id)
}

// LoginRequired sends anonymous users to the login page, remembering where
// they were headed.
func (s *Sessions) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Redirect(c, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			return
		}
		c.Next()
	}
}

// Login starts a session for user and sets the session cookie
func (s *Sessions) Login(c *gin.Context, user *model.User) error {
	token, err := s.sessions.Start(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}
	s.setCookie(c, s.cookies.CookieName, token, s.maxAge)
	c.Set(ctxUserKey, user)
	logger.Info("user logged in", zap.Uint("user_id", user.ID))
	return nil
}

// Logout destroys the server-side session and clears the cookie
func (s *Sessions) Logout(c *gin.Context) error {
	token, _ := c.Cookie(s.cookies.CookieName)
	s.setCookie(c, s.cookies.CookieName, "", -1)
	c.Set(ctxUserKey, (*model.User)(nil))
	return s.sessions.End(c.Request.Context(), token)
}
