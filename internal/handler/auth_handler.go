package handler

import (
	"errors"
	"net/http"

	"forum-system/internal/service"
	"forum-system/pkg/logger"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgUserNotFound  = "User does not exist"
	msgLoginFailed   = "Login failed"
	msgRegisterError = "An error occurred during registration"
)

// loginForm has no required fields: blanks still go through the email lookup
// and the credential check.
type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type registerForm struct {
	Name      string `form:"name" binding:"max=200"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"required,email"`
	Password1 string `form:"password1" binding:"required,min=8,notnumeric"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// AuthHandler login, logout and registration pages
type AuthHandler struct {
	*view
	users    *service.UserService
	sessions *Sessions
}

func NewAuthHandler(v *view, users *service.UserService, sessions *Sessions) *AuthHandler {
	return &AuthHandler{view: v, users: users, sessions: sessions}
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, email, next string) {
	h.render(c, status, "login_register.html", gin.H{
		"Page":  "login",
		"Email": email,
		"Next":  next,
	})
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		response.Redirect(c, "/")
		return
	}
	h.renderLogin(c, http.StatusOK, "", c.Query("next"))
}

// Login POST /login. An unknown email is reported but the credential check
// still runs, so such attempts flash both messages.
func (h *AuthHandler) Login(c *gin.Context) {
	if CurrentUser(c) != nil {
		response.Redirect(c, "/")
		return
	}

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, "error", msgLoginFailed)
		h.renderLogin(c, http.StatusOK, form.Email, form.Next)
		return
	}
	email := service.NormalizeEmail(form.Email)

	if _, err := h.users.GetByEmail(email); errors.Is(err, service.ErrUserNotFound) {
		h.flash(c, "error", msgUserNotFound)
	} else if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}

	user, err := h.users.Authenticate(email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Info("login failed", zap.String("email", email), zap.String("ip", c.ClientIP()))
		h.flash(c, "error", msgLoginFailed)
		h.renderLogin(c, http.StatusOK, email, form.Next)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, safeNext(form.Next))
}

// Logout GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		logger.Warn("end session failed", zap.Error(err))
	}
	response.Redirect(c, "/")
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, form registerForm) {
	form.Password1, form.Password2 = "", ""
	h.render(c, status, "login_register.html", gin.H{
		"Page": "register",
		"Form": form,
	})
}

// RegisterPage GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, registerForm{})
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Debug("invalid registration form", zap.Error(err))
		h.flash(c, "error", msgRegisterError)
		h.renderRegister(c, http.StatusOK, form)
		return
	}

	user, err := h.users.Register(service.RegisterInput{
		Name:     form.Name,
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password1,
	})
	if errors.Is(err, service.ErrDuplicate) || errors.Is(err, service.ErrValidation) {
		logger.Info("registration rejected", zap.String("username", form.Username), zap.Error(err))
		h.flash(c, "error", msgRegisterError)
		h.renderRegister(c, http.StatusOK, form)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, "/")
}
