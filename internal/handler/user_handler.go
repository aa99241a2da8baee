package handler

import (
	"errors"
	"fmt"
	"net/http"

	"forum-system/internal/model"
	"forum-system/internal/service"
	"forum-system/pkg/logger"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgProfileError = "Could not update your profile"

type profileForm struct {
	Name     string `form:"name" binding:"max=200"`
	Username string `form:"username" binding:"required,max=150"`
	Email    string `form:"email" binding:"required,email"`
	Bio      string `form:"bio"`
}

// UserHandler profile pages
type UserHandler struct {
	*view
	users   *service.UserService
	avatars *service.AvatarStore
}

func NewUserHandler(v *view, users *service.UserService, avatars *service.AvatarStore) *UserHandler {
	return &UserHandler{view: v, users: users, avatars: avatars}
}

// Profile GET /profile/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	profile, err := h.users.Profile(id)
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Profile":    profile,
		"Topics":     profile.Topics,
		"TotalRooms": profile.TotalRooms,
		"IsOwner":    currentUserID(c) == profile.User.ID,
	})
}

func formFor(u *model.User) profileForm {
	return profileForm{Name: u.Name, Username: u.Username, Email: u.Email, Bio: u.Bio}
}

func (h *UserHandler) renderForm(c *gin.Context, status int, form profileForm) {
	h.render(c, status, "update-user.html", gin.H{"Form": form})
}

// UpdateUserPage GET /update-user
func (h *UserHandler) UpdateUserPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, formFor(CurrentUser(c)))
}

// UpdateUser POST /update-user, multipart with an optional avatar file
func (h *UserHandler) UpdateUser(c *gin.Context) {
	user := CurrentUser(c)

	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, "error", msgProfileError)
		h.renderForm(c, http.StatusOK, form)
		return
	}

	var avatar string
	if fh, err := c.FormFile("avatar"); err == nil {
		avatar, err = h.avatars.Save(fh)
		if errors.Is(err, service.ErrBadAvatar) {
			h.flash(c, "error", "Avatar must be a png, jpeg, gif or webp image")
			h.renderForm(c, http.StatusOK, form)
			return
		}
		if err != nil {
			h.fail(c, err, refuseRoom)
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.flash(c, "error", msgProfileError)
		h.renderForm(c, http.StatusOK, form)
		return
	}

	previous := user.Avatar
	updated, err := h.users.UpdateProfile(user.ID, service.ProfileInput{
		Name:     form.Name,
		Username: form.Username,
		Email:    form.Email,
		Bio:      form.Bio,
		Avatar:   avatar,
	})
	if err != nil {
		h.discard(avatar)
	}
	if errors.Is(err, service.ErrDuplicate) || errors.Is(err, service.ErrValidation) {
		logger.Info("profile update rejected", zap.Uint("user_id", user.ID), zap.Error(err))
		h.flash(c, "error", msgProfileError)
		h.renderForm(c, http.StatusOK, form)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	if avatar != "" && previous != avatar {
		h.discard(previous)
	}
	c.Set(ctxUserKey, updated)
	response.Redirect(c, fmt.Sprintf("/profile/%d", updated.ID))
}

// discard removes an uploaded avatar that is no longer referenced
func (h *UserHandler) discard(name string) {
	if name == "" {
		return
	}
	if err := h.avatars.Remove(name); err != nil {
		logger.Warn("remove avatar failed", zap.String("avatar", name), zap.Error(err))
	}
}
