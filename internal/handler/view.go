package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"forum-system/internal/service"
	"forum-system/pkg/logger"
	"forum-system/pkg/redis"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	refuseRoom    = "You are not allowed here!!"
	refuseMessage = "You are not allowed delete!!"
)

// view renders pages and queues flashes for the current browser
type view struct {
	flashes       *redis.FlashStore
	defaultAvatar string
}

func newView(flashes *redis.FlashStore, defaultAvatar string) *view {
	return &view{flashes: flashes, defaultAvatar: defaultAvatar}
}

// funcs are available in every template
func (v *view) funcs() template.FuncMap {
	return template.FuncMap{
		"avatar": v.avatarURL,
		"since":  since,
	}
}

func (v *view) avatarURL(name string) string {
	if name == "" || name == v.defaultAvatar {
		return "/static/avatar.svg"
	}
	return "/media/" + name
}

// since renders t as a coarse age, e.g. "3 hours ago"
func since(t time.Time) string {
	d := time.Since(t)
	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, name)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return unit(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return unit(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return unit(int(d/(24*time.Hour)), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// render executes page with data plus the current user and pending flashes
func (v *view) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Query"]; !ok {
		data["Query"] = c.Query("q")
	}
	data["CurrentUser"] = CurrentUser(c)
	data["CurrentUserID"] = currentUserID(c)

	flashes, err := v.flashes.Pop(c.Request.Context(), flashID(c))
	if err != nil {
		logger.Warn("pop flashes failed", zap.Error(err))
	}
	data["Flashes"] = flashes

	c.HTML(status, page, data)
}

// flash queues a message for the next rendered page of this browser
func (v *view) flash(c *gin.Context, level, text string) {
	if err := v.flashes.Add(c.Request.Context(), flashID(c), redis.Flash{Level: level, Text: text}); err != nil {
		logger.Warn("add flash failed", zap.String("text", text), zap.Error(err))
	}
}

// fail maps a service error onto a response. refusal is the plain-text body
// sent when the user does not own the record.
func (v *view) fail(c *gin.Context, err error, refusal string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		v.render(c, http.StatusNotFound, "404.html", nil)
	case errors.Is(err, service.ErrNotAllowed):
		logger.WithFields(map[string]interface{}{
			"user_id": currentUserID(c),
			"path":    c.Request.URL.Path,
		}).Warn("refused", zap.String("reason", refusal))
		response.NotAllowed(c, refusal)
	default:
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		v.render(c, http.StatusInternalServerError, "500.html", nil)
	}
	c.Abort()
}

func (v *view) notFound(c *gin.Context) {
	v.render(c, http.StatusNotFound, "404.html", nil)
}

// paramID parses the :id path parameter. Anything but a positive integer is
// reported as not found.
func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// safeNext accepts only local absolute paths as redirect targets
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func currentUserID(c *gin.Context) uint {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}
