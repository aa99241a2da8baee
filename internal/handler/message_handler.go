package handler

import (
	"fmt"
	"net/http"

	"forum-system/internal/service"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler message deletion and the activity page
type MessageHandler struct {
	*view
	messages *service.MessageService
}

func NewMessageHandler(v *view, messages *service.MessageService) *MessageHandler {
	return &MessageHandler{view: v, messages: messages}
}

// DeleteMessagePage GET /delete-message/:id
func (h *MessageHandler) DeleteMessagePage(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	message, err := h.messages.Deletable(currentUserID(c), id)
	if err != nil {
		h.fail(c, err, refuseMessage)
		return
	}
	h.render(c, http.StatusOK, "delete.html", gin.H{
		"Object": message.Summary(),
		"Action": fmt.Sprintf("/delete-message/%d", message.ID),
		"Back":   fmt.Sprintf("/room/%d", message.RoomID),
	})
}

// DeleteMessage POST /delete-message/:id, back to the message's room
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	roomID, err := h.messages.Delete(currentUserID(c), id)
	if err != nil {
		h.fail(c, err, refuseMessage)
		return
	}
	response.Redirect(c, fmt.Sprintf("/room/%d", roomID))
}

// Activity GET /activity
func (h *MessageHandler) Activity(c *gin.Context) {
	activities, err := h.messages.Activity()
	if err != nil {
		h.fail(c, err, refuseMessage)
		return
	}
	h.render(c, http.StatusOK, "activity.html", gin.H{"Activities": activities})
}
