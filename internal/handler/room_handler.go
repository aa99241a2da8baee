package handler

import (
	"errors"
	"fmt"
	"net/http"

	"forum-system/internal/model"
	"forum-system/internal/service"
	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
)

type roomForm struct {
	Topic       string `form:"topic" binding:"required,max=200"`
	Name        string `form:"name" binding:"required,max=200"`
	Description string `form:"description"`
}

func (f roomForm) input() service.RoomInput {
	return service.RoomInput{Topic: f.Topic, Name: f.Name, Description: f.Description}
}

type messageForm struct {
	Body string `form:"body" binding:"required"`
}

// RoomHandler home page, rooms and topics
type RoomHandler struct {
	*view
	rooms *service.RoomService
}

func NewRoomHandler(v *view, rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{view: v, rooms: rooms}
}

// Home GET /?q=
func (h *RoomHandler) Home(c *gin.Context) {
	home, err := h.rooms.Home(c.Query("q"))
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{
		"Rooms":      home.Rooms,
		"RoomCount":  home.RoomCount,
		"Topics":     home.Topics,
		"TotalRooms": home.TotalRooms,
		"Activities": home.Activities,
	})
}

// Room GET /room/:id
func (h *RoomHandler) Room(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	detail, err := h.rooms.Detail(id)
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	h.render(c, http.StatusOK, "room.html", gin.H{
		"Room":     detail.Room,
		"Messages": detail.Messages,
		"IsHost":   detail.Room.HostedBy(currentUserID(c)),
	})
}

// PostMessage POST /room/:id
func (h *RoomHandler) PostMessage(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return
	}
	location := fmt.Sprintf("/room/%d", id)

	var form messageForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, "error", "Message cannot be empty")
		response.Redirect(c, location)
		return
	}

	_, err = h.rooms.Post(currentUserID(c), id, form.Body)
	if errors.Is(err, service.ErrValidation) {
		h.flash(c, "error", "Message cannot be empty")
		response.Redirect(c, location)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, location)
}

func (h *RoomHandler) renderForm(c *gin.Context, status int, page, action string, form roomForm) {
	topics, err := h.rooms.AllTopics()
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	h.render(c, status, "room_form.html", gin.H{
		"Page":      page,
		"Action":    action,
		"Form":      form,
		"AllTopics": topics,
	})
}

// CreateRoomPage GET /create-room
func (h *RoomHandler) CreateRoomPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "create", "/create-room", roomForm{})
}

// CreateRoom POST /create-room
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var form roomForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, "error", "Topic and room name are required")
		h.renderForm(c, http.StatusOK, "create", "/create-room", form)
		return
	}

	_, err := h.rooms.Create(currentUserID(c), form.input())
	if errors.Is(err, service.ErrValidation) {
		h.flash(c, "error", "Topic and room name are required")
		h.renderForm(c, http.StatusOK, "create", "/create-room", form)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, "/")
}

// editable loads the :id room for its host, writing the failure otherwise
func (h *RoomHandler) editable(c *gin.Context) (*model.Room, bool) {
	id, err := paramID(c)
	if err != nil {
		h.notFound(c)
		return nil, false
	}
	room, err := h.rooms.Editable(currentUserID(c), id)
	if err != nil {
		h.fail(c, err, refuseRoom)
		return nil, false
	}
	return room, true
}

// UpdateRoomPage GET /update-room/:id
func (h *RoomHandler) UpdateRoomPage(c *gin.Context) {
	room, ok := h.editable(c)
	if !ok {
		return
	}
	h.renderForm(c, http.StatusOK, "update", fmt.Sprintf("/update-room/%d", room.ID), roomForm{
		Topic:       room.Topic.Name,
		Name:        room.Name,
		Description: room.Description,
	})
}

// UpdateRoom POST /update-room/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	room, ok := h.editable(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/update-room/%d", room.ID)

	var form roomForm
	if err := c.ShouldBind(&form); err != nil {
		h.flash(c, "error", "Topic and room name are required")
		h.renderForm(c, http.StatusOK, "update", action, form)
		return
	}

	_, err := h.rooms.Update(currentUserID(c), room.ID, form.input())
	if errors.Is(err, service.ErrValidation) {
		h.flash(c, "error", "Topic and room name are required")
		h.renderForm(c, http.StatusOK, "update", action, form)
		return
	}
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, "/")
}

// DeleteRoomPage GET /delete-room/:id
func (h *RoomHandler) DeleteRoomPage(c *gin.Context) {
	room, ok := h.editable(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "delete.html", gin.H{
		"Object": room.Name,
		"Action": fmt.Sprintf("/delete-room/%d", room.ID),
		"Back":   fmt.Sprintf("/room/%d", room.ID),
	})
}

// DeleteRoom POST /delete-room/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	room, ok := h.editable(c)
	if !ok {
		return
	}
	if err := h.rooms.Delete(currentUserID(c), room.ID); err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	response.Redirect(c, "/")
}

// Topics GET /topics?q=
func (h *RoomHandler) Topics(c *gin.Context) {
	topics, err := h.rooms.Topics(c.Query("q"))
	if err != nil {
		h.fail(c, err, refuseRoom)
		return
	}
	h.render(c, http.StatusOK, "topics.html", gin.H{"Topics": topics})
}
