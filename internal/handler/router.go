package handler

import (
	"fmt"
	"net/http"

	"forum-system/config"
	"forum-system/internal/service"
	"forum-system/pkg/logger"
	"forum-system/pkg/redis"
	"forum-system/web"

	"github.com/gin-gonic/gin"
)

// Deps everything the router needs
type Deps struct {
	Config   *config.Config
	Users    *service.UserService
	Rooms    *service.RoomService
	Messages *service.MessageService
	Sessions *service.SessionService
	Flashes  *redis.FlashStore
	Avatars  *service.AvatarStore
	Checks   map[string]HealthCheck
}

// NewRouter builds the gin engine with every page, the static and media
// file servers and the health endpoint.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	v := newView(d.Flashes, cfg.Media.DefaultAvatar)
	tmpl, err := web.Templates(v.funcs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.RecoveryMiddleware())
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = cfg.Media.MaxUploadSize

	if cfg.Server.StaticDir != "" {
		router.Static("/static", cfg.Server.StaticDir)
	} else {
		router.StaticFS("/static", http.FS(web.Static()))
	}
	router.Static("/media", cfg.Media.Dir)
	router.GET("/health", Health(d.Checks))

	sessions := NewSessions(d.Sessions, d.Users, cfg.Session, cfg.JWT.ExpireTime)
	auth := NewAuthHandler(v, d.Users, sessions)
	rooms := NewRoomHandler(v, d.Rooms)
	messages := NewMessageHandler(v, d.Messages)
	users := NewUserHandler(v, d.Users, d.Avatars)

	site := router.Group("/", sessions.Authenticate())
	{
		site.GET("/login", auth.LoginPage)
		site.POST("/login", auth.Login)
		site.GET("/logout", auth.Logout)
		site.GET("/register", auth.RegisterPage)
		site.POST("/register", auth.Register)

		site.GET("/", rooms.Home)
		site.GET("/room/:id", rooms.Room)
		site.GET("/topics", rooms.Topics)
		site.GET("/profile/:id", users.Profile)
		site.GET("/activity", messages.Activity)

		member := site.Group("/", sessions.LoginRequired())
		{
			member.POST("/room/:id", rooms.PostMessage)
			member.GET("/create-room", rooms.CreateRoomPage)
			member.POST("/create-room", rooms.CreateRoom)
			member.GET("/update-room/:id", rooms.UpdateRoomPage)
			member.POST("/update-room/:id", rooms.UpdateRoom)
			member.GET("/delete-room/:id", rooms.DeleteRoomPage)
			member.POST("/delete-room/:id", rooms.DeleteRoom)
			member.GET("/delete-message/:id", messages.DeleteMessagePage)
			member.POST("/delete-message/:id", messages.DeleteMessage)
			member.GET("/update-user", users.UpdateUserPage)
			member.POST("/update-user", users.UpdateUser)
		}
	}
	router.NoRoute(sessions.Authenticate(), v.notFound)

	return router, nil
}
