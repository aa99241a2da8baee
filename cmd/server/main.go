package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum-system/config"
	"forum-system/internal/handler"
	"forum-system/internal/model"
	"forum-system/internal/repository"
	"forum-system/internal/service"
	dbPkg "forum-system/pkg/db"
	"forum-system/pkg/jwt"
	"forum-system/pkg/logger"
	redisPkg "forum-system/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

func main() {
	// 1. config
	cfg := config.LoadConfig()

	// 2. logging
	logger.InitLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("=== forum starting ===")
	logger.Info("server configuration",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Duration("session_ttl", cfg.JWT.ExpireTime),
		zap.String("media_dir", cfg.Media.Dir),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			logger.Error("close database failed", zap.Error(err))
		}
	}()
	logger.Info("database connected")

	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}
	logger.Info("auto migrate done")

	// 4. redis
	rdb, err := redisPkg.InitRedis(cfg.Redis)
	if err != nil {
		logger.Fatal("connect redis failed", zap.Error(err))
	}
	defer func() {
		if err := redisPkg.Close(); err != nil {
			logger.Error("close redis failed", zap.Error(err))
		}
	}()
	logger.Info("redis connected")

	if err := os.MkdirAll(cfg.Media.Dir, 0755); err != nil {
		logger.Fatal("create media dir failed", zap.Error(err))
	}

	// 5. services
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT)
	sessionSvc := service.NewSessionService(jwtSvc, redisPkg.NewSessionStore(rdb, jwtSvc.ExpireAfter()))

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 6. routes
	router, err := handler.NewRouter(handler.Deps{
		Config:   cfg,
		Users:    service.NewUserService(userRepo, roomRepo, topicRepo, messageRepo),
		Rooms:    service.NewRoomService(roomRepo, topicRepo, messageRepo),
		Messages: service.NewMessageService(messageRepo),
		Sessions: sessionSvc,
		Flashes:  redisPkg.NewFlashStore(rdb),
		Avatars:  service.NewAvatarStore(cfg.Media.Dir, cfg.Media.MaxUploadSize),
		Checks: map[string]handler.HealthCheck{
			"database": func(context.Context) error { return dbPkg.HealthCheck() },
			"redis":    redisPkg.HealthCheck,
		},
	})
	if err != nil {
		logger.Fatal("build router failed", zap.Error(err))
	}

	// 7. HTTP server, behind proxy header handling and gzip
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.ProxyHeaders(handlers.CompressHandler(router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	// 8. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
