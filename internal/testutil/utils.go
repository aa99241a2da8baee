package testutil

import (
	"fmt"
	"testing"

	"forum-system/config"
	"forum-system/internal/model"
	dbPkg "forum-system/pkg/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := dbPkg.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewRedis returns a client connected to an in-process redis server
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, srv
}

// CountMessages number of messages stored for roomID
func CountMessages(t *testing.T, db *gorm.DB, roomID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Message{}).Where("room_id = ?", roomID).Count(&count).Error)
	return count
}

// ParticipantIDs user ids linked to roomID, ascending
func ParticipantIDs(t *testing.T, db *gorm.DB, roomID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Table("room_participant").
		Where("room_id = ?", roomID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error)
	return ids
}

// CountTopics number of topics stored
func CountTopics(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Topic{}).Count(&count).Error)
	return count
}
