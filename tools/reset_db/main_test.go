package main

import (
	"testing"

	"forum-system/internal/model"
	"forum-system/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	db := testutil.NewDB(t)

	user := &model.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	topic := &model.Topic{Name: "golang"}
	require.NoError(t, db.Create(topic).Error)
	room := &model.Room{HostID: user.ID, TopicID: topic.ID, Name: "Gophers"}
	require.NoError(t, db.Omit("Host", "Topic", "Participants").Create(room).Error)
	require.NoError(t, db.Exec("INSERT INTO room_participant (room_id, user_id) VALUES (?, ?)", room.ID, user.ID).Error)
	require.NoError(t, db.Omit("User", "Room").Create(&model.Message{UserID: user.ID, RoomID: room.ID, Body: "hi"}).Error)

	require.NoError(t, reset(db, "sqlite"))

	for _, table := range tables {
		var count int64
		require.NoError(t, db.Table(table).Count(&count).Error)
		assert.Zero(t, count, table)
	}

	assert.Error(t, resetSequence(db, "oracle", "room"))
}
