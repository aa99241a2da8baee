package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	FlashKeyPrefix = "forum:flash:"
	FlashTTL       = time.Hour
	maxFlashes     = 20
)

// Flash one-shot message shown on the next rendered page
type Flash struct {
	Level string `json:"level"` // error, success, info
	Text  string `json:"text"`
}

// FlashStore queues flashes per browser, keyed by a cookie id
type FlashStore struct {
	client *redis.Client
}

func NewFlashStore(client *redis.Client) *FlashStore {
	return &FlashStore{client: client}
}

func flashKey(id string) string {
	return FlashKeyPrefix + id
}

// Add appends a flash to the queue of id
func (s *FlashStore) Add(ctx context.Context, id string, flash Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}

	key := flashKey(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -maxFlashes, -1)
		pipe.Expire(ctx, key, FlashTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add flash: %w", err)
	}
	return nil
}

// Pop returns and clears every queued flash of id, oldest first
func (s *FlashStore) Pop(ctx context.Context, id string) ([]Flash, error) {
	if id == "" {
		return nil, nil
	}

	key := flashKey(id)
	var rng *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rng = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}

	var flashes []Flash
	for _, raw := range rng.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue // skip entries we cannot decode
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
