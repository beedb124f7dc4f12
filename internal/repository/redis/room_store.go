package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const roomKeyPrefix = "room:"

func roomKey(code string) string {
	return roomKeyPrefix + code
}

// RoomStore keeps the latest snapshot of every live room so it can be watched or restored.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RoomStore{client: client, ttl: ttl}
}

func (s *RoomStore) Save(ctx context.Context, snap *domain.RoomSnapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, roomKey(snap.Code), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save room %s: %w", snap.Code, err)
	}
	return nil
}

// Load returns (nil, nil) when the room is unknown or expired.
func (s *RoomStore) Load(ctx context.Context, code string) (*domain.RoomSnapshot, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}
	return decodeSnapshot(data)
}

func (s *RoomStore) Delete(ctx context.Context, code string) error {
	if err := s.client.Del(ctx, roomKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", code, err)
	}
	return nil
}

func encodeSnapshot(snap *domain.RoomSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}
	return &snap, nil
}
