package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playmines/minesweeper-backend/internal/apperror"
	"github.com/playmines/minesweeper-backend/internal/entity"
)

type RoomRepository interface {
	Save(ctx context.Context, roomID string, snapshot entity.RoomSnapshot) error
	GetByID(ctx context.Context, roomID string) (entity.RoomSnapshot, error)
	DeleteByID(ctx context.Context, roomID string) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Save(ctx context.Context, roomID string, snapshot entity.RoomSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal room snapshot: %w", err)
	}

	roomKey := "room:" + roomID
	if err = that.client.Set(ctx, roomKey, snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room snapshot: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, roomID string) (entity.RoomSnapshot, error) {
	roomKey := "room:" + roomID

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return entity.RoomSnapshot{}, apperror.ErrRoomNotFound
	}

	if err != nil {
		return entity.RoomSnapshot{}, fmt.Errorf("failed to get room by ID: %w", err)
	}

	var snapshot entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return entity.RoomSnapshot{}, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}

	return snapshot, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, roomID string) error {
	roomKey := "room:" + roomID

	if err := that.client.Del(ctx, roomKey).Err(); err != nil {
		return fmt.Errorf("failed to delete room by ID: %w", err)
	}

	return nil
}
