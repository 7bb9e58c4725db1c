// Package redis persists room snapshots and caches custom questions in
// Redis so rooms survive a process restart.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"cipherquiz-service/internal/domain"
)

// RoomStore keeps each room as one JSON blob: SET room:{code} {snapshot}.
// Writes replace the whole value, so a crash mid-quiz loses at most the
// latest operation and never a partial room. Archived rooms live under a
// separate key prefix and are never expired.
type RoomStore struct {
	client *redis.Client
}

func NewRoomStore(client *redis.Client) *RoomStore {
	return &RoomStore{client: client}
}

func (s *RoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	return s.get(ctx, s.roomKey(code))
}

func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	return s.put(ctx, s.roomKey(room.Code), room)
}

func (s *RoomStore) Update(ctx context.Context, room *domain.Room) error {
	return s.put(ctx, s.roomKey(room.Code), room)
}

func (s *RoomStore) Remove(ctx context.Context, code string) error {
	if err := s.client.Del(ctx, s.roomKey(code)).Err(); err != nil {
		return fmt.Errorf("del room %s: %w", code, err)
	}
	return nil
}

func (s *RoomStore) Archive(ctx context.Context, room *domain.Room) error {
	return s.put(ctx, s.archiveKey(room.Code), room)
}

func (s *RoomStore) GetArchived(ctx context.Context, code string) (*domain.Room, error) {
	return s.get(ctx, s.archiveKey(code))
}

// ListArchived scans the archive prefix. The archive is small (one entry
// per closed room), so a full SCAN per listing is fine.
func (s *RoomStore) ListArchived(ctx context.Context) ([]*domain.Room, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.archiveKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}
	sort.Strings(keys)

	rooms := make([]*domain.Room, 0, len(keys))
	for _, key := range keys {
		room, err := s.get(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrRoomNotFound) {
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *RoomStore) get(ctx context.Context, key string) (*domain.Room, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &room, nil
}

func (s *RoomStore) put(ctx context.Context, key string, room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RoomStore) roomKey(code string) string {
	return "room:active:" + code
}

func (s *RoomStore) archiveKey(code string) string {
	return "room:archive:" + code
}
