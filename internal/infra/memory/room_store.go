// Package memory holds the in-process store implementations used for tests
// and single-node deployments without Redis.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"cipherquiz-service/internal/domain"
)

// RoomStore keeps room snapshots as serialized JSON blobs. Serializing on
// every write keeps the snapshot-replace semantics identical to the Redis
// store: a stored room never aliases the caller's live object.
type RoomStore struct {
	mu       sync.RWMutex
	rooms    map[string][]byte
	archived map[string][]byte
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:    make(map[string][]byte),
		archived: make(map[string][]byte),
	}
}

func (s *RoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	s.mu.RLock()
	raw, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return decodeRoom(raw)
}

func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	return s.put(room)
}

func (s *RoomStore) Update(ctx context.Context, room *domain.Room) error {
	return s.put(room)
}

func (s *RoomStore) put(room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	s.mu.Lock()
	s.rooms[room.Code] = raw
	s.mu.Unlock()
	return nil
}

func (s *RoomStore) Remove(ctx context.Context, code string) error {
	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
	return nil
}

func (s *RoomStore) Archive(ctx context.Context, room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	s.mu.Lock()
	s.archived[room.Code] = raw
	s.mu.Unlock()
	return nil
}

func (s *RoomStore) ListArchived(ctx context.Context) ([]*domain.Room, error) {
	s.mu.RLock()
	codes := make([]string, 0, len(s.archived))
	for code := range s.archived {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	raws := make([][]byte, len(codes))
	for i, code := range codes {
		raws[i] = s.archived[code]
	}
	s.mu.RUnlock()

	rooms := make([]*domain.Room, len(raws))
	for i, raw := range raws {
		room, err := decodeRoom(raw)
		if err != nil {
			return nil, err
		}
		rooms[i] = room
	}
	return rooms, nil
}

func (s *RoomStore) GetArchived(ctx context.Context, code string) (*domain.Room, error) {
	s.mu.RLock()
	raw, ok := s.archived[code]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return decodeRoom(raw)
}

func decodeRoom(raw []byte) (*domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}
