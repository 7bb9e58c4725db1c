package app

import (
	"context"

	"cipherquiz-service/internal/domain"
)

// RoomStore persists room snapshots keyed by room code, plus an archive log
// for finished and closed rooms. Writes are full-snapshot replacements; a
// store never mutates a room it was handed.
//
// Get and GetArchived return domain.ErrRoomNotFound for unknown codes.
type RoomStore interface {
	Get(ctx context.Context, code string) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	Remove(ctx context.Context, code string) error
	Archive(ctx context.Context, room *domain.Room) error
	ListArchived(ctx context.Context) ([]*domain.Room, error)
	GetArchived(ctx context.Context, code string) (*domain.Room, error)
}

// QuestionBuilder assembles a scored, shuffled question set for a config.
type QuestionBuilder interface {
	BuildSet(ctx context.Context, cfg domain.QuizConfig) ([]*domain.QuestionState, error)
}
