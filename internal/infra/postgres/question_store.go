// Package postgres backs the custom-question authoring store with Postgres.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"cipherquiz-service/internal/domain"
)

// QuestionStore reads and writes custom questions. Room snapshots never go
// through Postgres; only authored question templates live here.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) CustomQuestions(ctx context.Context) ([]domain.CustomQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, topic, mode, key, source_text, analysis, created_at
		 FROM custom_questions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list custom questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.CustomQuestion
	for rows.Next() {
		var cq domain.CustomQuestion
		if err := rows.Scan(&cq.ID, &cq.Topic, &cq.Mode, &cq.Key, &cq.Text, &cq.Analysis, &cq.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom question: %w", err)
		}
		questions = append(questions, cq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list custom questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) Add(ctx context.Context, cq domain.CustomQuestion) (domain.CustomQuestion, error) {
	if cq.ID == "" {
		cq.ID = uuid.New().String()
	}
	cq.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO custom_questions (id, topic, mode, key, source_text, analysis, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cq.ID, cq.Topic, cq.Mode, cq.Key, cq.Text, cq.Analysis, cq.CreatedAt)
	if err != nil {
		return domain.CustomQuestion{}, fmt.Errorf("insert custom question: %w", err)
	}
	return cq, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM custom_questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete custom question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomQuestionNotFound
	}
	return nil
}
