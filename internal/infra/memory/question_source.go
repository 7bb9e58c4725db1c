package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cipherquiz-service/internal/domain"
)

// QuestionStore is an in-memory custom-question authoring store. It serves
// both as the question source for rooms and as the add/delete surface.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.CustomQuestion
	now       func() time.Time
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{now: time.Now}
}

// Seed replaces the whole question list. Test helper.
func (s *QuestionStore) Seed(questions []domain.CustomQuestion) {
	s.mu.Lock()
	s.questions = append([]domain.CustomQuestion(nil), questions...)
	s.mu.Unlock()
}

func (s *QuestionStore) CustomQuestions(ctx context.Context) ([]domain.CustomQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CustomQuestion(nil), s.questions...), nil
}

func (s *QuestionStore) Add(ctx context.Context, cq domain.CustomQuestion) (domain.CustomQuestion, error) {
	if cq.ID == "" {
		cq.ID = uuid.New().String()
	}
	cq.CreatedAt = s.now()
	s.mu.Lock()
	s.questions = append(s.questions, cq)
	s.mu.Unlock()
	return cq, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cq := range s.questions {
		if cq.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return nil
		}
	}
	return domain.ErrCustomQuestionNotFound
}
