package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"cipherquiz-service/internal/domain"
)

const questionCacheKey = "customquestions:all"

// QuestionLoader fetches the custom-question list from the backing store
// (postgres in production).
type QuestionLoader interface {
	CustomQuestions(ctx context.Context) ([]domain.CustomQuestion, error)
}

// QuestionSource caches the whole custom-question list in Redis as one JSON
// value and falls back to the loader on a miss. Cache fills go through
// singleflight so a cold cache under concurrent quiz starts hits the
// database once.
type QuestionSource struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionSource(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionSource {
	return &QuestionSource{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) CustomQuestions(ctx context.Context) ([]domain.CustomQuestion, error) {
	if questions, ok := s.fromCache(ctx); ok {
		return questions, nil
	}

	result, err, _ := s.sf.Do(questionCacheKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if questions, ok := s.fromCache(ctx); ok {
			return questions, nil
		}

		questions, err := s.loader.CustomQuestions(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("encode custom questions: %w", err)
		}
		// best-effort fill
		_ = s.client.Set(ctx, questionCacheKey, raw, s.ttlWithJitter()).Err()

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CustomQuestion), nil
}

// Invalidate drops the cached list. Called after authoring changes.
func (s *QuestionSource) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, questionCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate custom questions: %w", err)
	}
	return nil
}

func (s *QuestionSource) fromCache(ctx context.Context) ([]domain.CustomQuestion, bool) {
	raw, err := s.client.Get(ctx, questionCacheKey).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return nil, false
	}
	var questions []domain.CustomQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (s *QuestionSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
