package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

// QuizCatalog keeps quizzes authoritative in process memory while mirroring
// each payload into Redis with a TTL. The mirror gives operators visibility
// into live quiz content and lets a crashed process's keys age out on their
// own.
type QuizCatalog struct {
	client *redis.Client
	ttl    time.Duration

	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizCatalog(client *redis.Client, ttl time.Duration) *QuizCatalog {
	return &QuizCatalog{
		client:  client,
		ttl:     ttl,
		quizzes: make(map[string]domain.Quiz),
	}
}

func (c *QuizCatalog) Put(ctx context.Context, quiz domain.Quiz) error {
	c.mu.Lock()
	c.quizzes[quiz.ID] = quiz
	c.mu.Unlock()

	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	// best-effort mirror
	_ = c.client.Set(ctx, c.key(quiz.ID), data, c.ttl).Err()
	return nil
}

func (c *QuizCatalog) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	quiz, ok := c.quizzes[quizID]
	c.mu.RUnlock()
	if ok {
		return quiz, nil
	}

	data, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (c *QuizCatalog) Remove(ctx context.Context, quizID string) error {
	c.mu.Lock()
	delete(c.quizzes, quizID)
	c.mu.Unlock()
	_ = c.client.Del(ctx, c.key(quizID)).Err()
	return nil
}

func (c *QuizCatalog) key(quizID string) string {
	return "quiz:" + quizID
}
