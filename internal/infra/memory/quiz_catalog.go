package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// QuizCatalog is the in-memory implementation of app.QuizCatalog. A quiz
// lives exactly as long as its session; there is no sharing across rooms.
type QuizCatalog struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizCatalog() *QuizCatalog {
	return &QuizCatalog{
		quizzes: make(map[string]domain.Quiz),
	}
}

func (c *QuizCatalog) Put(_ context.Context, quiz domain.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ID] = quiz
	return nil
}

func (c *QuizCatalog) Get(_ context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quiz, ok := c.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (c *QuizCatalog) Remove(_ context.Context, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quizzes, quizID)
	return nil
}
