package memory

import (
	"context"
	"testing"

	"live-quiz-service/internal/domain"
)

func TestQuizCatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	catalog := NewQuizCatalog()

	quiz := domain.Quiz{ID: "quiz-1", Title: "Sample", Questions: []domain.Question{
		{Prompt: "What is 2 + 2?", Choices: []string{"3", "4"}, CorrectAnswer: "4", TimeLimitSeconds: 10},
	}}
	if err := catalog.Put(ctx, quiz); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := catalog.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Sample" || len(got.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", got)
	}

	if err := catalog.Remove(ctx, "quiz-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := catalog.Get(ctx, "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
