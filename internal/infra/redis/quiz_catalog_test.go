package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

func TestQuizCatalogMirrorsToRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	catalog := NewQuizCatalog(newClient(mr), time.Minute)

	quiz := sampleQuiz()
	if err := catalog.Put(ctx, quiz); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected quiz mirrored into redis")
	}

	got, err := catalog.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != quiz.Title || len(got.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", got)
	}

	if err := catalog.Remove(ctx, "quiz-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected redis key removed")
	}
	if _, err := catalog.Get(ctx, "quiz-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizCatalogFallsBackToMirror(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)

	// Seed through one catalog, read through a fresh one with a cold local map.
	if err := NewQuizCatalog(client, time.Minute).Put(ctx, sampleQuiz()); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := NewQuizCatalog(client, time.Minute).Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get from mirror: %v", err)
	}
	if got.ID != "quiz-1" || got.Questions[0].CorrectAnswer != "4" {
		t.Fatalf("unexpected quiz from mirror %+v", got)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Sample",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4", "5"}, CorrectAnswer: "4", TimeLimitSeconds: 10},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
