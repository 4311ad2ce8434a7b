package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	infraredis "live-quiz-service/internal/infra/redis"
)

// recordingGateway collects every outbound event so assertions can run
// without a real websocket layer.
type recordingGateway struct {
	mu     sync.Mutex
	events []domain.Event
}

func (g *recordingGateway) Subscribe(string, string)   {}
func (g *recordingGateway) Unsubscribe(string, string) {}

func (g *recordingGateway) BroadcastToRoom(_ string, event domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
}

func (g *recordingGateway) SendToClient(_ string, event domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
}

func (g *recordingGateway) lastOfType(tag string) (domain.Event, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.events) - 1; i >= 0; i-- {
		if g.events[i].EventType() == tag {
			return g.events[i], true
		}
	}
	return nil, false
}

func TestQuizLifecycleAgainstRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	registry := infraredis.NewSessionRegistry(client, 5*time.Minute)
	catalog := infraredis.NewQuizCatalog(client, 5*time.Minute)
	gateway := &recordingGateway{}
	service := app.NewGameService(registry, catalog, gateway, app.Options{})

	code, quizID, err := service.CreateQuiz(ctx, "host", "Integration Quiz", []domain.Question{
		{Prompt: "What is 2 + 2?", Choices: []string{"3", "4", "5"}, CorrectAnswer: "4", TimeLimitSeconds: 60},
		{Prompt: "Capital of France?", Choices: []string{"Paris", "Rome"}, CorrectAnswer: "Paris", TimeLimitSeconds: 60},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if n, err := client.Exists(ctx, "quiz:room:"+code).Result(); err != nil || n != 1 {
		t.Fatalf("expected room liveness key, exists=%d err=%v", n, err)
	}
	if n, err := client.Exists(ctx, "quiz:"+quizID).Result(); err != nil || n != 1 {
		t.Fatalf("expected quiz mirror key, exists=%d err=%v", n, err)
	}

	if err := service.JoinQuiz(ctx, code, "p1", "Alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := service.JoinQuiz(ctx, strings.ToLower(code), "p2", "Bob"); err != nil {
		t.Fatalf("join bob with lowercase code: %v", err)
	}

	if err := service.StartQuiz(ctx, code, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := service.SubmitAnswer(ctx, code, "p2", "4"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	board, ok := gateway.lastOfType(domain.EventUpdateLeaderboard)
	if !ok {
		t.Fatalf("expected a leaderboard update")
	}
	entries := board.(domain.UpdateLeaderboard).Entries
	if len(entries) != 2 || entries[0].Name != "Bob" || entries[0].Score != 10 {
		t.Fatalf("expected bob leading with 10 points, got %+v", entries)
	}

	service.Disconnect(ctx, "host")
	if n, err := client.Exists(ctx, "quiz:room:"+code).Result(); err != nil || n != 0 {
		t.Fatalf("expected liveness key removed, exists=%d err=%v", n, err)
	}
	if n, err := client.Exists(ctx, "quiz:"+quizID).Result(); err != nil || n != 0 {
		t.Fatalf("expected quiz mirror removed, exists=%d err=%v", n, err)
	}
	if _, ok := gateway.lastOfType(domain.EventHostDisconnected); !ok {
		t.Fatalf("expected hostDisconnected broadcast")
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
