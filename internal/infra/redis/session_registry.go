package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/infra/memory"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - Sessions themselves stay in process memory; all mutation runs through
//     the in-process state machine.
//   - Redis holds a liveness marker per room so operators can list active
//     rooms, and so stale markers expire after a crash.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.SessionRegistry
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client: client,
		ttl:    ttl,
		local:  memory.NewSessionRegistry(),
	}
}

func (r *SessionRegistry) Put(roomCode string, session *app.Session) error {
	if err := r.local.Put(roomCode, session); err != nil {
		return err
	}
	_ = r.client.Set(context.Background(), r.key(roomCode), session.QuizID(), r.ttl).Err()
	return nil
}

func (r *SessionRegistry) Lookup(roomCode string) (*app.Session, bool) {
	return r.local.Lookup(roomCode)
}

func (r *SessionRegistry) Remove(roomCode string) {
	r.local.Remove(roomCode)
	_ = r.client.Del(context.Background(), r.key(roomCode)).Err()
}

func (r *SessionRegistry) Each(fn func(roomCode string, session *app.Session) bool) {
	r.local.Each(fn)
}

func (r *SessionRegistry) key(roomCode string) string {
	return "quiz:room:" + roomCode
}

var _ app.SessionRegistry = (*SessionRegistry)(nil)
