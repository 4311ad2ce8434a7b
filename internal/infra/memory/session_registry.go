package memory

import (
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionRegistry is the in-memory implementation of app.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

// Put stores a session under roomCode, refusing to overwrite a live room.
func (r *SessionRegistry) Put(roomCode string, session *app.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[roomCode]; ok {
		return domain.ErrRoomCodeTaken
	}
	r.sessions[roomCode] = session
	return nil
}

func (r *SessionRegistry) Lookup(roomCode string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[roomCode]
	return session, ok
}

func (r *SessionRegistry) Remove(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, roomCode)
}

// Each visits a snapshot of the live sessions until fn returns false.
// Iterating a snapshot lets fn remove rooms without deadlocking.
func (r *SessionRegistry) Each(fn func(roomCode string, session *app.Session) bool) {
	r.mu.RLock()
	snapshot := make(map[string]*app.Session, len(r.sessions))
	for code, session := range r.sessions {
		snapshot[code] = session
	}
	r.mu.RUnlock()

	for code, session := range snapshot {
		if !fn(code, session) {
			return
		}
	}
}
