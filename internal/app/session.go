package app

import (
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"live-quiz-service/internal/domain"
)

// Session is the live state of one room: roster, per-participant answer
// history, question progression, and the (at most one) armed question timer.
// All mutable fields are guarded by mu; every transition for a room is
// serialized behind it, so unrelated rooms never contend.
type Session struct {
	roomCode string
	quizID   string
	title    string
	hostID   string
	total    int

	mu       sync.Mutex
	current  int // -1 lobby, 0..total-1 in question, total finished
	roster   []string
	entries  map[string]*participant
	timer    *armedTimer
	timerGen uint64
	closed   bool
}

type participant struct {
	name    string
	score   int
	answers []domain.AnswerRecord
}

// armedTimer pairs a one-shot timer with its cancellation channel and the
// generation it was armed under. A fire whose generation no longer matches
// the session's is stale and must be dropped.
type armedTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
	gen    uint64
}

func newSession(roomCode string, quiz domain.Quiz, hostID string) *Session {
	return &Session{
		roomCode: roomCode,
		quizID:   quiz.ID,
		title:    quiz.Title,
		hostID:   hostID,
		total:    len(quiz.Questions),
		current:  -1,
		entries:  make(map[string]*participant),
	}
}

// RoomCode returns the session's room code. Immutable after creation.
func (s *Session) RoomCode() string { return s.roomCode }

// QuizID returns the backing quiz identifier. Immutable after creation.
func (s *Session) QuizID() string { return s.quizID }

// Title returns the denormalized quiz title. Immutable after creation.
func (s *Session) Title() string { return s.title }

// HostID returns the client identity that owns start/advance control.
func (s *Session) HostID() string { return s.hostID }

// CurrentIndex returns the active question index (-1 before start).
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Players returns the roster in join order.
func (s *Session) Players() []domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersLocked()
}

func (s *Session) playersLocked() []domain.Player {
	players := make([]domain.Player, 0, len(s.roster))
	for _, id := range s.roster {
		p := s.entries[id]
		players = append(players, domain.Player{ClientID: id, Name: p.name, Score: p.score})
	}
	return players
}

// sortedLeaderboardLocked ranks players by score descending. The stable sort
// over the join-ordered roster keeps ties in original join order.
func (s *Session) sortedLeaderboardLocked() []domain.Player {
	players := s.playersLocked()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return players
}

func (s *Session) resultsLocked() map[string]domain.Player {
	results := make(map[string]domain.Player, len(s.entries))
	for id, p := range s.entries {
		results[id] = domain.Player{ClientID: id, Name: p.name, Score: p.score}
	}
	return results
}

func (s *Session) addPlayerLocked(clientID, name string) {
	if p, ok := s.entries[clientID]; ok {
		// Re-join by the same identity refreshes the display name only.
		p.name = name
		return
	}
	s.roster = append(s.roster, clientID)
	s.entries[clientID] = &participant{name: name}
}

func (s *Session) removePlayerLocked(clientID string) {
	if _, ok := s.entries[clientID]; !ok {
		return
	}
	delete(s.entries, clientID)
	for i, id := range s.roster {
		if id == clientID {
			s.roster = append(s.roster[:i], s.roster[i+1:]...)
			break
		}
	}
}

// hasAnsweredLocked reports whether the participant already holds an answer
// record for the given question index.
func (s *Session) hasAnsweredLocked(clientID string, index int) bool {
	p, ok := s.entries[clientID]
	if !ok {
		return false
	}
	for _, rec := range p.answers {
		if rec.QuestionIndex == index {
			return true
		}
	}
	return false
}

// cancelTimerLocked stops and discards the armed question timer, if any.
// Safe to call when no timer is armed, after the timer fired, or repeatedly.
func (s *Session) cancelTimerLocked() {
	if s.timer == nil {
		return
	}
	stopAndDrainTimer(s.timer.timer)
	close(s.timer.cancel)
	s.timer = nil
}

// stopAndDrainTimer stops a timer and drains its channel if it already
// fired, per the time.Timer.Stop contract.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
