package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"live-quiz-service/internal/domain"
)

const (
	// DefaultGraceDelay is how long the correct answer stays on screen after
	// a timeout before the next question replaces it.
	DefaultGraceDelay = 2500 * time.Millisecond
	// DefaultPointsPerCorrect is the flat award for a correct answer.
	DefaultPointsPerCorrect = 10

	maxCodeAttempts = 16
)

// SessionRegistry stores at most one live session per room code.
// Put must fail with domain.ErrRoomCodeTaken instead of overwriting.
type SessionRegistry interface {
	Put(roomCode string, session *Session) error
	Lookup(roomCode string) (*Session, bool)
	Remove(roomCode string)
	Each(fn func(roomCode string, session *Session) bool)
}

// QuizCatalog stores authored quizzes by ID for the lifetime of their session.
type QuizCatalog interface {
	Put(ctx context.Context, quiz domain.Quiz) error
	Get(ctx context.Context, quizID string) (domain.Quiz, error)
	Remove(ctx context.Context, quizID string) error
}

// Broadcaster is the delivery side of the transport layer: room membership
// plus fan-out to a room or to one connected client. Implementations must
// never block the caller.
type Broadcaster interface {
	Subscribe(clientID, roomCode string)
	Unsubscribe(clientID, roomCode string)
	BroadcastToRoom(roomCode string, event domain.Event)
	SendToClient(clientID string, event domain.Event)
}

// Options tunes a GameService. Zero values select the defaults.
type Options struct {
	GraceDelay       time.Duration
	PointsPerCorrect int
	Clock            clockwork.Clock
}

// GameService contains the quiz session use cases: room creation, joining,
// question progression (manual and timer-driven), scoring, and teardown.
type GameService struct {
	rooms      SessionRegistry
	quizzes    QuizCatalog
	gateway    Broadcaster
	clock      clockwork.Clock
	graceDelay time.Duration
	points     int
}

func NewGameService(rooms SessionRegistry, quizzes QuizCatalog, gateway Broadcaster, opts Options) *GameService {
	if opts.GraceDelay <= 0 {
		opts.GraceDelay = DefaultGraceDelay
	}
	if opts.PointsPerCorrect <= 0 {
		opts.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &GameService{
		rooms:      rooms,
		quizzes:    quizzes,
		gateway:    gateway,
		clock:      opts.Clock,
		graceDelay: opts.GraceDelay,
		points:     opts.PointsPerCorrect,
	}
}

// CreateQuiz stores the quiz, creates a lobby session bound to hostID under a
// fresh room code, and acknowledges the host. Code generation retries on
// collision rather than overwriting a live room.
func (g *GameService) CreateQuiz(ctx context.Context, hostID string, title string, questions []domain.Question) (string, string, error) {
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: questions,
	}

	var roomCode string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return "", "", fmt.Errorf("create quiz: no free room code after %d attempts", maxCodeAttempts)
		}
		code, err := newRoomCode(roomCodeLength)
		if err != nil {
			return "", "", fmt.Errorf("create quiz: %w", err)
		}
		if err := g.rooms.Put(code, newSession(code, quiz, hostID)); err == domain.ErrRoomCodeTaken {
			continue
		} else if err != nil {
			return "", "", fmt.Errorf("create quiz: %w", err)
		}
		roomCode = code
		break
	}

	if err := g.quizzes.Put(ctx, quiz); err != nil {
		g.rooms.Remove(roomCode)
		return "", "", fmt.Errorf("create quiz: %w", err)
	}

	g.gateway.Subscribe(hostID, roomCode)
	g.gateway.SendToClient(hostID, domain.QuizCreated{RoomCode: roomCode, QuizID: quiz.ID})
	log.Info().Str("room", roomCode).Str("quiz", quiz.ID).Int("questions", len(questions)).Msg("room created")
	return roomCode, quiz.ID, nil
}

// RoomExists reports whether a live session matches the code
// (case-insensitive).
func (g *GameService) RoomExists(roomCode string) bool {
	_, ok := g.rooms.Lookup(NormalizeRoomCode(roomCode))
	return ok
}

// JoinQuiz adds a player to a room. Room codes are case-insensitive. Unknown
// codes are reported back to the joining client as a joinError.
func (g *GameService) JoinQuiz(ctx context.Context, roomCode, clientID, name string) error {
	code := NormalizeRoomCode(roomCode)
	session, ok := g.rooms.Lookup(code)
	if !ok {
		g.gateway.SendToClient(clientID, domain.JoinError{Message: "room not found"})
		return domain.ErrRoomNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		g.gateway.SendToClient(clientID, domain.JoinError{Message: "room not found"})
		return domain.ErrRoomNotFound
	}

	session.addPlayerLocked(clientID, name)
	players := session.playersLocked()

	g.gateway.Subscribe(clientID, code)
	g.gateway.SendToClient(clientID, domain.JoinedRoom{RoomCode: code, QuizTitle: session.title, Players: players})
	g.gateway.BroadcastToRoom(code, domain.PlayerJoined{Players: players, QuizTitle: session.title})
	log.Info().Str("room", code).Str("client", clientID).Str("name", name).Msg("player joined")
	return nil
}

// StartQuiz moves a lobby to its first question. Only the host may start;
// starting an already-started room is an idempotent no-op so duplicate host
// clicks cannot re-arm the first question.
func (g *GameService) StartQuiz(ctx context.Context, roomCode, clientID string) error {
	code := NormalizeRoomCode(roomCode)
	session, ok := g.rooms.Lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if session.hostID != clientID {
		return domain.ErrNotHost
	}

	quiz, err := g.quizzes.Get(ctx, session.quizID)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || session.current != -1 {
		return nil
	}
	session.current = 0
	g.broadcastQuestionLocked(session, quiz, 0)
	log.Info().Str("room", code).Msg("quiz started")
	return nil
}

// NextQuestion advances the room on the host's command. Out-of-range
// advances finish the quiz; advancing a finished room does nothing.
func (g *GameService) NextQuestion(ctx context.Context, roomCode, clientID string) error {
	code := NormalizeRoomCode(roomCode)
	session, ok := g.rooms.Lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if session.hostID != clientID {
		return domain.ErrNotHost
	}
	g.advanceFrom(ctx, code, session.CurrentIndex())
	return nil
}

// advanceFrom performs one advance step, but only if the session still sits
// at expectedIndex. Both the manual next-question path and the post-timeout
// grace delay funnel through here; the index guard collapses their race into
// at most one advance per question.
func (g *GameService) advanceFrom(ctx context.Context, roomCode string, expectedIndex int) {
	session, ok := g.rooms.Lookup(roomCode)
	if !ok {
		return
	}
	if expectedIndex < 0 {
		// Not started; only StartQuiz leaves the lobby.
		return
	}

	quiz, err := g.quizzes.Get(ctx, session.quizID)
	if err != nil {
		log.Warn().Str("room", roomCode).Err(err).Msg("advance dropped, quiz unavailable")
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || session.current != expectedIndex || session.current >= session.total {
		return
	}

	session.cancelTimerLocked()
	session.current++

	if session.current < session.total {
		g.broadcastQuestionLocked(session, quiz, session.current)
		return
	}

	final := session.sortedLeaderboardLocked()
	g.gateway.BroadcastToRoom(roomCode, domain.QuizFinished{Leaderboard: final})
	log.Info().Str("room", roomCode).Int("players", len(final)).Msg("quiz finished")
}

// broadcastQuestionLocked announces question index to the room and arms its
// timer. Caller holds the session lock.
func (g *GameService) broadcastQuestionLocked(session *Session, quiz domain.Quiz, index int) {
	question := quiz.Questions[index]
	g.gateway.BroadcastToRoom(session.roomCode, domain.NewQuestion{
		Index:            index,
		Prompt:           question.Prompt,
		Choices:          question.Choices,
		TimeLimitSeconds: question.TimeLimitSeconds,
		TotalQuestions:   session.total,
	})
	g.armQuestionTimerLocked(session, index, time.Duration(question.TimeLimitSeconds)*time.Second)
}

// armQuestionTimerLocked replaces any armed timer with a fresh one-shot
// deadline for question index. Caller holds the session lock.
func (g *GameService) armQuestionTimerLocked(session *Session, index int, limit time.Duration) {
	session.cancelTimerLocked()
	session.timerGen++
	armed := &armedTimer{
		timer:  g.clock.NewTimer(limit),
		cancel: make(chan struct{}),
		gen:    session.timerGen,
	}
	session.timer = armed

	go func() {
		select {
		case <-armed.timer.Chan():
			g.questionTimedOut(session.roomCode, armed.gen, index)
		case <-armed.cancel:
		}
	}()
}

// questionTimedOut runs when a question timer fires. The generation and
// index guards drop stale fires against rooms that already advanced or were
// torn down.
func (g *GameService) questionTimedOut(roomCode string, gen uint64, index int) {
	session, ok := g.rooms.Lookup(roomCode)
	if !ok {
		return
	}

	quiz, err := g.quizzes.Get(context.Background(), session.quizID)
	if err != nil {
		log.Warn().Str("room", roomCode).Err(err).Msg("timeout dropped, quiz unavailable")
		return
	}

	session.mu.Lock()
	if session.closed || session.timer == nil || session.timer.gen != gen || session.current != index {
		session.mu.Unlock()
		return
	}
	session.timer = nil // spent until re-armed

	g.gateway.BroadcastToRoom(roomCode, domain.QuestionTimeout{
		Index:         index,
		CorrectAnswer: quiz.Questions[index].CorrectAnswer,
		Results:       session.resultsLocked(),
	})
	session.mu.Unlock()
	log.Info().Str("room", roomCode).Int("question", index).Msg("question timed out")

	// Grace delay so players can read the answer reveal. Deliberately not
	// cancelable by host action; advanceFrom's index guard absorbs the case
	// where the host advances manually inside the window.
	go func() {
		<-g.clock.After(g.graceDelay)
		g.advanceFrom(context.Background(), roomCode, index)
	}()
}

// SubmitAnswer records a player's answer for the active question. Duplicate
// submissions, unknown rooms, and unknown participants are silently ignored.
// The host gets the sorted leaderboard, the submitter their own score;
// nothing goes to other players mid-question.
func (g *GameService) SubmitAnswer(ctx context.Context, roomCode, clientID, answer string) error {
	code := NormalizeRoomCode(roomCode)
	session, ok := g.rooms.Lookup(code)
	if !ok {
		return nil
	}

	quiz, err := g.quizzes.Get(ctx, session.quizID)
	if err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || session.current < 0 || session.current >= session.total {
		return nil
	}
	entry, ok := session.entries[clientID]
	if !ok || session.hasAnsweredLocked(clientID, session.current) {
		return nil
	}

	question := quiz.Questions[session.current]
	correct := answer == question.CorrectAnswer
	entry.answers = append(entry.answers, domain.AnswerRecord{
		QuestionIndex: session.current,
		Answer:        answer,
		Correct:       correct,
	})
	if correct {
		entry.score += g.points
	}

	g.gateway.SendToClient(session.hostID, domain.UpdateLeaderboard{Entries: session.sortedLeaderboardLocked()})
	g.gateway.SendToClient(clientID, domain.ScoreUpdate{Score: entry.score})
	return nil
}

// Disconnect handles a transport-level drop of clientID. A host disconnect
// tears the whole room down; a player disconnect removes just that player.
// Identities that never joined a room are ignored.
func (g *GameService) Disconnect(ctx context.Context, clientID string) {
	g.rooms.Each(func(roomCode string, session *Session) bool {
		if session.hostID == clientID {
			session.mu.Lock()
			session.closed = true
			session.cancelTimerLocked()
			members := make([]string, 0, len(session.entries))
			for id := range session.entries {
				members = append(members, id)
			}
			session.mu.Unlock()

			g.rooms.Remove(roomCode)
			if err := g.quizzes.Remove(ctx, session.quizID); err != nil {
				log.Warn().Str("room", roomCode).Err(err).Msg("quiz removal failed")
			}
			g.gateway.BroadcastToRoom(roomCode, domain.HostDisconnected{})

			// Evict everyone from the hub room so a future room that draws
			// the same code cannot reach stale members.
			g.gateway.Unsubscribe(session.hostID, roomCode)
			for _, id := range members {
				g.gateway.Unsubscribe(id, roomCode)
			}
			log.Info().Str("room", roomCode).Msg("host disconnected, room closed")
			return false
		}

		session.mu.Lock()
		if _, ok := session.entries[clientID]; !ok {
			session.mu.Unlock()
			return true
		}
		session.removePlayerLocked(clientID)
		players := session.playersLocked()
		title := session.title
		session.mu.Unlock()

		g.gateway.Unsubscribe(clientID, roomCode)
		g.gateway.BroadcastToRoom(roomCode, domain.PlayerJoined{Players: players, QuizTitle: title})
		log.Info().Str("room", roomCode).Str("client", clientID).Msg("player disconnected")
		return false
	})
}
