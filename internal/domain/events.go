package domain

// Event is a tagged outbound message. The transport layer wraps the payload
// in a {type, payload} envelope keyed by EventType.
type Event interface {
	EventType() string
}

// Outbound event type tags. These form the wire contract with clients.
const (
	EventQuizCreated       = "quizCreated"
	EventJoinedRoom        = "joinedRoom"
	EventJoinError         = "joinError"
	EventNewQuestion       = "newQuestion"
	EventQuestionTimeout   = "questionTimeout"
	EventQuizFinished      = "quizFinished"
	EventPlayerJoined      = "playerJoined"
	EventScoreUpdate       = "scoreUpdate"
	EventUpdateLeaderboard = "updateLeaderboard"
	EventHostDisconnected  = "hostDisconnected"
)

// QuizCreated is the host's acknowledgement for a new room.
type QuizCreated struct {
	RoomCode string `json:"roomCode"`
	QuizID   string `json:"quizId"`
}

func (QuizCreated) EventType() string { return EventQuizCreated }

// JoinedRoom is sent to a player on a successful join.
type JoinedRoom struct {
	RoomCode  string   `json:"roomCode"`
	QuizTitle string   `json:"quizTitle"`
	Players   []Player `json:"players"`
}

func (JoinedRoom) EventType() string { return EventJoinedRoom }

// JoinError is sent to a player whose join was rejected.
type JoinError struct {
	Message string `json:"message"`
}

func (JoinError) EventType() string { return EventJoinError }

// NewQuestion announces the active question to the whole room. The correct
// answer is deliberately withheld until the question times out.
type NewQuestion struct {
	Index            int      `json:"index"`
	Prompt           string   `json:"prompt"`
	Choices          []string `json:"choices"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
	TotalQuestions   int      `json:"totalQuestions"`
}

func (NewQuestion) EventType() string { return EventNewQuestion }

// QuestionTimeout reveals the correct answer with a raw (unsorted) score
// snapshot, keyed by client ID, when the time limit elapses.
type QuestionTimeout struct {
	Index         int               `json:"index"`
	CorrectAnswer string            `json:"correctAnswer"`
	Results       map[string]Player `json:"results"`
}

func (QuestionTimeout) EventType() string { return EventQuestionTimeout }

// QuizFinished carries the final ranking, best score first.
type QuizFinished struct {
	Leaderboard []Player `json:"leaderboard"`
}

func (QuizFinished) EventType() string { return EventQuizFinished }

// PlayerJoined keeps every display in sync whenever the roster changes.
type PlayerJoined struct {
	Players   []Player `json:"players"`
	QuizTitle string   `json:"quizTitle"`
}

func (PlayerJoined) EventType() string { return EventPlayerJoined }

// ScoreUpdate is unicast to a submitter with their new total.
type ScoreUpdate struct {
	Score int `json:"score"`
}

func (ScoreUpdate) EventType() string { return EventScoreUpdate }

// UpdateLeaderboard is unicast to the host after each accepted answer,
// sorted by score descending.
type UpdateLeaderboard struct {
	Entries []Player `json:"entries"`
}

func (UpdateLeaderboard) EventType() string { return EventUpdateLeaderboard }

// HostDisconnected tells remaining players their room is gone.
type HostDisconnected struct{}

func (HostDisconnected) EventType() string { return EventHostDisconnected }
