package domain

// Question is a single prompt with its choices. CorrectAnswer and
// TimeLimitSeconds drive scoring and question timing; everything else is
// opaque payload relayed to clients.
type Question struct {
	Prompt           string   `json:"prompt"`
	Choices          []string `json:"choices"`
	CorrectAnswer    string   `json:"correctAnswer"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// Quiz is an authored question set. Immutable once created; owned by the
// catalog and referenced by its session until the room is torn down.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Player is the wire-level view of a roster entry.
type Player struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// AnswerRecord captures one accepted submission. At most one record exists
// per participant per question index.
type AnswerRecord struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}
