package models

import "time"

// QuizQuestion is one multiple choice question as returned by the model.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type TutorRequest struct {
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	Question      string `json:"question"`
	LearningStyle string `json:"learning_style"`
	Background    string `json:"background"`
	Language      string `json:"language"`
}

// QuizRequest asks for a quiz. A nil NumQuestions means the default size.
type QuizRequest struct {
	Subject      string `json:"subject"`
	Level        string `json:"level"`
	NumQuestions *int   `json:"num_questions,omitempty"`
}

// QuestionCount returns the requested quiz size, or the default when unset.
func (r QuizRequest) QuestionCount() int {
	if r.NumQuestions == nil {
		return DefaultQuizQuestions
	}
	return *r.NumQuestions
}

type SearchRequest struct {
	Source string `json:"source"`
	Query  string `json:"query"`
}

// Learning styles with a dedicated response footer.
const (
	StyleVisual  = "Visual"
	StyleText    = "Text-based"
	StyleHandsOn = "Hands-on"
)

// Quiz sizing accepted by the API.
const (
	DefaultQuizQuestions = 5
	MinQuizQuestions     = 1
	MaxQuizQuestions     = 10
)

type HistoryKind string

const (
	HistoryTutor  HistoryKind = "tutor"
	HistoryQuiz   HistoryKind = "quiz"
	HistorySearch HistoryKind = "search"
	HistoryPDF    HistoryKind = "pdf"
)

// HistoryEntry records one completed request. Entries are written after the
// response is computed and are never consulted to produce an answer.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Kind      HistoryKind   `json:"kind"`
	Subject   string        `json:"subject"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}
