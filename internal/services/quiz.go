package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tutor-ai/internal/models"
)

var quizBlockRE = regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```")

var quizOptionLetters = []string{"A", "B", "C", "D"}

var errMalformedQuiz = errors.New("malformed quiz")

// ParseQuiz reads the question array out of model text, truncated to n
// questions. Output that cannot be used yields n placeholder questions
// instead; the second result reports that the fallback was used.
func ParseQuiz(raw, subject string, n int) ([]models.QuizQuestion, bool) {
	questions, err := decodeQuiz(raw)
	if err != nil {
		return FallbackQuiz(subject, n), true
	}
	if len(questions) > n {
		questions = questions[:n]
	}
	return questions, false
}

func decodeQuiz(raw string) ([]models.QuizQuestion, error) {
	payload := raw
	if m := quizBlockRE.FindStringSubmatch(raw); m != nil {
		payload = m[1]
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &questions); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", errMalformedQuiz)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", errMalformedQuiz, i+1)
		}
		if len(q.Options) != len(quizOptionLetters) {
			return nil, fmt.Errorf("%w: question %d has %d options", errMalformedQuiz, i+1, len(q.Options))
		}
	}
	return questions, nil
}

// FallbackQuiz builds n placeholder questions about subject.
func FallbackQuiz(subject string, n int) []models.QuizQuestion {
	out := make([]models.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.QuizQuestion{
			Question:      fmt.Sprintf("Sample %s Question #%d", subject, i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
		})
	}
	return out
}

// QuizMarkdown renders questions as numbered headings with lettered options.
func QuizMarkdown(questions []models.QuizQuestion) string {
	var lines []string
	for i, q := range questions {
		lines = append(lines, fmt.Sprintf("### %d. %s\n", i+1, q.Question))
		for j, opt := range q.Options {
			if j >= len(quizOptionLetters) {
				break
			}
			lines = append(lines, fmt.Sprintf("- **%s.** %s", quizOptionLetters[j], opt))
		}
		lines = append(lines, fmt.Sprintf("\n**Answer: %s**\n", q.CorrectAnswer))
	}
	return strings.Join(lines, "\n")
}
