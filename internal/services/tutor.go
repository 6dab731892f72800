package services

import (
	"context"
	"fmt"
	"strings"

	"tutor-ai/internal/logger"
	"tutor-ai/internal/models"
)

// TutorService answers student questions and writes quizzes.
type TutorService struct {
	llm Completer
	log *logger.Logger
}

func NewTutorService(llm Completer, log *logger.Logger) *TutorService {
	if log == nil {
		log = logger.Nop()
	}
	return &TutorService{llm: llm, log: log}
}

// Respond returns a markdown explanation tailored to the student profile.
func (s *TutorService) Respond(ctx context.Context, req models.TutorRequest) (string, error) {
	req = withTutorDefaults(req)
	if err := requireFields(map[string]string{
		"subject":  req.Subject,
		"level":    req.Level,
		"question": req.Question,
	}); err != nil {
		return "", err
	}

	s.log.Info("generating tutoring response", "subject", req.Subject, "level", req.Level, "style", req.LearningStyle)
	content, err := s.llm.Complete(ctx, tutoringPrompt(req))
	if err != nil {
		return "", fmt.Errorf("tutoring response: %w", err)
	}
	return withStyleFooter(content, req.LearningStyle), nil
}

// GenerateQuiz asks for n questions and parses them, falling back to
// placeholder questions when the reply cannot be parsed.
func (s *TutorService) GenerateQuiz(ctx context.Context, req models.QuizRequest) ([]models.QuizQuestion, error) {
	n := req.QuestionCount()
	if n < models.MinQuizQuestions || n > models.MaxQuizQuestions {
		return nil, invalidInput("num_questions must be between %d and %d", models.MinQuizQuestions, models.MaxQuizQuestions)
	}
	if err := requireFields(map[string]string{"subject": req.Subject, "level": req.Level}); err != nil {
		return nil, err
	}

	s.log.Info("generating quiz", "subject", req.Subject, "level", req.Level, "questions", n)
	raw, err := s.llm.Complete(ctx, quizPrompt(req, n))
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	questions, fellBack := ParseQuiz(raw, req.Subject, n)
	if fellBack {
		s.log.Warn("failed to parse quiz, using fallback quiz", "subject", req.Subject)
	}
	return questions, nil
}

func withTutorDefaults(req models.TutorRequest) models.TutorRequest {
	if req.LearningStyle == "" {
		req.LearningStyle = models.StyleText
	}
	if req.Background == "" {
		req.Background = "Unknown"
	}
	if req.Language == "" {
		req.Language = "English"
	}
	return req
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"subject", "level", "question"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return invalidInput("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func tutoringPrompt(req models.TutorRequest) string {
	return fmt.Sprintf(`
You are an expert tutor in %[1]s at the %[2]s level.

STUDENT PROFILE:
- Background knowledge: %[3]s
- Learning style preference: %[4]s
- Language preference: %[5]s

QUESTION:
%[6]s

INSTRUCTIONS:
1. Provide a clear, educational explanation that directly addresses the question
2. Tailor your explanation to a %[3]s student at %[2]s level
3. Use %[5]s as the primary language
4. Format your response with appropriate markdown for readability

LEARNING STYLE ADAPTATIONS:
- For Visual learners: Include descriptions of visual concepts or mental models
- For Text-based learners: Provide clear, structured explanations
- For Hands-on learners: Include practical examples or exercises
`, req.Subject, req.Level, req.Background, req.LearningStyle, req.Language, req.Question)
}

func withStyleFooter(content, style string) string {
	switch style {
	case models.StyleVisual:
		return content + "\n\n*Note: Visualize these concepts as you read.*"
	case models.StyleHandsOn:
		return content + "\n\n*Tip: Try the examples yourself to reinforce learning.*"
	}
	return content
}

func quizPrompt(req models.QuizRequest, n int) string {
	return fmt.Sprintf(`
Create a %[1]s-level quiz on %[2]s with exactly %[3]d multiple-choice questions.

INSTRUCTIONS:
1. Each question appropriate for %[1]s students
2. Exactly 4 options (A, B, C, D)
3. Clearly mark the correct answer
4. Return valid JSON ONLY:
`+"```json"+`
[
  {"question":"...","options":["...","...","...","..."],"correct_answer":"..."},
  ...
]
`+"```", req.Level, req.Subject, n)
}
