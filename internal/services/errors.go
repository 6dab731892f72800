package services

import (
	"errors"
	"fmt"
)

var (
	// ErrAIUnavailable is returned when no LLM API key is configured.
	ErrAIUnavailable = errors.New("llm integration is not configured")
	// ErrInvalidInput matches every InputError through errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNothingToSummarize is returned for an empty chunk list.
	ErrNothingToSummarize = errors.New("nothing to summarize")
)

// InputError is a caller mistake that maps to a client error response.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// Summarization stages.
const (
	StageMap    = "map"
	StageReduce = "reduce"
)

// SummarizationError wraps the upstream failure that aborted a map-reduce run.
type SummarizationError struct {
	Stage string
	Chunk int
	Err   error
}

func (e *SummarizationError) Error() string {
	if e.Stage == StageMap {
		return fmt.Sprintf("summarize chunk %d: %v", e.Chunk+1, e.Err)
	}
	return fmt.Sprintf("combine summaries: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}
