// Package assist holds the optional helpers around the questionnaire and
// quote results: answer suggestions and plan narratives. Every remote
// capability has a deterministic fallback.
package assist

import (
	"context"

	"insurance-advisor/internal/questionnaire"
)

// Suggestion sources.
const (
	SourceOpenAI  = "openai"
	SourceKeyword = "keyword"
)

// Suggestion is a proposed answer for one question. Value is already
// normalized for Question.Validate, or nil when nothing could be proposed.
type Suggestion struct {
	QuestionID  string      `json:"questionId"`
	Value       interface{} `json:"value"`
	Explanation string      `json:"explanation"`
	Confidence  float64     `json:"confidence"`
	Source      string      `json:"source"`
}

// Suggester proposes an answer to q from the user's free-text description.
type Suggester interface {
	Suggest(ctx context.Context, q *questionnaire.Question, description string) (*Suggestion, error)
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
