package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/questionnaire"
)

const suggestSystemPrompt = `You help people fill in an insurance questionnaire.
Given one question and the user's description of their situation, reply with a
JSON object {"value": ..., "explanation": "...", "confidence": 0.0-1.0}.
For single choice questions value is one option value, for multi choice a list
of option values, for numeric a number, for dates YYYY-MM-DD, otherwise text.
Only use option values that are listed.`

// OpenAIConfig configures the remote suggester.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAISuggester asks a chat completion model for an answer in JSON mode
// and re-validates whatever it returns against the question.
type OpenAISuggester struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  logger.Logger
}

func NewOpenAISuggester(cfg OpenAIConfig, log logger.Logger) *OpenAISuggester {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenAISuggester{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "openai-suggester"}),
	}
}

type modelSuggestion struct {
	Value       interface{} `json:"value"`
	Explanation string      `json:"explanation"`
	Confidence  float64     `json:"confidence"`
}

func (s *OpenAISuggester) Suggest(ctx context.Context, q *questionnaire.Question, description string) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: questionPrompt(q, description)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, errors.NewSuggestionUnavailableError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewSuggestionUnavailableError(fmt.Errorf("completion returned no choices"))
	}

	var ms modelSuggestion
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &ms); err != nil {
		return nil, errors.NewSuggestionUnavailableError(fmt.Errorf("decode completion: %w", err))
	}

	value, err := q.Validate(ms.Value)
	if err != nil {
		s.logger.Warn("model suggested an invalid answer", map[string]interface{}{
			"questionId": q.ID,
			"value":      ms.Value,
		})
		return nil, errors.NewSuggestionUnavailableError(fmt.Errorf("invalid suggestion: %w", err))
	}

	return &Suggestion{
		QuestionID:  q.ID,
		Value:       value,
		Explanation: strings.TrimSpace(ms.Explanation),
		Confidence:  clampConfidence(ms.Confidence),
		Source:      SourceOpenAI,
	}, nil
}

func questionPrompt(q *questionnaire.Question, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question (%s): %s\n", q.Type, q.Text)
	if q.Help != "" {
		fmt.Fprintf(&b, "Help: %s\n", q.Help)
	}
	if len(q.Options) > 0 {
		b.WriteString("Options:\n")
		for _, o := range q.Options {
			fmt.Fprintf(&b, "- %s: %s\n", o.Value, o.Label)
		}
	}
	if q.Min != nil || q.Max != nil {
		b.WriteString("Range:")
		if q.Min != nil {
			fmt.Fprintf(&b, " min %g", *q.Min)
		}
		if q.Max != nil {
			fmt.Fprintf(&b, " max %g", *q.Max)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User description: %s\n", description)
	return b.String()
}
