// internal/workers/questionnaire/suggest-answer/handler.go
package suggestanswer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/goccy/go-json"

	"insurance-advisor/internal/assist"
	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/metrics"
	"insurance-advisor/internal/questionnaire"
)

const (
	TaskType = "suggest-answer"
)

// QuestionSource is the part of questionnaire.Engine this worker needs.
type QuestionSource interface {
	CurrentQuestion(ctx context.Context, id string) (*questionnaire.Question, error)
}

type Handler struct {
	config       *Config
	engine       QuestionSource
	suggester    assist.Suggester
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, engine QuestionSource, suggester assist.Suggester, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		suggester:    suggester,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() { metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds()) }()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewValidationError("", fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, errors.NewValidationError("sessionId", "sessionId is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, errors.NewValidationError("description", "a description of your situation is required")
	}

	q, err := h.engine.CurrentQuestion(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errors.NewSessionStateError(input.SessionID, "finished", "suggest_answer")
	}

	s, err := h.suggester.Suggest(ctx, q, description)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("suggestion ready", map[string]interface{}{
		"sessionId":  input.SessionID,
		"questionId": q.ID,
		"source":     s.Source,
		"confidence": s.Confidence,
	})

	return &Output{
		QuestionID:  s.QuestionID,
		Value:       s.Value,
		Explanation: s.Explanation,
		Confidence:  s.Confidence,
		Source:      s.Source,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
