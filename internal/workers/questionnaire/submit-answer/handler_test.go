// internal/workers/questionnaire/submit-answer/handler_test.go
package submitanswer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/common/config"
	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
	"insurance-advisor/internal/storage"
)

// ==========================
// Test Helpers
// ==========================

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitAnswer(ctx context.Context, id string, value interface{}) (*questionnaire.Result, error) {
	args := m.Called(ctx, id, value)
	if res := args.Get(0); res != nil {
		return res.(*questionnaire.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func setup(t *testing.T) (*Handler, string) {
	engine := questionnaire.NewEngine(questionnaire.DefaultCatalog(), storage.NewMemorySessionStore(), logger.NewNoOpLogger())
	res, err := engine.Start(context.Background(), models.EntryModeManual, nil)
	require.NoError(t, err)
	return NewHandler(LoadConfig(config.WorkerConfig{}), engine, logger.NewTestLogger(t)), res.Session.ID
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_AdvancesSession(t *testing.T) {
	h, id := setup(t)

	out, err := h.Execute(context.Background(), &Input{SessionID: id, Value: "Dana"})
	require.NoError(t, err)

	assert.Equal(t, id, out.SessionID)
	require.NotNil(t, out.Question)
	assert.Equal(t, "personal_last_name", out.Question.ID)
	assert.Equal(t, 1, out.Progress.Current)
	assert.False(t, out.Completed)
}

func TestHandler_Execute_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(h *Handler, id string)
		input   func(id string) *Input
		code    errors.ErrorCode
	}{
		{
			name:  "missing session id",
			input: func(string) *Input { return &Input{Value: "Dana"} },
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "unknown session",
			input: func(string) *Input { return &Input{SessionID: "nope", Value: "Dana"} },
			code:  errors.ErrCodeSessionNotFound,
		},
		{
			name:  "missing value",
			input: func(id string) *Input { return &Input{SessionID: id} },
			code:  errors.ErrCodeValidation,
		},
		{
			name: "option not offered",
			prepare: func(h *Handler, id string) {
				for _, v := range []interface{}{"Dana", "Reyes", "1990-01-01"} {
					_, err := h.Execute(context.Background(), &Input{SessionID: id, Value: v})
					require.NoError(t, err)
				}
			},
			input: func(id string) *Input { return &Input{SessionID: id, Value: "X"} },
			code:  errors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, id := setup(t)
			if tt.prepare != nil {
				tt.prepare(h, id)
			}

			_, err := h.Execute(context.Background(), tt.input(id))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), err.Error())
		})
	}
}

func TestHandler_Execute_Completed(t *testing.T) {
	submitter := new(MockSubmitter)
	submitter.On("SubmitAnswer", mock.Anything, "s-1", "yes").Return(&questionnaire.Result{
		Session:   &models.Session{ID: "s-1", Status: models.SessionCompleted},
		Progress:  models.Progress{Current: 20, Total: 20},
		Completed: true,
	}, nil)

	h := NewHandler(LoadConfig(config.WorkerConfig{}), submitter, logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", Value: "yes"})

	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Nil(t, out.Question)
	assert.Equal(t, models.SessionCompleted, out.Status)
	submitter.AssertExpectations(t)
}
