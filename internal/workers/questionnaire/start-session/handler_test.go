// internal/workers/questionnaire/start-session/handler_test.go
package startsession

import (
	"context"
	"testing"
	"time"

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

type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) Start(ctx context.Context, mode models.EntryMode, prefill map[string]string) (*questionnaire.Result, error) {
	args := m.Called(ctx, mode, prefill)
	if res := args.Get(0); res != nil {
		return res.(*questionnaire.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func newEngineHandler(t *testing.T) *Handler {
	engine := questionnaire.NewEngine(questionnaire.DefaultCatalog(), storage.NewMemorySessionStore(), logger.NewNoOpLogger())
	return NewHandler(LoadConfig(config.WorkerConfig{}), engine, logger.NewTestLogger(t))
}

func fullPrefill() map[string]interface{} {
	return map[string]interface{}{
		"first_name":    "Dana",
		"last_name":     "Reyes",
		"dob":           "1988-04-12",
		"gender":        "F",
		"email":         "dana@example.com",
		"phone":         "555-0100",
		"address_line1": "12 Elm St",
		"city":          "Albany",
		"state":         "NY",
		"postal_code":   float64(12207),
	}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Manual(t *testing.T) {
	h := newEngineHandler(t)

	out, err := h.Execute(context.Background(), &Input{EntryMode: "manual"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, models.SessionInProgress, out.Status)
	require.NotNil(t, out.Question)
	assert.Equal(t, "personal_first_name", out.Question.ID)
	assert.Equal(t, 0, out.Progress.Current)
	assert.False(t, out.Completed)
}

func TestHandler_Execute_DefaultsToManual(t *testing.T) {
	h := newEngineHandler(t)

	out, err := h.Execute(context.Background(), &Input{PrefillProfile: fullPrefill()})
	require.NoError(t, err)

	require.NotNil(t, out.Question)
	assert.Equal(t, "personal_first_name", out.Question.ID)
}

func TestHandler_Execute_Prefilled(t *testing.T) {
	h := newEngineHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		EntryMode:      string(models.EntryModePrefilledProfile),
		PrefillProfile: fullPrefill(),
	})
	require.NoError(t, err)

	require.NotNil(t, out.Question)
	assert.Equal(t, "life_stage", out.Question.ID)
	assert.Equal(t, 0, out.Progress.Current)
	assert.Greater(t, out.Progress.Total, 0)
}

func TestHandler_Execute_UnknownMode(t *testing.T) {
	h := newEngineHandler(t)

	_, err := h.Execute(context.Background(), &Input{EntryMode: "fax"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	starter := new(MockStarter)
	starter.On("Start", mock.Anything, models.EntryModeManual, map[string]string(nil)).
		Return(nil, errors.NewStoreFailedError("create session", assert.AnError))

	h := NewHandler(LoadConfig(config.WorkerConfig{}), starter, logger.NewNoOpLogger())
	_, err := h.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStoreFailed))
	starter.AssertExpectations(t)
}

// ==========================
// Helpers
// ==========================

func TestStringifyPrefill(t *testing.T) {
	out := stringifyPrefill(map[string]interface{}{
		"postal_code": float64(12207),
		"city":        "Albany",
		"phone":       nil,
		"flag":        true,
	})

	assert.Equal(t, map[string]string{
		"postal_code": "12207",
		"city":        "Albany",
		"flag":        "true",
	}, out)
	assert.Nil(t, stringifyPrefill(nil))
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout)
}
