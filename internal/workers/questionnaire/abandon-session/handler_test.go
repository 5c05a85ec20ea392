// internal/workers/questionnaire/abandon-session/handler_test.go
package abandonsession

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/common/config"
	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
	"insurance-advisor/internal/storage"
)

func TestHandler_Execute(t *testing.T) {
	engine := questionnaire.NewEngine(questionnaire.DefaultCatalog(), storage.NewMemorySessionStore(), logger.NewNoOpLogger())
	res, err := engine.Start(context.Background(), models.EntryModeManual, nil)
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(context.Background(), res.Session.ID, "Dana")
	require.NoError(t, err)

	h := NewHandler(LoadConfig(config.WorkerConfig{}), engine, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{SessionID: res.Session.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, out.Status)
	assert.Equal(t, 1, out.Answered)

	// a second abandon is a no-op
	out, err = h.Execute(context.Background(), &Input{SessionID: res.Session.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, out.Status)

	_, err = engine.SubmitAnswer(context.Background(), res.Session.ID, "Reyes")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionStateInvalid))
}

func TestHandler_Execute_UnknownSession(t *testing.T) {
	engine := questionnaire.NewEngine(questionnaire.DefaultCatalog(), storage.NewMemorySessionStore(), logger.NewNoOpLogger())
	h := NewHandler(LoadConfig(config.WorkerConfig{}), engine, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{SessionID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSessionNotFound))
}
