package questionnaire

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/metrics"
	"insurance-advisor/internal/models"
)

// Result is what every session operation hands back to the caller.
type Result struct {
	Session   *models.Session `json:"session"`
	Question  *Question       `json:"question,omitempty"`
	Progress  models.Progress `json:"progress"`
	Completed bool            `json:"completed"`
}

// Engine drives questionnaire sessions. Mutations on one session id are
// serialized in-process; the store's version check guards across processes.
type Engine struct {
	catalog *Catalog
	store   SessionStore
	log     logger.Logger
	locks   *keyedMutex
	now     func() time.Time
	newID   func() string
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now for timestamps and past-only date checks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces uuid generation for session ids.
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates a session engine over catalog and store.
func NewEngine(catalog *Catalog, store SessionStore, log logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		store:   store,
		log:     log,
		locks:   newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog exposes the catalog the engine walks.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Start creates a session. For pre-filling entry modes, each profile-phase
// question with a usable prefill value is answered up front; values that
// fail validation are dropped so the question is asked instead.
func (e *Engine) Start(ctx context.Context, mode models.EntryMode, prefill map[string]string) (*Result, error) {
	if !mode.Valid() {
		return nil, errors.NewValidationError("entryMode", fmt.Sprintf("unknown entry mode %q", mode))
	}

	now := e.now()
	s := &models.Session{
		ID:        e.newID(),
		EntryMode: mode,
		Status:    models.SessionInProgress,
		Responses: []models.Response{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if mode.UsesPrefill() {
		s.Responses = e.prefillResponses(prefill, now)
	}

	next := e.advance(s)
	if err := e.store.Create(ctx, s); err != nil {
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(string(mode)).Inc()
	if s.Status == models.SessionCompleted {
		metrics.SessionsFinished.WithLabelValues(string(models.SessionCompleted)).Inc()
	}

	e.log.Info("Session started", map[string]interface{}{
		"sessionId": s.ID,
		"entryMode": string(mode),
		"prefilled": len(s.Responses),
	})

	return e.result(s, next), nil
}

func (e *Engine) prefillResponses(prefill map[string]string, at time.Time) []models.Response {
	profile := make(map[string]bool)
	for _, q := range e.catalog.ProfileQuestions() {
		profile[q.ID] = true
	}

	responses := []models.Response{}
	for _, field := range PrefillFields {
		raw, ok := prefill[field.Key]
		if !ok || strings.TrimSpace(raw) == "" || !profile[field.QuestionID] {
			continue
		}
		q, _ := e.catalog.Question(field.QuestionID)
		value, err := q.ValidateAt(raw, at)
		if err != nil {
			e.log.Debug("Dropping invalid prefill value", map[string]interface{}{
				"key":   field.Key,
				"error": err,
			})
			continue
		}
		responses = append(responses, models.Response{
			QuestionID: q.ID,
			Value:      value,
			AnsweredAt: at,
			Prefilled:  true,
		})
	}
	return responses
}

// Get loads a session.
func (e *Engine) Get(ctx context.Context, id string) (*models.Session, error) {
	return e.store.Get(ctx, id)
}

// CurrentQuestion returns the next unanswered, non-skipped question, or nil
// when the session is complete or abandoned.
func (e *Engine) CurrentQuestion(ctx context.Context, id string) (*Question, error) {
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsTerminal() {
		return nil, nil
	}
	return e.catalog.Next(Answers(s.Answers())), nil
}

// Progress returns answered and reachable question counts.
func (e *Engine) Progress(ctx context.Context, id string) (models.Progress, error) {
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return models.Progress{}, err
	}
	return e.catalog.Progress(s), nil
}

// SubmitAnswer answers the current question. An invalid value returns a
// VALIDATION_ERROR and leaves the session untouched.
func (e *Engine) SubmitAnswer(ctx context.Context, id string, value interface{}) (*Result, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsTerminal() {
		return nil, errors.NewSessionStateError(id, string(s.Status), "submit_answer")
	}

	q := e.catalog.Next(Answers(s.Answers()))
	if q == nil {
		return nil, errors.NewSessionStateError(id, string(s.Status), "submit_answer")
	}

	now := e.now()
	normalized, err := q.ValidateAt(value, now)
	if err != nil {
		metrics.AnswersRejected.WithLabelValues(q.ID).Inc()
		return nil, err
	}

	updated := s.Clone()
	updated.Responses = append(updated.Responses, models.Response{
		QuestionID: q.ID,
		Value:      normalized,
		AnsweredAt: now,
	})
	next := e.advance(updated)

	if err := e.save(ctx, updated); err != nil {
		return nil, err
	}

	if updated.Status == models.SessionCompleted {
		metrics.SessionsFinished.WithLabelValues(string(models.SessionCompleted)).Inc()
		e.log.Info("Session completed", map[string]interface{}{
			"sessionId": id,
			"responses": len(updated.Responses),
		})
	}

	return e.result(updated, next), nil
}

// GoBack removes the most recent manual answer and points the session at
// its question again. Pre-filled answers are never undone.
func (e *Engine) GoBack(ctx context.Context, id string) (*Result, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsTerminal() {
		return nil, errors.NewSessionStateError(id, string(s.Status), "go_back")
	}

	last := -1
	for i := len(s.Responses) - 1; i >= 0; i-- {
		if !s.Responses[i].Prefilled {
			last = i
			break
		}
	}
	if last < 0 {
		return nil, errors.NewSessionStateError(id, string(s.Status), "go_back")
	}

	updated := s.Clone()
	updated.Responses = append(updated.Responses[:last], updated.Responses[last+1:]...)
	next := e.advance(updated)

	if err := e.save(ctx, updated); err != nil {
		return nil, err
	}
	return e.result(updated, next), nil
}

// Abandon ends the session. Abandoning twice is a no-op.
func (e *Engine) Abandon(ctx context.Context, id string) (*models.Session, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch s.Status {
	case models.SessionAbandoned:
		return s, nil
	case models.SessionCompleted:
		return nil, errors.NewSessionStateError(id, string(s.Status), "abandon")
	}

	updated := s.Clone()
	updated.Status = models.SessionAbandoned
	updated.CurrentQuestionID = ""
	if err := e.save(ctx, updated); err != nil {
		return nil, err
	}

	metrics.SessionsFinished.WithLabelValues(string(models.SessionAbandoned)).Inc()
	e.log.Info("Session abandoned", map[string]interface{}{"sessionId": id})
	return updated, nil
}

// advance moves the pointer to the next reachable question and completes
// the session when none is left.
func (e *Engine) advance(s *models.Session) *Question {
	next := e.catalog.Next(Answers(s.Answers()))
	if next == nil {
		s.CurrentQuestionID = ""
		s.Status = models.SessionCompleted
		return nil
	}
	s.CurrentQuestionID = next.ID
	return next
}

func (e *Engine) save(ctx context.Context, s *models.Session) error {
	s.Version++
	s.UpdatedAt = e.now()
	return e.store.Update(ctx, s)
}

func (e *Engine) result(s *models.Session, next *Question) *Result {
	return &Result{
		Session:   s,
		Question:  next,
		Progress:  e.catalog.Progress(s),
		Completed: s.Status == models.SessionCompleted,
	}
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
