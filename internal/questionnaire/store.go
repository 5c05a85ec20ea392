package questionnaire

import (
	"context"

	"insurance-advisor/internal/models"
)

// SessionStore persists questionnaire sessions.
//
// Get returns a SESSION_NOT_FOUND error for unknown ids. Update is a
// compare-and-swap: it succeeds only when the stored version equals
// s.Version-1, and returns SESSION_CONFLICT otherwise.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}
