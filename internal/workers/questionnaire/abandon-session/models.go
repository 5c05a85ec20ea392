// internal/workers/questionnaire/abandon-session/models.go
package abandonsession

import "insurance-advisor/internal/models"

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	SessionID string               `json:"sessionId"`
	Status    models.SessionStatus `json:"status"`
	Answered  int                  `json:"answered"`
}
