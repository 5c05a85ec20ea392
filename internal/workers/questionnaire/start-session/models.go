// internal/workers/questionnaire/start-session/models.go
package startsession

import (
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

type Input struct {
	EntryMode      string                 `json:"entryMode"`
	PrefillProfile map[string]interface{} `json:"prefillProfile,omitempty"`
}

type Output struct {
	SessionID string                  `json:"sessionId"`
	Status    models.SessionStatus    `json:"status"`
	Question  *questionnaire.Question `json:"question,omitempty"`
	Progress  models.Progress         `json:"progress"`
	Completed bool                    `json:"completed"`
}
