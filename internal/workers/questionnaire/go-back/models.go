// internal/workers/questionnaire/go-back/models.go
package goback

import (
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	SessionID string                  `json:"sessionId"`
	Status    models.SessionStatus    `json:"status"`
	Question  *questionnaire.Question `json:"question,omitempty"`
	Progress  models.Progress         `json:"progress"`
	Completed bool                    `json:"completed"`
}

func newOutput(res *questionnaire.Result) *Output {
	return &Output{
		SessionID: res.Session.ID,
		Status:    res.Session.Status,
		Question:  res.Question,
		Progress:  res.Progress,
		Completed: res.Completed,
	}
}
