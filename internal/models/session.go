package models

import "time"

// EntryMode is how a questionnaire session begins.
type EntryMode string

const (
	EntryModeManual           EntryMode = "manual"
	EntryModePrefilledProfile EntryMode = "prefilled_profile"
	EntryModeDocumentAssisted EntryMode = "document_assisted"
)

// Valid reports whether m is a known entry mode.
func (m EntryMode) Valid() bool {
	switch m {
	case EntryModeManual, EntryModePrefilledProfile, EntryModeDocumentAssisted:
		return true
	}
	return false
}

// UsesPrefill reports whether the mode synthesizes profile answers.
func (m EntryMode) UsesPrefill() bool {
	return m == EntryModePrefilledProfile || m == EntryModeDocumentAssisted
}

// SessionStatus is the state of the questionnaire state machine.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Response is one recorded answer.
type Response struct {
	QuestionID string      `json:"questionId"`
	Value      interface{} `json:"value"`
	AnsweredAt time.Time   `json:"answeredAt"`
	Prefilled  bool        `json:"prefilled,omitempty"`
}

// Session is a questionnaire run. Only the session engine mutates it.
type Session struct {
	ID                string        `json:"id"`
	EntryMode         EntryMode     `json:"entryMode"`
	Status            SessionStatus `json:"status"`
	Responses         []Response    `json:"responses"`
	CurrentQuestionID string        `json:"currentQuestionId,omitempty"`
	Version           int64         `json:"version"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// IsTerminal reports whether the session accepts no further mutation.
func (s *Session) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionAbandoned
}

// Answers returns the latest value per question id.
func (s *Session) Answers() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Responses))
	for _, r := range s.Responses {
		out[r.QuestionID] = r.Value
	}
	return out
}

// HasAnswer reports whether questionID has a recorded response.
func (s *Session) HasAnswer(questionID string) bool {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Responses = make([]Response, len(s.Responses))
	for i, r := range s.Responses {
		cp.Responses[i] = r
		cp.Responses[i].Value = NormalizeValue(r.Value)
	}
	return &cp
}

// NormalizeValue converts decoded JSON answer values back to the shapes the
// engine stores: string lists become []string and numbers become float64.
// Slices are always copied.
func NormalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return append([]interface{}(nil), val...)
			}
			out = append(out, s)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	}
	return v
}

// Progress counts answered and reachable questions for the active trajectory.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
