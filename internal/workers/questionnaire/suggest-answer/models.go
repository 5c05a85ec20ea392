// internal/workers/questionnaire/suggest-answer/models.go
package suggestanswer

type Input struct {
	SessionID   string `json:"sessionId"`
	Description string `json:"description"`
}

// Output is a proposal only; the process submits it through submit-answer
// once the user accepts it.
type Output struct {
	QuestionID  string      `json:"questionId"`
	Value       interface{} `json:"value"`
	Explanation string      `json:"explanation"`
	Confidence  float64     `json:"confidence"`
	Source      string      `json:"source"`
}
