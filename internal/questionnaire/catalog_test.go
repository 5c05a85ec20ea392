package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/models"
)

func TestDefaultCatalog_PhaseOrder(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t,
		[]string{"personal", "address", "lifestyle", "priorities", "budget", "health", "timeline", "preferences"},
		c.PhaseNames())

	profile := c.ProfileQuestions()
	require.Len(t, profile, len(PrefillFields))
	for i, field := range PrefillFields {
		assert.Equal(t, field.QuestionID, profile[i].ID)
	}
}

func TestDefaultCatalog_QuestionsCarryPhase(t *testing.T) {
	for _, q := range DefaultCatalog().Questions() {
		assert.NotEmpty(t, q.Phase, q.ID)
		assert.NotNil(t, q.schema, q.ID)
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		phases []Phase
		want   string
	}{
		{
			name: "duplicate question id",
			phases: []Phase{
				{Name: "a", Questions: []*Question{{ID: "q1", Type: FreeText}}},
				{Name: "b", Questions: []*Question{{ID: "q1", Type: FreeText}}},
			},
			want: "duplicate question id",
		},
		{
			name: "duplicate phase",
			phases: []Phase{
				{Name: "a", Questions: []*Question{{ID: "q1", Type: FreeText}}},
				{Name: "a", Questions: []*Question{{ID: "q2", Type: FreeText}}},
			},
			want: "duplicate phase",
		},
		{
			name:   "choice without options",
			phases: []Phase{{Name: "a", Questions: []*Question{{ID: "q1", Type: SingleChoice}}}},
			want:   "has no options",
		},
		{
			name: "undeclared exclusive option",
			phases: []Phase{{Name: "a", Questions: []*Question{
				{ID: "q1", Type: MultiChoice, Exclusive: "none", Options: opts("a", "A")},
			}}},
			want: "exclusive option",
		},
		{
			name:   "empty",
			phases: nil,
			want:   "no questions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.phases)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCatalog_NextSkipsHiddenQuestions(t *testing.T) {
	c := DefaultCatalog()
	answers := Answers{}
	for _, q := range c.ProfileQuestions() {
		answers[q.ID] = "x"
	}
	answers["life_stage"] = "young_single"
	answers["financial_dependents"] = "none"
	answers["lifestyle_risk"] = "low_risk"

	assert.Equal(t, "main_concern", c.Next(answers).ID)

	answers["lifestyle_risk"] = "regular_risk"
	assert.Equal(t, "high_risk_activities", c.Next(answers).ID)
}

func TestCatalog_SkipDeterminism(t *testing.T) {
	c := DefaultCatalog()
	answers := Answers{"lifestyle_risk": "high_risk", "main_concern": "mortgage_debt", "monthly_budget": "flexible"}

	for _, q := range c.Questions() {
		first := q.Skipped(answers)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, q.Skipped(answers), q.ID)
		}
	}
}

func TestCatalog_ProgressExcludesPrefilledAndSkipped(t *testing.T) {
	c := DefaultCatalog()

	manual := &models.Session{}
	base := c.Progress(manual)
	assert.Equal(t, 0, base.Current)
	assert.Equal(t, len(c.Questions())-5, base.Total)

	prefilled := &models.Session{Responses: []models.Response{
		{QuestionID: "personal_first_name", Value: "Jane", Prefilled: true},
	}}
	p := c.Progress(prefilled)
	assert.Equal(t, 0, p.Current)
	assert.Equal(t, base.Total-1, p.Total)

	withBranch := &models.Session{Responses: []models.Response{
		{QuestionID: "personal_first_name", Value: "Jane"},
		{QuestionID: "main_concern", Value: "mortgage_debt"},
	}}
	p = c.Progress(withBranch)
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, base.Total+1, p.Total)
}
