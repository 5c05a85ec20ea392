package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionClone_IsDeep(t *testing.T) {
	orig := &Session{
		ID: "s1",
		Responses: []Response{
			{QuestionID: "high_risk_activities", Value: []string{"scuba", "climbing"}},
		},
	}

	cp := orig.Clone()
	cp.Responses[0].Value.([]string)[0] = "racing"
	cp.Responses = append(cp.Responses, Response{QuestionID: "x"})

	assert.Equal(t, []string{"scuba", "climbing"}, orig.Responses[0].Value)
	assert.Len(t, orig.Responses, 1)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeValue([]interface{}{"a", "b"}))
	assert.Equal(t, []interface{}{"a", 1.0}, NormalizeValue([]interface{}{"a", 1.0}))
	assert.Equal(t, 3.0, NormalizeValue(3))
	assert.Equal(t, "x", NormalizeValue("x"))
}

func TestApplicantProfile_BMI(t *testing.T) {
	p := &ApplicantProfile{HeightCM: 180, WeightKG: 81}
	assert.InDelta(t, 25.0, p.BMI(), 0.001)

	assert.Zero(t, (&ApplicantProfile{WeightKG: 80}).BMI())
}

func TestQuotePlan_WaitingDays(t *testing.T) {
	plan := QuotePlan{WaitingPeriods: map[string]int{"general": 30, "pre_existing": 365}}
	assert.InDelta(t, 197.5, plan.AverageWaitingDays(), 0.001)
	assert.Equal(t, 365, plan.MaxWaitingDays())

	empty := QuotePlan{}
	assert.Zero(t, empty.AverageWaitingDays())
}

func TestEntryMode(t *testing.T) {
	assert.True(t, EntryModeDocumentAssisted.UsesPrefill())
	assert.False(t, EntryModeManual.UsesPrefill())
	assert.False(t, EntryMode("fax").Valid())
}
