package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/metrics"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

// ==========================
// Test helpers
// ==========================

func question(t *testing.T, id string) *questionnaire.Question {
	t.Helper()
	q, ok := questionnaire.DefaultCatalog().Question(id)
	require.True(t, ok, id)
	return q
}

type MockSuggester struct {
	mock.Mock
}

func (m *MockSuggester) Suggest(ctx context.Context, q *questionnaire.Question, description string) (*Suggestion, error) {
	args := m.Called(ctx, q, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Suggestion), args.Error(1)
}

type MockNarrator struct {
	mock.Mock
}

func (m *MockNarrator) Narrate(ctx context.Context, profile *models.ApplicantProfile, plans []models.ScoredPlan) ([]models.PlanNarrative, error) {
	args := m.Called(ctx, profile, plans)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanNarrative), args.Error(1)
}

func fallbackCount(t *testing.T, capability string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.FallbacksUsed.WithLabelValues(capability).Write(&m))
	return m.GetCounter().GetValue()
}

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		format, _ := req["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newOpenAI(t *testing.T, srv *httptest.Server) *OpenAISuggester {
	return NewOpenAISuggester(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, logger.NewTestLogger(t))
}

func rankedPlans() []models.ScoredPlan {
	mk := func(id string, rank int, monthly, coverage, ease, composite float64) models.ScoredPlan {
		return models.ScoredPlan{
			Plan: models.QuotePlan{
				ID: id, ProviderID: id, ProviderName: "Provider " + id, ProductName: "Term " + id,
				MonthlyPremium: monthly, CoverageAmount: coverage,
			},
			Score: models.PolicyScore{
				PlanID:        id,
				Composite:     composite,
				Affordability: models.MetricScore{Value: 85, Defined: true},
				EaseOfClaims:  models.MetricScore{Value: ease, Defined: true},
				CoverageRatio: models.MetricScore{Value: 70, Defined: true},
			},
			Rank: rank,
		}
	}
	return []models.ScoredPlan{
		mk("a", 1, 50, 500000, 80, 82),
		mk("b", 2, 40, 500000, 90, 80),
		mk("c", 3, 70, 1500000, 60, 61),
	}
}

// ==========================
// Keyword suggester
// ==========================

func TestKeywordSuggester(t *testing.T) {
	tests := []struct {
		name        string
		questionID  string
		description string
		wantValue   interface{}
		wantConf    float64
	}{
		{"young single", "life_stage", "I'm young and just started my first job", "young_single", keywordConfidence},
		{"kids", "financial_dependents", "We have two kids and a mortgage", "spouse_kids", keywordConfidence},
		{"non smoker", "smoking_habits", "I don't smoke at all", "never", keywordConfidence},
		{"smoker", "smoking_habits", "I smoke a pack a day", "regular", keywordConfidence},
		{"multi choice", "desired_add_ons", "worried about medical conditions", []string{"critical_illness"}, keywordConfidence},
		{"no match takes first option", "life_stage", "hello there", "young_single", defaultConfidence},
		{"number with k", "annual_income", "I earn about 85k a year", 85000.0, numberConfidence},
		{"number with commas", "savings_amount", "we saved 12,500 so far", 12500.0, numberConfidence},
		{"number out of range", "budget_ceiling", "maybe 50000 a month", nil, 0},
		{"free text", "personal_first_name", "my name is on my passport", nil, 0},
		{"young single has no dependents", "financial_dependents", "I'm young and single", "none", keywordConfidence},
		{"young single keeps health open", "health_conditions", "I'm young and single", "none", defaultConfidence},
		{"young single keeps add-ons open", "desired_add_ons", "I'm young and single", []string{"critical_illness"}, defaultConfidence},
		{"single parent is not young single", "life_stage", "I'm a single parent", "young_single", defaultConfidence},
	}

	s := NewKeywordSuggester()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Suggest(context.Background(), question(t, tt.questionID), tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.questionID, got.QuestionID)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantConf, got.Confidence)
			assert.Equal(t, SourceKeyword, got.Source)
			assert.NotEmpty(t, got.Explanation)
		})
	}
}

func TestKeywordSuggester_ValuesPassValidation(t *testing.T) {
	s := NewKeywordSuggester()
	for _, q := range questionnaire.DefaultCatalog().Questions() {
		got, err := s.Suggest(context.Background(), q, "young family with kids, a mortgage and a tight budget")
		require.NoError(t, err)
		if got.Value == nil {
			continue
		}
		_, err = q.Validate(got.Value)
		assert.NoError(t, err, q.ID)
	}
}

// ==========================
// OpenAI suggester
// ==========================

func TestOpenAISuggester_Success(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"value":"growing_family","explanation":" Two young kids. ","confidence":1.7}`)

	got, err := newOpenAI(t, srv).Suggest(context.Background(), question(t, "life_stage"), "two kids under five")

	require.NoError(t, err)
	assert.Equal(t, "growing_family", got.Value)
	assert.Equal(t, "Two young kids.", got.Explanation)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, SourceOpenAI, got.Source)
}

func TestOpenAISuggester_MultiChoice(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"value":["scuba","climbing"],"explanation":"hobbies","confidence":0.8}`)

	got, err := newOpenAI(t, srv).Suggest(context.Background(), question(t, "high_risk_activities"), "I dive and climb")

	require.NoError(t, err)
	assert.Equal(t, []string{"scuba", "climbing"}, got.Value)
	assert.Equal(t, 0.8, got.Confidence)
}

func TestOpenAISuggester_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"invalid option", http.StatusOK, `{"value":"astronaut","confidence":0.9}`},
		{"not json", http.StatusOK, `I think you are a young single.`},
		{"missing value", http.StatusOK, `{"explanation":"no idea"}`},
		{"server error", http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.content)
			_, err := newOpenAI(t, srv).Suggest(context.Background(), question(t, "life_stage"), "anything")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeSuggestionUnavailable))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-0.5))
	assert.Equal(t, 0.4, clampConfidence(0.4))
	assert.Equal(t, 1.0, clampConfidence(3))
}

// ==========================
// Resilient suggester
// ==========================

func TestResilientSuggester(t *testing.T) {
	q := question(t, "life_stage")
	fallbacks := func() float64 { return fallbackCount(t, "suggestion") }

	t.Run("primary succeeds", func(t *testing.T) {
		primary := new(MockSuggester)
		want := &Suggestion{QuestionID: q.ID, Value: "empty_nesters", Source: SourceOpenAI}
		primary.On("Suggest", mock.Anything, q, "kids moved out").Return(want, nil)

		before := fallbacks()
		got, err := NewResilientSuggester(primary, NewKeywordSuggester(), logger.NewTestLogger(t)).
			Suggest(context.Background(), q, "kids moved out")

		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, before, fallbacks())
		primary.AssertExpectations(t)
	})

	t.Run("primary fails", func(t *testing.T) {
		primary := new(MockSuggester)
		primary.On("Suggest", mock.Anything, q, "just married").
			Return(nil, errors.NewSuggestionUnavailableError(fmt.Errorf("timeout")))

		before := fallbacks()
		got, err := NewResilientSuggester(primary, NewKeywordSuggester(), logger.NewTestLogger(t)).
			Suggest(context.Background(), q, "just married")

		require.NoError(t, err)
		assert.Equal(t, SourceKeyword, got.Source)
		assert.Equal(t, "young_couple", got.Value)
		assert.Equal(t, before+1, fallbacks())
	})

	t.Run("no primary", func(t *testing.T) {
		before := fallbacks()
		got, err := NewResilientSuggester(nil, NewKeywordSuggester(), logger.NewNoOpLogger()).
			Suggest(context.Background(), q, "just married")

		require.NoError(t, err)
		assert.Equal(t, SourceKeyword, got.Source)
		assert.Equal(t, before, fallbacks())
	})
}

// ==========================
// Narratives
// ==========================

func TestLabels(t *testing.T) {
	labels := Labels(rankedPlans())

	assert.Equal(t, []string{LabelBestValue}, labels["a"])
	assert.Equal(t, []string{LabelLowestPrice, LabelEasiestClaims}, labels["b"])
	assert.Equal(t, []string{LabelMostCoverage}, labels["c"])

	single := Labels(rankedPlans()[:1])
	assert.Equal(t, []string{LabelBestValue, LabelLowestPrice, LabelEasiestClaims}, single["a"])
	assert.Empty(t, Labels(nil))
}

func TestTemplateNarrator(t *testing.T) {
	plans := rankedPlans()
	got, err := NewTemplateNarrator().Narrate(context.Background(), nil, plans)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].PlanID)
	assert.Equal(t, "Provider a Term a", got[0].Title)
	assert.Equal(t, "Very good option with very affordable. $50.00 a month for $500,000 of cover.", got[0].Summary)
	assert.Contains(t, got[1].Summary, "easy claims process")
	assert.Contains(t, got[2].Summary, "Consider alternatives")
	assert.Contains(t, got[2].Summary, "Note: complex claims process.")
	assert.Contains(t, got[2].Summary, "$1,500,000")
}

func TestTemplateNarrator_UndefinedAffordability(t *testing.T) {
	plans := rankedPlans()[:1]
	plans[0].Score.Affordability = models.MetricScore{Defined: false}
	plans[0].Score.EaseOfClaims.Value = 70

	got, err := NewTemplateNarrator().Narrate(context.Background(), nil, plans)

	require.NoError(t, err)
	assert.Equal(t, "Very good option for your situation. $50.00 a month for $500,000 of cover.", got[0].Summary)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", thousands(0))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "250,000", thousands(250000))
	assert.Equal(t, "1,500,000", thousands(1500000))
	assert.Equal(t, "-25,000", thousands(-25000))
}

func genAIServer(t *testing.T, calls *int32, handler func(w http.ResponseWriter, body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer genai-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGenAI(t *testing.T, srv *httptest.Server) *GenAINarrator {
	return NewGenAINarrator(GenAIConfig{
		BaseURL:    srv.URL + "/",
		APIKey:     "genai-key",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))
}

func TestGenAINarrator_Success(t *testing.T) {
	var calls int32
	srv := genAIServer(t, &calls, func(w http.ResponseWriter, body map[string]interface{}) {
		assert.NotEmpty(t, body["prompt"])
		ctx := body["context"].(map[string]interface{})
		assert.Len(t, ctx["plans"], 3)

		text := "```json\n" + `{"narratives":[
			{"planId":"a","title":"Top pick","summary":"Balanced price and cover."},
			{"planId":"b","summary":"Cheapest with fast claims."},
			{"planId":"c","title":"Big cover","summary":"Most cover, slower claims."}
		]}` + "\n```"
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"text": text, "confidence": 0.8})
	})

	got, err := newGenAI(t, srv).Narrate(context.Background(), &models.ApplicantProfile{Age: 35}, rankedPlans())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Top pick", got[0].Title)
	assert.Equal(t, "Provider b Term b", got[1].Title)
	assert.Equal(t, "Most cover, slower claims.", got[2].Summary)
	assert.Equal(t, []string{LabelBestValue}, got[0].Labels)
	assert.Equal(t, []string{LabelMostCoverage}, got[2].Labels)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenAINarrator_Failures(t *testing.T) {
	t.Run("missing plan", func(t *testing.T) {
		var calls int32
		srv := genAIServer(t, &calls, func(w http.ResponseWriter, _ map[string]interface{}) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"text": `{"narratives":[{"planId":"a","summary":"only one"}]}`,
			})
		})
		_, err := newGenAI(t, srv).Narrate(context.Background(), nil, rankedPlans())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNarrativeUnavailable))
	})

	t.Run("unparseable text", func(t *testing.T) {
		var calls int32
		srv := genAIServer(t, &calls, func(w http.ResponseWriter, _ map[string]interface{}) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"text": "Sorry, I can't help."})
		})
		_, err := newGenAI(t, srv).Narrate(context.Background(), nil, rankedPlans())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNarrativeUnavailable))
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls int32
		srv := genAIServer(t, &calls, func(w http.ResponseWriter, _ map[string]interface{}) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := newGenAI(t, srv).Narrate(context.Background(), nil, rankedPlans())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNarrativeUnavailable))
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}

func TestGenAINarrator_NoPlans(t *testing.T) {
	n := NewGenAINarrator(GenAIConfig{BaseURL: "http://127.0.0.1:1"}, logger.NewNoOpLogger())
	got, err := n.Narrate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResilientNarrator(t *testing.T) {
	plans := rankedPlans()
	fallbacks := func() float64 { return fallbackCount(t, "narrative") }

	primary := new(MockNarrator)
	primary.On("Narrate", mock.Anything, mock.Anything, plans).
		Return(nil, errors.NewNarrativeUnavailableError(fmt.Errorf("down")))

	before := fallbacks()
	got, err := NewResilientNarrator(primary, NewTemplateNarrator(), logger.NewTestLogger(t)).
		Narrate(context.Background(), nil, plans)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{LabelBestValue}, got[0].Labels)
	assert.Equal(t, before+1, fallbacks())
	primary.AssertExpectations(t)
}
