package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/http"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
)

const narratePrompt = `Write short display copy for each insurance plan below.
Reply with JSON only: {"narratives":[{"planId":"...","title":"...","summary":"..."}]}
with exactly one entry per plan. Keep each summary under 40 words, plain and
factual, and mention what stands out in the scores.`

// GenAIConfig configures the remote narrator.
type GenAIConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// GenAINarrator asks the generation endpoint for titles and summaries.
// Labels are always computed locally.
type GenAINarrator struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	logger  logger.Logger
}

func NewGenAINarrator(cfg GenAIConfig, log logger.Logger) *GenAINarrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := http.NewClient(timeout, cfg.MaxRetries)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &GenAINarrator{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "genai-narrator"}),
	}
}

type generateRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type generateResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type planContext struct {
	PlanID         string  `json:"planId"`
	Rank           int     `json:"rank"`
	Provider       string  `json:"provider"`
	Product        string  `json:"product"`
	MonthlyPremium float64 `json:"monthlyPremium"`
	CoverageAmount float64 `json:"coverageAmount"`
	Composite      float64 `json:"composite"`
	Affordability  float64 `json:"affordability,omitempty"`
	EaseOfClaims   float64 `json:"easeOfClaims"`
	CoverageRatio  float64 `json:"coverageRatio"`
}

func (n *GenAINarrator) Narrate(ctx context.Context, profile *models.ApplicantProfile, plans []models.ScoredPlan) ([]models.PlanNarrative, error) {
	if len(plans) == 0 {
		return []models.PlanNarrative{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	planCtx := make([]planContext, 0, len(plans))
	for _, sp := range plans {
		pc := planContext{
			PlanID:         sp.Plan.ID,
			Rank:           sp.Rank,
			Provider:       sp.Plan.ProviderName,
			Product:        sp.Plan.ProductName,
			MonthlyPremium: sp.Plan.MonthlyPremium,
			CoverageAmount: sp.Plan.CoverageAmount,
			Composite:      sp.Score.Composite,
			EaseOfClaims:   sp.Score.EaseOfClaims.Value,
			CoverageRatio:  sp.Score.CoverageRatio.Value,
		}
		if sp.Score.Affordability.Defined {
			pc.Affordability = sp.Score.Affordability.Value
		}
		planCtx = append(planCtx, pc)
	}

	req := generateRequest{
		Prompt: narratePrompt,
		Context: map[string]interface{}{
			"applicant": applicantContext(profile),
			"plans":     planCtx,
		},
		MaxTokens:   800,
		Temperature: 0.4,
	}

	var resp generateResponse
	if err := n.client.PostJSON(ctx, n.baseURL+"/api/ai/generate", req, &resp); err != nil {
		return nil, errors.NewNarrativeUnavailableError(err)
	}

	var parsed struct {
		Narratives []models.PlanNarrative `json:"narratives"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &parsed); err != nil {
		return nil, errors.NewNarrativeUnavailableError(fmt.Errorf("decode narratives: %w", err))
	}

	byID := make(map[string]models.PlanNarrative, len(parsed.Narratives))
	for _, pn := range parsed.Narratives {
		byID[pn.PlanID] = pn
	}

	labels := Labels(plans)
	out := make([]models.PlanNarrative, 0, len(plans))
	for _, sp := range plans {
		pn, ok := byID[sp.Plan.ID]
		if !ok || strings.TrimSpace(pn.Summary) == "" {
			return nil, errors.NewNarrativeUnavailableError(fmt.Errorf("no narrative for plan %s", sp.Plan.ID))
		}
		if strings.TrimSpace(pn.Title) == "" {
			pn.Title = title(sp.Plan)
		}
		pn.Labels = labels[sp.Plan.ID]
		out = append(out, pn)
	}

	n.logger.Debug("narratives generated", map[string]interface{}{
		"plans":      len(out),
		"confidence": resp.Confidence,
	})
	return out, nil
}

func applicantContext(p *models.ApplicantProfile) map[string]interface{} {
	if p == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"age":            p.Age,
		"lifeStage":      p.LifeStage,
		"mainConcern":    p.MainConcern,
		"productType":    p.ProductType,
		"coverageAmount": p.CoverageAmount,
		"decisionFactor": p.DecisionFactor,
	}
}

// extractJSON trims prose or code fences around the first JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
