// internal/workers/quotes/get-quotes/service.go
package getquotes

import (
	"context"
	"fmt"
	"strings"

	"insurance-advisor/internal/assist"
	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/profile"
	"insurance-advisor/internal/storage"
)

type SessionReader interface {
	Get(ctx context.Context, id string) (*models.Session, error)
}

type QuoteSource interface {
	GetQuotes(ctx context.Context, profile *models.ApplicantProfile, req models.QuoteRequest) *models.QuoteSet
}

type Scorer interface {
	ScoreSet(set *models.QuoteSet, profile *models.ApplicantProfile) []models.ScoredPlan
}

// Service runs the post-questionnaire pipeline for one session: profile
// conversion, quote fan-out, scoring and narratives. Each stage's output is
// persisted before the next one runs.
type Service struct {
	sessions  SessionReader
	converter *profile.Converter
	quotes    QuoteSource
	scorer    Scorer
	narrator  assist.Narrator
	results   storage.ResultStore
	logger    logger.Logger
}

type ServiceDependencies struct {
	Sessions  SessionReader
	Converter *profile.Converter
	Quotes    QuoteSource
	Scorer    Scorer
	Narrator  assist.Narrator
	Results   storage.ResultStore
}

func NewService(deps ServiceDependencies, log logger.Logger) *Service {
	converter := deps.Converter
	if converter == nil {
		converter = profile.NewConverter(nil)
	}
	return &Service{
		sessions:  deps.Sessions,
		converter: converter,
		quotes:    deps.Quotes,
		scorer:    deps.Scorer,
		narrator:  deps.Narrator,
		results:   deps.Results,
		logger:    log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionCompleted {
		return nil, errors.NewSessionStateError(session.ID, string(session.Status), "get_quotes")
	}

	applicant := s.converter.ToApplicantProfile(session)
	if err := s.results.SaveProfile(ctx, applicant); err != nil {
		return nil, err
	}

	req := models.QuoteRequest{
		ProductType:    applicant.ProductType,
		CoverageAmount: applicant.CoverageAmount,
	}
	if input.ProductType != "" {
		req.ProductType = models.ProductType(strings.ToUpper(input.ProductType))
	}
	if input.CoverageAmount > 0 {
		req.CoverageAmount = input.CoverageAmount
	}

	set := s.quotes.GetQuotes(ctx, applicant, req)
	set.SessionID = session.ID
	if err := s.results.SaveQuoteSet(ctx, set); err != nil {
		return nil, err
	}

	scored := s.scorer.ScoreSet(set, applicant)
	if err := s.results.SaveScores(ctx, set, scored); err != nil {
		return nil, err
	}

	narratives, err := s.narrator.Narrate(ctx, applicant, scored)
	if err != nil {
		s.logger.Warn("narratives unavailable", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}
	byPlan := make(map[string]models.PlanNarrative, len(narratives))
	for _, n := range narratives {
		byPlan[n.PlanID] = n
	}

	out := &Output{
		QuoteSetID:     set.ID,
		ProfileSummary: summarize(applicant, set.Request),
		Plans:          make([]PlanResult, 0, len(scored)),
		Skipped:        set.Skipped,
		Unavailable:    set.Unavailable,
	}
	if out.Unavailable == nil {
		out.Unavailable = []models.ProviderFailure{}
	}
	for _, sp := range scored {
		pr := PlanResult{Rank: sp.Rank, Plan: sp.Plan, Score: sp.Score}
		if n, ok := byPlan[sp.Plan.ID]; ok {
			pr.Narrative = &n
		}
		out.Plans = append(out.Plans, pr)
	}

	s.logger.Info("quotes ready", map[string]interface{}{
		"sessionId":   session.ID,
		"quoteSetId":  set.ID,
		"productType": set.Request.ProductType,
		"plans":       len(out.Plans),
		"skipped":     set.Skipped,
	})
	return out, nil
}

func validateInput(input *Input) error {
	if input.SessionID == "" {
		return errors.NewValidationError("sessionId", "sessionId is required")
	}
	if input.ProductType != "" && !models.ProductType(strings.ToUpper(input.ProductType)).Valid() {
		return errors.NewValidationError("productType", fmt.Sprintf("unknown product type %q", input.ProductType))
	}
	if input.CoverageAmount < 0 {
		return errors.NewValidationError("coverageAmount", "coverageAmount cannot be negative")
	}
	return nil
}
