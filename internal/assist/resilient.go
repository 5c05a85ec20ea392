package assist

import (
	"context"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/metrics"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/questionnaire"
)

// ResilientSuggester tries the primary suggester and falls back on any
// error. A nil primary goes straight to the fallback.
type ResilientSuggester struct {
	primary  Suggester
	fallback Suggester
	logger   logger.Logger
}

func NewResilientSuggester(primary, fallback Suggester, log logger.Logger) *ResilientSuggester {
	return &ResilientSuggester{
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"capability": "suggestion"}),
	}
}

func (r *ResilientSuggester) Suggest(ctx context.Context, q *questionnaire.Question, description string) (*Suggestion, error) {
	if r.primary != nil {
		s, err := r.primary.Suggest(ctx, q, description)
		if err == nil {
			return s, nil
		}
		r.logger.Warn("suggestion service failed, using fallback", map[string]interface{}{
			"questionId": q.ID,
			"error":      err.Error(),
			"code":       errors.Normalize(err).Code,
		})
		metrics.FallbacksUsed.WithLabelValues("suggestion").Inc()
	}
	return r.fallback.Suggest(ctx, q, description)
}

// ResilientNarrator is the Narrator counterpart of ResilientSuggester.
type ResilientNarrator struct {
	primary  Narrator
	fallback Narrator
	logger   logger.Logger
}

func NewResilientNarrator(primary, fallback Narrator, log logger.Logger) *ResilientNarrator {
	return &ResilientNarrator{
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"capability": "narrative"}),
	}
}

func (r *ResilientNarrator) Narrate(ctx context.Context, profile *models.ApplicantProfile, plans []models.ScoredPlan) ([]models.PlanNarrative, error) {
	if r.primary != nil {
		out, err := r.primary.Narrate(ctx, profile, plans)
		if err == nil {
			return out, nil
		}
		r.logger.Warn("narrative service failed, using fallback", map[string]interface{}{
			"plans": len(plans),
			"error": err.Error(),
			"code":  errors.Normalize(err).Code,
		})
		metrics.FallbacksUsed.WithLabelValues("narrative").Inc()
	}
	return r.fallback.Narrate(ctx, profile, plans)
}
