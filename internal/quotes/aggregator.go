package quotes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/metrics"
	"insurance-advisor/internal/models"
)

// DefaultProviderTimeout applies to providers without their own timeout.
const DefaultProviderTimeout = 3 * time.Second

// CallRecorder receives one observation per provider call.
type CallRecorder interface {
	RecordProviderCall(ctx context.Context, providerID, status string, duration time.Duration)
}

// Aggregator fans a quote request out to every eligible provider.
type Aggregator struct {
	providers      []Provider
	defaultTimeout time.Duration
	log            logger.Logger
	recorder       CallRecorder
	tracer         trace.Tracer
	now            func() time.Time
	newID          func() string
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithDefaultTimeout sets the timeout for providers that declare none.
func WithDefaultTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.defaultTimeout = d
		}
	}
}

// WithRecorder attaches a per-call recorder such as observability.Observability.
func WithRecorder(r CallRecorder) AggregatorOption {
	return func(a *Aggregator) { a.recorder = r }
}

// WithTracer replaces the global otel tracer.
func WithTracer(t trace.Tracer) AggregatorOption {
	return func(a *Aggregator) { a.tracer = t }
}

func NewAggregator(providers []Provider, log logger.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		providers:      providers,
		defaultTimeout: DefaultProviderTimeout,
		log:            log,
		tracer:         otel.Tracer("insurance-advisor/quotes"),
		now:            func() time.Time { return time.Now().UTC() },
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Providers returns the registered providers.
func (a *Aggregator) Providers() []Provider {
	return append([]Provider(nil), a.providers...)
}

type providerResult struct {
	providerID string
	plan       *models.QuotePlan
	err        error
}

// GetQuotes prices req with every provider that offers the product type.
// It never fails: providers that error, panic or time out are listed in
// Unavailable, and with no successes the set is simply empty.
func (a *Aggregator) GetQuotes(ctx context.Context, profile *models.ApplicantProfile, req models.QuoteRequest) *models.QuoteSet {
	started := time.Now()
	defer func() { metrics.QuoteAggregationDuration.Observe(time.Since(started).Seconds()) }()

	if req.CoverageAmount <= 0 {
		req.CoverageAmount = profile.CoverageAmount
	}

	set := &models.QuoteSet{
		ID:          a.newID(),
		SessionID:   profile.SessionID,
		Request:     req,
		Plans:       []models.QuotePlan{},
		GeneratedAt: a.now(),
	}

	var eligible []Provider
	for _, p := range a.providers {
		if p.Offers(req.ProductType) {
			eligible = append(eligible, p)
		}
	}

	results := make(chan providerResult, len(eligible))
	for _, p := range eligible {
		go func(p Provider) {
			results <- a.callProvider(ctx, p, profile, req)
		}(p)
	}

	for range eligible {
		r := <-results
		if r.err != nil {
			stdErr := errors.Normalize(r.err)
			reason := stdErr.Details
			if v, ok := stdErr.Metadata["reason"].(string); ok {
				reason = v
			}
			set.Unavailable = append(set.Unavailable, models.ProviderFailure{ProviderID: r.providerID, Reason: reason})
			a.log.Warn("Quote provider unavailable", map[string]interface{}{
				"providerId": r.providerID,
				"reason":     reason,
				"error":      r.err,
			})
			continue
		}
		set.Plans = append(set.Plans, *r.plan)
	}

	sort.Slice(set.Plans, func(i, j int) bool { return set.Plans[i].ProviderID < set.Plans[j].ProviderID })
	sort.Slice(set.Unavailable, func(i, j int) bool { return set.Unavailable[i].ProviderID < set.Unavailable[j].ProviderID })
	set.Skipped = len(set.Unavailable)

	a.log.Info("Quotes aggregated", map[string]interface{}{
		"sessionId":   profile.SessionID,
		"productType": string(req.ProductType),
		"eligible":    len(eligible),
		"plans":       len(set.Plans),
		"skipped":     set.Skipped,
	})
	return set
}

// callProvider runs one provider under its own deadline. The call itself
// runs in a separate goroutine so a provider that ignores its context
// still cannot hold the aggregation past the deadline.
func (a *Aggregator) callProvider(ctx context.Context, p Provider, profile *models.ApplicantProfile, req models.QuoteRequest) (res providerResult) {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = a.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := a.tracer.Start(ctx, "quotes.provider",
		trace.WithAttributes(
			attribute.String("provider.id", p.ID()),
			attribute.String("product.type", string(req.ProductType)),
		))
	started := time.Now()

	defer func() {
		status := "success"
		if res.err != nil {
			status = "failed"
			if errors.IsCode(res.err, errors.ErrCodeQuoteProviderFailed) {
				if se, _ := errors.AsStandardError(res.err); se.Metadata["reason"] == "timeout" {
					status = "timeout"
				}
			}
			span.RecordError(res.err)
			span.SetStatus(codes.Error, status)
		}
		span.End()
		metrics.ProviderRequests.WithLabelValues(p.ID(), status).Inc()
		if a.recorder != nil {
			a.recorder.RecordProviderCall(ctx, p.ID(), status, time.Since(started))
		}
	}()

	done := make(chan providerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- providerResult{providerID: p.ID(),
					err: errors.NewQuoteProviderError(p.ID(), "panic", fmt.Errorf("%v", r))}
			}
		}()
		plan, err := p.Quote(ctx, profile, req)
		if err == nil && plan == nil {
			err = fmt.Errorf("provider returned no plan")
		}
		if err != nil && !errors.IsCode(err, errors.ErrCodeQuoteProviderFailed) {
			err = errors.NewQuoteProviderError(p.ID(), "error", err)
		}
		done <- providerResult{providerID: p.ID(), plan: plan, err: err}
	}()

	select {
	case res = <-done:
		return res
	case <-ctx.Done():
		return providerResult{providerID: p.ID(), err: errors.NewQuoteProviderError(p.ID(), "timeout", ctx.Err())}
	}
}
