package storage

import (
	"context"
	"sort"
	"sync"

	"insurance-advisor/internal/models"
)

// Results is everything persisted for one session's quote run.
type Results struct {
	SessionID string                   `json:"sessionId"`
	Profile   *models.ApplicantProfile `json:"profile,omitempty"`
	QuoteSet  *models.QuoteSet         `json:"quoteSet,omitempty"`
	Scores    []models.ScoredPlan      `json:"scores,omitempty"`
}

// ResultStore persists profiles, quote sets and scores keyed by session id.
// LoadResults returns the latest quote set and its scores.
type ResultStore interface {
	SaveProfile(ctx context.Context, profile *models.ApplicantProfile) error
	SaveQuoteSet(ctx context.Context, set *models.QuoteSet) error
	SaveScores(ctx context.Context, set *models.QuoteSet, scored []models.ScoredPlan) error
	LoadResults(ctx context.Context, sessionID string) (*Results, error)
}

// MemoryResultStore is a ResultStore for tests and single-process runs.
type MemoryResultStore struct {
	mu       sync.RWMutex
	profiles map[string]models.ApplicantProfile
	sets     map[string][]models.QuoteSet
	scores   map[string][]models.ScoredPlan // by quote set id
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		profiles: make(map[string]models.ApplicantProfile),
		sets:     make(map[string][]models.QuoteSet),
		scores:   make(map[string][]models.ScoredPlan),
	}
}

func (m *MemoryResultStore) SaveProfile(_ context.Context, profile *models.ApplicantProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.SessionID] = *profile
	return nil
}

func (m *MemoryResultStore) SaveQuoteSet(_ context.Context, set *models.QuoteSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.SessionID] = append(m.sets[set.SessionID], *set)
	return nil
}

func (m *MemoryResultStore) SaveScores(_ context.Context, set *models.QuoteSet, scored []models.ScoredPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[set.ID] = append([]models.ScoredPlan(nil), scored...)
	return nil
}

func (m *MemoryResultStore) LoadResults(_ context.Context, sessionID string) (*Results, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := &Results{SessionID: sessionID}
	if p, ok := m.profiles[sessionID]; ok {
		res.Profile = &p
	}
	if sets := m.sets[sessionID]; len(sets) > 0 {
		latest := sets[len(sets)-1]
		res.QuoteSet = &latest
		res.Scores = append([]models.ScoredPlan(nil), m.scores[latest.ID]...)
		sort.SliceStable(res.Scores, func(i, j int) bool { return res.Scores[i].Rank < res.Scores[j].Rank })
	}
	return res, nil
}
