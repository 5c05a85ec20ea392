package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/models"
)

func sampleQuoteSet() *models.QuoteSet {
	return &models.QuoteSet{
		ID:        "qs-1",
		SessionID: "s1",
		Request:   models.QuoteRequest{ProductType: models.ProductLifeTerm, CoverageAmount: 500000},
		Plans: []models.QuotePlan{
			{ID: "p1", ProviderID: "guardian", MonthlyPremium: 41.2},
			{ID: "p2", ProviderID: "primecare", MonthlyPremium: 38.9},
		},
		Skipped:     1,
		Unavailable: []models.ProviderFailure{{ProviderID: "securelife", Reason: "timeout"}},
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func sampleScores() []models.ScoredPlan {
	return []models.ScoredPlan{
		{Plan: models.QuotePlan{ID: "p2"}, Score: models.PolicyScore{PlanID: "p2", Composite: 81.4}, Rank: 1},
		{Plan: models.QuotePlan{ID: "p1"}, Score: models.PolicyScore{PlanID: "p1", Composite: 77.0}, Rank: 2},
	}
}

// ==========================
// Memory Result Store
// ==========================

func TestMemoryResultStore_LatestSetWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryResultStore()

	require.NoError(t, store.SaveProfile(ctx, &models.ApplicantProfile{SessionID: "s1", Age: 34}))

	first := sampleQuoteSet()
	first.ID = "qs-0"
	require.NoError(t, store.SaveQuoteSet(ctx, first))
	require.NoError(t, store.SaveQuoteSet(ctx, sampleQuoteSet()))

	scores := sampleScores()
	scores[0], scores[1] = scores[1], scores[0]
	require.NoError(t, store.SaveScores(ctx, sampleQuoteSet(), scores))

	res, err := store.LoadResults(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, res.Profile)
	assert.Equal(t, 34, res.Profile.Age)
	assert.Equal(t, "qs-1", res.QuoteSet.ID)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, 1, res.Scores[0].Rank)
}

func TestMemoryResultStore_Empty(t *testing.T) {
	res, err := NewMemoryResultStore().LoadResults(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
	assert.Nil(t, res.QuoteSet)
	assert.Empty(t, res.Scores)
}

// ==========================
// Postgres Result Store
// ==========================

func newMockStore(t *testing.T) (*PostgresResultStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresResultStore(db), mock
}

func TestPostgresResultStore_SaveProfile(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applicant_profiles")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveProfile(context.Background(), &models.ApplicantProfile{SessionID: "s1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResultStore_SaveQuoteSet(t *testing.T) {
	store, mock := newMockStore(t)
	set := sampleQuoteSet()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quote_sets")).
		WithArgs("qs-1", "s1", "LIFE_TERM", 1, sqlmock.AnyArg(), set.GeneratedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveQuoteSet(context.Background(), set))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResultStore_SaveQuoteSetFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quote_sets")).
		WillReturnError(stderrors.New("relation \"quote_sets\" does not exist"))

	err := store.SaveQuoteSet(context.Background(), sampleQuoteSet())
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryExecutionFailed))
}

func TestPostgresResultStore_SaveScoresInTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO policy_scores")).
		WithArgs("qs-1", "p2", "s1", 1, 81.4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO policy_scores")).
		WithArgs("qs-1", "p1", "s1", 2, 77.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveScores(context.Background(), sampleQuoteSet(), sampleScores()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResultStore_SaveScoresRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO policy_scores")).
		WillReturnError(stderrors.New("deadlock detected"))
	mock.ExpectRollback()

	err := store.SaveScores(context.Background(), sampleQuoteSet(), sampleScores())
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryExecutionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResultStore_LoadResults(t *testing.T) {
	store, mock := newMockStore(t)

	profile, _ := json.Marshal(models.ApplicantProfile{SessionID: "s1", Age: 41})
	set, _ := json.Marshal(sampleQuoteSet())
	scores := sampleScores()
	s1, _ := json.Marshal(scores[0])
	s2, _ := json.Marshal(scores[1])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM applicant_profiles")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(profile))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload FROM quote_sets")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).AddRow("qs-1", set))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM policy_scores")).
		WithArgs("qs-1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(s1).AddRow(s2))

	res, err := store.LoadResults(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 41, res.Profile.Age)
	assert.Equal(t, 1, res.QuoteSet.Skipped)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, "p2", res.Scores[0].Plan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResultStore_LoadResultsNothingSaved(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM applicant_profiles")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload FROM quote_sets")).
		WillReturnError(sql.ErrNoRows)

	res, err := store.LoadResults(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
	assert.Nil(t, res.QuoteSet)
	assert.NoError(t, mock.ExpectationsWereMet())
}
