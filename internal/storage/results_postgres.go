package storage

import (
	"context"
	"database/sql"
	stderrors "errors"

	json "github.com/goccy/go-json"

	"insurance-advisor/internal/common/errors"
	"insurance-advisor/internal/models"
)

// PostgresResultStore writes results as JSONB payloads into the tables
// created by database.PostgresClient.Migrate.
type PostgresResultStore struct {
	db *sql.DB
}

func NewPostgresResultStore(db *sql.DB) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

const (
	upsertProfileSQL = `INSERT INTO applicant_profiles (session_id, payload)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO UPDATE SET payload = EXCLUDED.payload, created_at = NOW()`

	insertQuoteSetSQL = `INSERT INTO quote_sets (id, session_id, product_type, skipped, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	upsertScoreSQL = `INSERT INTO policy_scores (quote_set_id, plan_id, session_id, rank, composite, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (quote_set_id, plan_id) DO UPDATE
		SET rank = EXCLUDED.rank, composite = EXCLUDED.composite, payload = EXCLUDED.payload`

	selectProfileSQL = `SELECT payload FROM applicant_profiles WHERE session_id = $1`

	selectLatestQuoteSetSQL = `SELECT id, payload FROM quote_sets
		WHERE session_id = $1 ORDER BY generated_at DESC LIMIT 1`

	selectScoresSQL = `SELECT payload FROM policy_scores WHERE quote_set_id = $1 ORDER BY rank ASC`
)

func (p *PostgresResultStore) SaveProfile(ctx context.Context, profile *models.ApplicantProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if _, err := p.db.ExecContext(ctx, upsertProfileSQL, profile.SessionID, payload); err != nil {
		return errors.NewQueryExecutionFailedError("save_profile", err)
	}
	return nil
}

func (p *PostgresResultStore) SaveQuoteSet(ctx context.Context, set *models.QuoteSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return errors.NewInternalError(err)
	}
	_, err = p.db.ExecContext(ctx, insertQuoteSetSQL,
		set.ID, set.SessionID, string(set.Request.ProductType), set.Skipped, payload, set.GeneratedAt)
	if err != nil {
		return errors.NewQueryExecutionFailedError("save_quote_set", err)
	}
	return nil
}

// SaveScores writes all scores of a set in one transaction.
func (p *PostgresResultStore) SaveScores(ctx context.Context, set *models.QuoteSet, scored []models.ScoredPlan) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, sp := range scored {
		payload, err := json.Marshal(sp)
		if err != nil {
			return errors.NewInternalError(err)
		}
		if _, err := tx.ExecContext(ctx, upsertScoreSQL,
			set.ID, sp.Plan.ID, set.SessionID, sp.Rank, sp.Score.Composite, payload); err != nil {
			return errors.NewQueryExecutionFailedError("save_scores", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewQueryExecutionFailedError("save_scores_commit", err)
	}
	return nil
}

func (p *PostgresResultStore) LoadResults(ctx context.Context, sessionID string) (*Results, error) {
	res := &Results{SessionID: sessionID}

	var raw []byte
	err := p.db.QueryRowContext(ctx, selectProfileSQL, sessionID).Scan(&raw)
	switch {
	case err == nil:
		var profile models.ApplicantProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, errors.NewStoreFailedError("decode_profile", err)
		}
		res.Profile = &profile
	case !stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NewQueryExecutionFailedError("load_profile", err)
	}

	var setID string
	raw = nil
	err = p.db.QueryRowContext(ctx, selectLatestQuoteSetSQL, sessionID).Scan(&setID, &raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return res, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load_quote_set", err)
	}
	var set models.QuoteSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, errors.NewStoreFailedError("decode_quote_set", err)
	}
	res.QuoteSet = &set

	rows, err := p.db.QueryContext(ctx, selectScoresSQL, setID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load_scores", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan_score", err)
		}
		var sp models.ScoredPlan
		if err := json.Unmarshal(payload, &sp); err != nil {
			return nil, errors.NewStoreFailedError("decode_score", err)
		}
		res.Scores = append(res.Scores, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("load_scores", err)
	}
	return res, nil
}
