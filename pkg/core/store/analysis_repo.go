package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zaguri8/earning-projections/pkg/core/metrics"
	"github.com/zaguri8/earning-projections/pkg/core/pipeline"
)

// AnalysisRepo stores completed runs: the parameter set, every historical
// and projected metric row, and the per-scenario valuation summaries.
type AnalysisRepo struct {
	pool *pgxpool.Pool
}

// NewAnalysisRepo wraps a connection pool.
func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id          UUID PRIMARY KEY,
	ticker      TEXT NOT NULL,
	params_json JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS metric_rows (
	run_id   UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	scenario TEXT NOT NULL,
	year     INT NOT NULL,
	metric   TEXT NOT NULL,
	value    DOUBLE PRECISION,
	PRIMARY KEY (run_id, scenario, year, metric)
);
CREATE TABLE IF NOT EXISTS valuations (
	run_id         UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	scenario       TEXT NOT NULL,
	dcf_value      DOUBLE PRECISION NOT NULL,
	pe_value       DOUBLE PRECISION NOT NULL,
	final_year_fcf DOUBLE PRECISION NOT NULL,
	final_year_eps DOUBLE PRECISION,
	PRIMARY KEY (run_id, scenario)
);
`

// EnsureSchema creates the repository tables when they do not exist.
func (r *AnalysisRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun persists one pipeline result and returns its run ID.
func (r *AnalysisRepo) SaveRun(ctx context.Context, result *pipeline.Result) (uuid.UUID, error) {
	runID := uuid.New()

	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal params: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO analysis_runs (id, ticker, params_json, created_at) VALUES ($1, $2, $3, $4)`,
		runID, result.Ticker, paramsJSON, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	if err := insertRows(ctx, tx, runID, "historical", result.History.Rows()); err != nil {
		return uuid.Nil, err
	}
	for scenario, table := range result.Projections {
		if err := insertRows(ctx, tx, runID, string(scenario), table.Rows); err != nil {
			return uuid.Nil, err
		}
	}

	for scenario, summary := range result.Valuations {
		_, err = tx.Exec(ctx,
			`INSERT INTO valuations (run_id, scenario, dcf_value, pe_value, final_year_fcf, final_year_eps)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, string(scenario), summary.DCFValue, summary.PEValue,
			summary.FinalYearFCF, summary.FinalYearEPS)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert valuation for %s: %w", scenario, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func insertRows(ctx context.Context, tx pgx.Tx, runID uuid.UUID, scenario string, rows []*metrics.Record) error {
	for _, row := range rows {
		for _, m := range metrics.Columns() {
			v := row.Value(m)
			if v == nil {
				continue
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO metric_rows (run_id, scenario, year, metric, value) VALUES ($1, $2, $3, $4, $5)`,
				runID, scenario, row.Year, string(m), *v)
			if err != nil {
				return fmt.Errorf("insert %s metric %s for %d: %w", scenario, m, row.Year, err)
			}
		}
	}
	return nil
}
