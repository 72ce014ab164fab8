// internal/tuning/sqlstore.go
//
// SQLite-backed Recorder.
//
// Responsibilities:
//   - Insert a tuning_runs row once a run has its baseline, and close it on finish.
//   - Append one tuning_cycles row per finished cycle.
//   - List runs and cycles for the CLI and the /tuning routes.

package tuning

import (
	"context"
	"database/sql"
	"time"
)

// SQLRecorder persists run and cycle summaries to the tuning_runs and
// tuning_cycles tables. Weights are never stored.
type SQLRecorder struct{ db *sql.DB }

// NewSQLRecorder wraps an open, migrated database.
func NewSQLRecorder(db *sql.DB) *SQLRecorder { return &SQLRecorder{db: db} }

// RunRow is one row of tuning_runs.
type RunRow struct {
	ID         string  `json:"id"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt string  `json:"finishedAt,omitempty"`
	Iterations int     `json:"iterations"`
	StepSize   float64 `json:"stepSize"`
	Friction   float64 `json:"friction"`
	Final      float64 `json:"final"`
}

func (r *SQLRecorder) StartRun(ctx context.Context, runID string, cfg Config, iterations int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tuning_runs (id, started_at, iterations, step_size, friction, seed)
		 VALUES (?,?,?,?,?,?)`,
		runID, time.Now().UTC().Format(time.RFC3339), iterations, cfg.StepSize, cfg.Friction, cfg.Seed)
	return err
}

func (r *SQLRecorder) RecordCycle(ctx context.Context, runID string, c CycleReport) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tuning_cycles (run_id, cycle, baseline, best, step_size, accepted, games)
		 VALUES (?,?,?,?,?,?,?)`,
		runID, c.Cycle, c.Baseline, c.Best, c.StepSize, c.Accepted, c.Games)
	return err
}

func (r *SQLRecorder) FinishRun(ctx context.Context, runID string, final float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tuning_runs SET finished_at=?, final=? WHERE id=?`,
		time.Now().UTC().Format(time.RFC3339), final, runID)
	return err
}

// Runs lists the most recent runs, newest first.
func (r *SQLRecorder) Runs(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at,''), iterations, step_size, friction, COALESCE(final,0)
		 FROM tuning_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunRow, 0, limit)
	for rows.Next() {
		var rr RunRow
		if err := rows.Scan(&rr.ID, &rr.StartedAt, &rr.FinishedAt, &rr.Iterations, &rr.StepSize, &rr.Friction, &rr.Final); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// Cycles returns the cycles of a run in order.
func (r *SQLRecorder) Cycles(ctx context.Context, runID string) ([]CycleReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cycle, baseline, best, step_size, accepted, games
		 FROM tuning_cycles WHERE run_id=? ORDER BY cycle ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CycleReport
	for rows.Next() {
		var c CycleReport
		if err := rows.Scan(&c.Cycle, &c.Baseline, &c.Best, &c.StepSize, &c.Accepted, &c.Games); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
