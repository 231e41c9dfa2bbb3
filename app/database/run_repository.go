package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RunRepository = (*SQLRunRepository)(nil)

// SQLRunRepository tracks run metadata in sqlite
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) StartRun(runID, paramsJSON string, startedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO runs (run_id, params_json, status, started_at)
		VALUES (?, ?, ?, ?)
	`, runID, paramsJSON, RunStatusStarted, formatTS(startedAt))
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

func (r *SQLRunRepository) FinishRun(runID string, finishedAt time.Time, ingested, analyzed int) error {
	_, err := r.db.Exec(`
		UPDATE runs
		SET status = ?, finished_at = ?, ingested_count = ?, analyzed_count = ?
		WHERE run_id = ?
	`, RunStatusFinished, formatTS(finishedAt), ingested, analyzed, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (r *SQLRunRepository) FailRun(runID string, finishedAt time.Time, reason string) error {
	_, err := r.db.Exec(`
		UPDATE runs
		SET status = ?, finished_at = ?, error = ?
		WHERE run_id = ?
	`, RunStatusFailed, formatTS(finishedAt), reason, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run as failed: %w", err)
	}
	return nil
}

func (r *SQLRunRepository) GetRun(runID string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT run_id, params_json, status, started_at, finished_at, ingested_count, analyzed_count, error
		FROM runs
		WHERE run_id = ?
	`, runID)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (r *SQLRunRepository) ListRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT run_id, params_json, status, started_at, finished_at, ingested_count, analyzed_count, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, max(1, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func scanRun(scan func(...any) error) (*Run, error) {
	var run Run
	var started string
	var finished sql.NullString
	if err := scan(&run.RunID, &run.ParamsJSON, &run.Status, &started,
		&finished, &run.IngestedCount, &run.AnalyzedCount, &run.Error); err != nil {
		return nil, err
	}
	run.StartedAt = parseTS(started)
	if finished.Valid {
		t := parseTS(finished.String)
		run.FinishedAt = &t
	}
	return &run, nil
}
