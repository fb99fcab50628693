package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoRuns is returned by LatestRun on an empty manifest.
var ErrNoRuns = errors.New("manifest has no runs")

// Run summarizes one generation run.
type Run struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Records int    `json:"records"`
}

// ListRuns returns all runs in logical order, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, COUNT(rec.run_id)
		FROM runs r
		LEFT JOIN records rec ON rec.run_id = r.id
		GROUP BY r.id, r.seq
		ORDER BY r.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Seq, &run.Records); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}

// LatestRun returns the run with the highest logical sequence number.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.seq, COUNT(rec.run_id)
		FROM runs r
		LEFT JOIN records rec ON rec.run_id = r.id
		GROUP BY r.id, r.seq
		ORDER BY r.seq DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Seq, &run.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}

	return &run, nil
}

// RunRecords returns the records of one run ordered by file, receiver and
// method, so output is deterministic for a given manifest state.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, file, receiver, method, invariant, timing, output_hash
		FROM records
		WHERE run_id = ?
		ORDER BY file, receiver, method
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.RunID,
			&rec.File,
			&rec.Receiver,
			&rec.Method,
			&rec.Invariant,
			&rec.Timing,
			&rec.OutputHash,
		); err != nil {
			return nil, fmt.Errorf("run records: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run records: %w", err)
	}

	return records, nil
}
