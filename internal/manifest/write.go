package manifest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Record is one generated wrapper pair within a run.
type Record struct {
	RunID      string `json:"run_id"`
	File       string `json:"file"`
	Receiver   string `json:"receiver"`
	Method     string `json:"method"`
	Invariant  string `json:"invariant"`
	Timing     string `json:"timing"`
	OutputHash string `json:"output_hash"`
}

// BeginRun inserts a new run and returns its ID. Run IDs are UUIDv7, so
// lexicographic-by-time ordering is recoverable from the ID; ordering within
// the store itself uses the logical seq column.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, seq) VALUES (?, ?)", id, seq,
	); err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	return id, nil
}

// WriteRecord inserts a record into the manifest.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same
// (run, file, receiver, method) twice is silently ignored.
// Other constraint violations (e.g. unknown run_id) still return errors.
func (s *Store) WriteRecord(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records
		(run_id, file, receiver, method, invariant, timing, output_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, file, receiver, method) DO NOTHING
	`,
		rec.RunID,
		rec.File,
		rec.Receiver,
		rec.Method,
		rec.Invariant,
		rec.Timing,
		rec.OutputHash,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return nil
}
