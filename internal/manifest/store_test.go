package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_AppliesPragmas(t *testing.T) {
	store := openTestStore(t)

	assert.NoError(t, store.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, store.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestBeginRun_AssignsSequentialSeqs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.BeginRun(ctx)
	require.NoError(t, err)
	second, err := store.BeginRun(ctx)
	require.NoError(t, err)

	require.NotEqual(t, first, second)

	// Both IDs are UUIDv7.
	for _, id := range []string{first, second} {
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].Seq)
	assert.Equal(t, int64(2), runs[1].Seq)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestWriteRecord_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx)
	require.NoError(t, err)

	rec := Record{
		RunID:      runID,
		File:       "counter.go",
		Receiver:   "Counter",
		Method:     "Add",
		Invariant:  "positive",
		Timing:     "before_and_after",
		OutputHash: "deadbeef",
	}
	require.NoError(t, store.WriteRecord(ctx, rec))

	records, err := store.RunRecords(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestWriteRecord_DuplicateIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx)
	require.NoError(t, err)

	rec := Record{
		RunID:      runID,
		File:       "counter.go",
		Receiver:   "Counter",
		Method:     "Add",
		Invariant:  "positive",
		Timing:     "before",
		OutputHash: "deadbeef",
	}
	require.NoError(t, store.WriteRecord(ctx, rec))
	require.NoError(t, store.WriteRecord(ctx, rec))

	records, err := store.RunRecords(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteRecord_UnknownRunRejected(t *testing.T) {
	store := openTestStore(t)

	err := store.WriteRecord(context.Background(), Record{
		RunID:      "no-such-run",
		File:       "counter.go",
		Receiver:   "Counter",
		Method:     "Add",
		Invariant:  "positive",
		Timing:     "before",
		OutputHash: "deadbeef",
	})
	assert.Error(t, err, "foreign key constraint must reject unknown runs")
}

func TestRunRecords_Ordering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx)
	require.NoError(t, err)

	for _, rec := range []Record{
		{RunID: runID, File: "z.go", Receiver: "Z", Method: "M", Invariant: "i", Timing: "before", OutputHash: "h1"},
		{RunID: runID, File: "a.go", Receiver: "B", Method: "M", Invariant: "i", Timing: "before", OutputHash: "h2"},
		{RunID: runID, File: "a.go", Receiver: "A", Method: "M", Invariant: "i", Timing: "before", OutputHash: "h3"},
	} {
		require.NoError(t, store.WriteRecord(ctx, rec))
	}

	records, err := store.RunRecords(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "h3", records[0].OutputHash)
	assert.Equal(t, "h2", records[1].OutputHash)
	assert.Equal(t, "h1", records[2].OutputHash)
}

func TestLatestRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	_, err = store.BeginRun(ctx)
	require.NoError(t, err)
	second, err := store.BeginRun(ctx)
	require.NoError(t, err)

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
	assert.Equal(t, int64(2), latest.Seq)
}
