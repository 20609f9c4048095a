package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndTail(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	entries := []Entry{
		{OpID: "op-0001", Op: "create_release", Payload: `{"id":"REL-2025-01-15"}`, Message: "created release REL-2025-01-15", AppliedAt: "2025-02-01T12:00:01Z"},
		{OpID: "op-0002", Op: "add_requirement", Payload: `{"title":"T"}`, Message: "added requirement REQ-001", AppliedAt: "2025-02-01T12:00:02Z"},
		{OpID: "op-0003", Op: "add_feature", Payload: `{"title":"F"}`, Message: "added feature FEAT-001", AppliedAt: "2025-02-01T12:00:03Z"},
	}
	for _, e := range entries {
		require.NoError(t, j.Append(ctx, e))
	}

	tail, err := j.Tail(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)

	// Newest first, with monotonic sequence numbers.
	assert.Equal(t, "op-0003", tail[0].OpID)
	assert.Equal(t, "op-0002", tail[1].OpID)
	assert.Greater(t, tail[0].Seq, tail[1].Seq)
	assert.Equal(t, "added feature FEAT-001", tail[0].Message)
}

func TestAppendIdempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	e := Entry{OpID: "op-0001", Op: "create_release", Payload: "{}", Message: "m", AppliedAt: "2025-02-01T12:00:01Z"}
	require.NoError(t, j.Append(ctx, e))
	require.NoError(t, j.Append(ctx, e))

	tail, err := j.Tail(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tail, 1)
}

func TestTailEmpty(t *testing.T) {
	j := openTestJournal(t)

	tail, err := j.Tail(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, tail)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Append(context.Background(), Entry{OpID: "op-0001", Op: "x", Payload: "{}", Message: "m", AppliedAt: "2025-02-01T12:00:01Z"}))
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	tail, err := j2.Tail(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "op-0001", tail[0].OpID)
}
