package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/testutil"
)

func TestLoadAllMissingFiles(t *testing.T) {
	s := New(t.TempDir())

	snap, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, snap.Releases)
	assert.Empty(t, snap.Stories)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	snap := testutil.SeedSnapshot()

	require.NoError(t, s.SaveAll(snap))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, snap.Releases, loaded.Releases)
	assert.Equal(t, snap.Epics, loaded.Epics)
	assert.Equal(t, snap.Stories, loaded.Stories)
}

func TestSaveIsByteStable(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	snap := testutil.SeedSnapshot()

	require.NoError(t, s.SaveAll(snap))
	first, err := os.ReadFile(filepath.Join(dir, "epics.json"))
	require.NoError(t, err)

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.NoError(t, s.SaveAll(loaded))

	second, err := os.ReadFile(filepath.Join(dir, "epics.json"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSaveOrdersByID(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	snap := &record.Snapshot{
		Requirements: []record.Requirement{
			{ID: "REQ-003", DomainRefs: []string{}, Tags: []string{}},
			{ID: "REQ-001", DomainRefs: []string{}, Tags: []string{}},
			{ID: "REQ-002", DomainRefs: []string{}, Tags: []string{}},
		},
	}
	require.NoError(t, s.Save(snap, record.FamilyRequirements))

	loaded, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded.Requirements, 3)
	assert.Equal(t, "REQ-001", loaded.Requirements[0].ID)
	assert.Equal(t, "REQ-002", loaded.Requirements[1].ID)
	assert.Equal(t, "REQ-003", loaded.Requirements[2].ID)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "releases.json"), []byte("{not json"), 0o644))

	_, err := New(dir).LoadAll()
	require.Error(t, err)
	assert.Equal(t, record.CodeCorruptStore, record.CodeOf(err))
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "releases.json"), []byte("\n"), 0o644))

	snap, err := New(dir).LoadAll()
	require.NoError(t, err)
	assert.Empty(t, snap.Releases)
}

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte("[]\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte("1\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("2\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}
