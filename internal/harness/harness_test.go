package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqstore/internal/ledger"
	"github.com/roach88/reqstore/internal/record"
)

func runScenario(t *testing.T, name string) *record.Snapshot {
	t.Helper()

	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	require.Equal(t, name, sc.Name)

	snap, err := sc.Run(t.TempDir())
	require.NoError(t, err)
	return snap
}

func TestReleaseLifecycleScenario(t *testing.T) {
	snap := runScenario(t, "release_lifecycle")

	rel, ok := snap.ReleaseByID("REL-2025-06-01")
	require.True(t, ok)
	assert.Equal(t, record.ReleaseReleased, rel.Status)

	// The epic version bound before closing stands; the refused story
	// version never landed.
	epic, _ := snap.EpicByID("EPIC-001")
	require.Len(t, epic.Versions, 3)
	assert.Equal(t, "REL-2025-06-01", epic.Versions[2].ReleaseRef)

	story, _ := snap.StoryByID("STORY-001")
	assert.Len(t, story.Versions, 1)
}

func TestVersionSupersessionScenario(t *testing.T) {
	snap := runScenario(t, "version_supersession")

	epic, _ := snap.EpicByID("EPIC-001")
	require.Len(t, epic.Versions, 3)

	cur, ok := ledger.Current(record.VersionPtrs(epic.Versions))
	require.True(t, ok)
	assert.Equal(t, 3, cur.Version)
	assert.Equal(t, record.EpicApproved, cur.Status)
	assert.Equal(t, record.EpicSuperseded, epic.Versions[1].Status)
}

func TestStoryCompletenessScenario(t *testing.T) {
	snap := runScenario(t, "story_completeness")

	story, ok := snap.StoryByID("STORY-002")
	require.True(t, ok)
	require.Len(t, story.Versions, 2)

	cur, ok := ledger.Current(record.VersionPtrs(story.Versions))
	require.True(t, ok)
	assert.Equal(t, 2, cur.Version)
	assert.Equal(t, record.StoryReady, cur.Status)
	assert.NotEmpty(t, cur.AcceptanceCriteria)
}

func TestRunIsDeterministic(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "version_supersession.yaml"))
	require.NoError(t, err)

	first, err := sc.Run(t.TempDir())
	require.NoError(t, err)
	second, err := sc.Run(t.TempDir())
	require.NoError(t, err)

	a, err := record.EncodeStable(first)
	require.NoError(t, err)
	b, err := record.EncodeStable(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "scenarios", "missing.yaml"))
	require.Error(t, err)
}
