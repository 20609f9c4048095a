package graph

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/testutil"
)

// minimalSnapshot is small enough that its golden files stay reviewable.
func minimalSnapshot() *record.Snapshot {
	return &record.Snapshot{
		Releases: []record.Release{{
			ID:          "REL-2025-01-15",
			Title:       "January drop",
			Status:      record.ReleasePlanned,
			ReleaseDate: "2025-01-15",
		}},
		Features: []record.Feature{{
			ID:     "FEAT-001",
			Title:  "Invoicing",
			Status: record.StatusActive,
		}},
		Epics: []record.Epic{{
			ID:         "EPIC-001",
			Title:      "Invoice pipeline",
			Status:     record.StatusActive,
			FeatureRef: "FEAT-001",
			Versions: []record.EpicVersion{{
				Version:    1,
				Status:     record.EpicDraft,
				ReleaseRef: "REL-2025-01-15",
				Summary:    "Initial pipeline.",
			}},
		}},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBuildGolden(t *testing.T) {
	g := Build(minimalSnapshot())

	data, err := record.EncodeStable(g)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "graph", data)
}

func TestBuildIndexGolden(t *testing.T) {
	idx := BuildIndex(minimalSnapshot())

	data, err := record.EncodeStable(idx)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "index", data)
}

func TestBuildIdempotent(t *testing.T) {
	snap := testutil.SeedSnapshot()

	first, err := record.EncodeStable(Build(snap))
	require.NoError(t, err)
	second, err := record.EncodeStable(Build(snap))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	firstIdx, err := record.EncodeStable(BuildIndex(snap))
	require.NoError(t, err)
	secondIdx, err := record.EncodeStable(BuildIndex(snap))
	require.NoError(t, err)
	assert.Equal(t, string(firstIdx), string(secondIdx))
}

func TestBuildSeedShape(t *testing.T) {
	g := Build(testutil.SeedSnapshot())

	assert.Equal(t, len(g.Nodes), g.Metadata.NodeCount)
	assert.Equal(t, len(g.Edges), g.Metadata.EdgeCount)

	// Nodes ordered by (type, id).
	for i := 1; i < len(g.Nodes); i++ {
		prev, cur := g.Nodes[i-1], g.Nodes[i]
		ordered := prev.Type < cur.Type || (prev.Type == cur.Type && prev.ID < cur.ID)
		assert.True(t, ordered, "nodes out of order at %d: %v then %v", i, prev, cur)
	}

	// Every edge endpoint resolves to a node.
	byID := map[string]bool{}
	for _, n := range g.Nodes {
		byID[n.ID] = true
	}
	for _, e := range g.Edges {
		assert.True(t, byID[e.Source], "edge source %q has no node", e.Source)
		assert.True(t, byID[e.Target], "edge target %q has no node", e.Target)
	}
}

func TestBuildEmptyParentRefsEmitNoEdges(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].FeatureRef = ""
	snap.Stories[0].EpicRef = ""

	g := Build(snap)

	byID := map[string]bool{}
	for _, n := range g.Nodes {
		byID[n.ID] = true
	}
	for _, e := range g.Edges {
		assert.NotEqual(t, EdgeScopedBy, e.Type, "unexpected edge %v", e)
		assert.NotEqual(t, EdgeBelongsTo, e.Type, "unexpected edge %v", e)
		assert.True(t, byID[e.Target], "edge target %q has no node", e.Target)
	}
}

func TestBuildSupersedesEdges(t *testing.T) {
	g := Build(testutil.SeedSnapshot())

	assert.Contains(t, g.Edges, Edge{
		Source: "EPIC-001:v2",
		Type:   EdgeSupersedes,
		Target: "EPIC-001:v1",
	})
	// REQ-002 was superseded by REQ-003: edge runs newer to older.
	assert.Contains(t, g.Edges, Edge{
		Source: "REQ-003",
		Type:   EdgeSupersedes,
		Target: "REQ-002",
	})
}

func TestBuildIndexCurrentVersion(t *testing.T) {
	idx := BuildIndex(testutil.SeedSnapshot())

	epic := idx.ByID["EPIC-001"]
	assert.Equal(t, 2, epic.CurrentVersion)
	assert.Equal(t, 2, epic.VersionCount)
	assert.Equal(t, "REL-2025-01-15", epic.ReleaseRef)

	story := idx.ByID["STORY-001"]
	assert.Equal(t, 1, story.CurrentVersion)

	assert.ElementsMatch(t, []string{"EPIC-001:v2", "STORY-001:v1"}, idx.ByRelease["REL-2025-01-15"])
	assert.Equal(t, []string{"EPIC-001:v1"}, idx.ByRelease["REL-2024-12-01"])
}

func TestWriteProjections(t *testing.T) {
	dir := t.TempDir()
	snap := minimalSnapshot()

	require.NoError(t, WriteGraph(dir, Build(snap)))
	require.NoError(t, WriteIndex(dir, BuildIndex(snap)))

	// Rewrites are byte-stable.
	require.NoError(t, WriteGraph(dir, Build(snap)))
}
