package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/testutil"
)

func codes(violations []Violation) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.Code
	}
	return out
}

func TestSeedSnapshotIsValid(t *testing.T) {
	violations := Check(testutil.SeedSnapshot(), Options{IncludeWarnings: true})
	assert.Empty(t, violations)
}

func TestSchemaShapeViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Releases[0].Status = "shipped"

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeSchemaShape)
}

func TestIDFormatViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Requirements[0].ID = "REQ-1"

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeIDFormat)
}

func TestDuplicateIDViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	dup := snap.Requirements[0]
	snap.Requirements = append(snap.Requirements, dup)

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeIDDuplicate)
}

func TestUnresolvedRefViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Stories[0].Versions[0].RequirementRefs = []string{"REQ-999"}

	violations := Check(snap, Options{})
	require.Contains(t, codes(violations), CodeUnresolvedRef)
}

func TestUnresolvedReleaseRefIsBlocking(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[1].ReleaseRef = "REL-2099-12-31"

	violations := Check(snap, Options{})
	found := false
	for _, v := range violations {
		if v.Code == CodeUnresolvedRef {
			found = true
			assert.Equal(t, SeverityBlocking, v.Severity)
		}
	}
	assert.True(t, found)
}

func TestLineageGapViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[1].Version = 3

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeLineageGap)
}

func TestNoVersionsViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Stories[0].Versions = nil

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeLineageGap)
}

func TestNoCurrentViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[1].Status = record.EpicSuperseded

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeNoCurrent)
}

func TestBrokenChainViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[1].Supersedes = nil

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeBrokenChain)
}

func TestStatusCoherenceViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[0].Status = record.EpicApproved

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeStatusCoherence)
}

func TestTemporalOrderViolation(t *testing.T) {
	snap := testutil.SeedSnapshot()
	// Rebind the current epic version to a release that predates v1's.
	snap.Releases = append(snap.Releases, record.Release{
		ID:          "REL-2024-06-01",
		Title:       "Ancient",
		Status:      record.ReleaseReleased,
		ReleaseDate: "2024-06-01",
		Description: "Old.",
		Tags:        []string{},
		CreatedAt:   testutil.FixedTime,
		UpdatedAt:   testutil.FixedTime,
	})
	snap.Epics[0].Versions[1].ReleaseRef = "REL-2024-06-01"

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeTemporalOrder)
}

func TestIncompleteStoryViolation(t *testing.T) {
	// A build-ready story version without acceptance criteria is a
	// blocking violation.
	snap := testutil.SeedSnapshot()
	snap.Stories[0].Versions[0].AcceptanceCriteria = []string{}

	violations := Check(snap, Options{})
	require.Contains(t, codes(violations), CodeIncompleteStory)
	for _, v := range violations {
		if v.Code == CodeIncompleteStory {
			assert.Equal(t, SeverityBlocking, v.Severity)
		}
	}
}

func TestIncompleteStoryNeedsIntent(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Stories[0].Versions[0].TestIntent = record.TestIntent{
		FailureModes: []string{},
		Guarantees:   []string{},
		Exclusions:   []string{},
	}

	violations := Check(snap, Options{})
	assert.Contains(t, codes(violations), CodeIncompleteStory)
}

func TestDraftStoryMayBeIncomplete(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Stories[0].Versions[0].Status = record.StoryDraft
	snap.Stories[0].Versions[0].AcceptanceCriteria = []string{}

	violations := Check(snap, Options{})
	assert.NotContains(t, codes(violations), CodeIncompleteStory)
}

func TestDeprecatedRefWarning(t *testing.T) {
	// Deprecating a requirement referenced by a current story version is
	// legal but warned about.
	snap := testutil.SeedSnapshot()
	snap.Requirements[0].Status = record.StatusDeprecated

	violations := Check(snap, Options{IncludeWarnings: true})
	warnings := Warnings(violations)
	require.NotEmpty(t, warnings)
	assert.Equal(t, CodeDeprecatedRef, warnings[0].Code)
	assert.Empty(t, Blocking(violations))
}

func TestWarningsExcludedByDefault(t *testing.T) {
	snap := testutil.SeedSnapshot()
	snap.Requirements[0].Status = record.StatusDeprecated

	violations := Check(snap, Options{})
	assert.Empty(t, Warnings(violations))
}

func TestSupersededVersionsEscapeDeprecationWarnings(t *testing.T) {
	// History keeps its references; only current versions are warned.
	snap := testutil.SeedSnapshot()
	snap.Epics[0].Versions[0].RequirementRefs = []string{"REQ-002"}

	violations := Check(snap, Options{IncludeWarnings: true})
	assert.Empty(t, Warnings(violations))
}

func TestRejectedErrorCode(t *testing.T) {
	err := &RejectedError{Violations: []Violation{{
		Code:     CodeIncompleteStory,
		Severity: SeverityBlocking,
		Record:   "STORY-001",
		Version:  1,
		Message:  "incomplete",
	}}}

	assert.Equal(t, record.CodeValidationRejected, record.CodeOf(err))
	assert.Contains(t, err.Error(), "STORY-001")
}
