package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/testutil"
)

const now = "2025-02-01T00:00:00Z"

func lookupFrom(releases ...record.Release) ReleaseLookup {
	return func(id string) (*record.Release, bool) {
		for i := range releases {
			if releases[i].ID == id {
				return &releases[i], true
			}
		}
		return nil, false
	}
}

func planned(id, date string) record.Release {
	return record.Release{ID: id, Status: record.ReleasePlanned, ReleaseDate: date}
}

func released(id, date string) record.Release {
	return record.Release{ID: id, Status: record.ReleaseReleased, ReleaseDate: date}
}

func epicVersions(statuses ...record.EpicVersionStatus) []record.EpicVersion {
	out := make([]record.EpicVersion, len(statuses))
	for i, s := range statuses {
		out[i] = record.EpicVersion{Version: i + 1, Status: s, ReleaseRef: "REL-2025-01-15"}
		if i > 0 {
			out[i].Supersedes = testutil.Ptr(i)
		}
	}
	return out
}

func TestCurrent(t *testing.T) {
	vs := epicVersions(record.EpicSuperseded, record.EpicSuperseded, record.EpicDraft)
	cur, ok := Current(record.VersionPtrs(vs))
	require.True(t, ok)
	assert.Equal(t, 3, cur.Version)
}

func TestCurrentEmpty(t *testing.T) {
	_, ok := Current([]*record.EpicVersion{})
	assert.False(t, ok)
}

func TestCurrentAllSuperseded(t *testing.T) {
	vs := epicVersions(record.EpicSuperseded, record.EpicSuperseded)
	_, ok := Current(record.VersionPtrs(vs))
	assert.False(t, ok)
}

func TestAppendSupersedesCurrent(t *testing.T) {
	lookup := lookupFrom(
		released("REL-2025-01-15", "2025-01-15"),
		planned("REL-2025-03-01", "2025-03-01"),
	)
	vs := epicVersions(record.EpicApproved)

	next, supersedes, err := Append(record.VersionPtrs(vs), "REL-2025-03-01", lookup, now)
	require.NoError(t, err)

	assert.Equal(t, 2, next)
	require.NotNil(t, supersedes)
	assert.Equal(t, 1, *supersedes)
	assert.Equal(t, record.EpicSuperseded, vs[0].Status)
	assert.Equal(t, now, vs[0].UpdatedAt)
}

func TestAppendFirstVersion(t *testing.T) {
	lookup := lookupFrom(planned("REL-2025-01-15", "2025-01-15"))

	next, supersedes, err := Append([]*record.EpicVersion{}, "REL-2025-01-15", lookup, now)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
	assert.Nil(t, supersedes)
}

func TestAppendUnknownRelease(t *testing.T) {
	lookup := lookupFrom(planned("REL-2025-01-15", "2025-01-15"))

	_, _, err := Append([]*record.EpicVersion{}, "REL-2099-01-01", lookup, now)
	require.Error(t, err)
	assert.Equal(t, record.CodeInvalidRelease, record.CodeOf(err))
}

func TestAppendClosedRelease(t *testing.T) {
	lookup := lookupFrom(released("REL-2025-01-15", "2025-01-15"))
	vs := epicVersions(record.EpicApproved)

	_, _, err := Append(record.VersionPtrs(vs), "REL-2025-01-15", lookup, now)
	require.Error(t, err)
	assert.Equal(t, record.CodeClosedRelease, record.CodeOf(err))
	// Validation failed before mutation: the current version is untouched.
	assert.Equal(t, record.EpicApproved, vs[0].Status)
}

func TestAppendTemporalOrder(t *testing.T) {
	lookup := lookupFrom(
		planned("REL-2025-01-15", "2025-01-15"),
		planned("REL-2024-11-01", "2024-11-01"),
	)
	vs := epicVersions(record.EpicApproved)

	_, _, err := Append(record.VersionPtrs(vs), "REL-2024-11-01", lookup, now)
	require.Error(t, err)
	assert.Equal(t, record.CodeTemporalOrder, record.CodeOf(err))
	assert.Equal(t, record.EpicApproved, vs[0].Status)
}

func TestAppendSameDateAllowed(t *testing.T) {
	lookup := lookupFrom(
		planned("REL-2025-01-15", "2025-01-15"),
		planned("REL-2025-01-15-b", "2025-01-15"),
	)
	vs := epicVersions(record.EpicApproved)

	next, _, err := Append(record.VersionPtrs(vs), "REL-2025-01-15-b", lookup, now)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestMutableCurrent(t *testing.T) {
	vs := epicVersions(record.EpicSuperseded, record.EpicDraft)

	ver, err := Mutable(record.VersionPtrs(vs), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, ver.Version)

	ver, err = Mutable(record.VersionPtrs(vs), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ver.Version)
}

func TestMutableSupersededIsImmutable(t *testing.T) {
	vs := epicVersions(record.EpicSuperseded, record.EpicDraft)

	_, err := Mutable(record.VersionPtrs(vs), 1)
	require.Error(t, err)
	assert.Equal(t, record.CodeImmutableVersion, record.CodeOf(err))
}

func TestMutableAbsentVersion(t *testing.T) {
	vs := epicVersions(record.EpicDraft)

	_, err := Mutable(record.VersionPtrs(vs), 9)
	require.Error(t, err)
	assert.Equal(t, record.CodeNotFound, record.CodeOf(err))
}

func TestStoryVersionsSatisfyLedger(t *testing.T) {
	lookup := lookupFrom(planned("REL-2025-03-01", "2025-03-01"))
	vs := []record.StoryVersion{{Version: 1, Status: record.StoryBuilt, ReleaseRef: "REL-2025-03-01"}}

	next, supersedes, err := Append(record.VersionPtrs(vs), "REL-2025-03-01", lookup, now)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
	require.NotNil(t, supersedes)
	assert.Equal(t, record.StorySuperseded, vs[0].Status)
}
