package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		id     string
		want   bool
	}{
		{"release date form", FamilyReleases, "REL-2025-01-15", true},
		{"release same-day suffix", FamilyReleases, "REL-2025-01-15-b", true},
		{"release uppercase suffix", FamilyReleases, "REL-2025-01-15-B", false},
		{"release missing date", FamilyReleases, "REL-001", false},
		{"domain three digits", FamilyDomain, "DOM-001", true},
		{"domain four digits", FamilyDomain, "DOM-1234", true},
		{"domain two digits", FamilyDomain, "DOM-01", false},
		{"requirement", FamilyRequirements, "REQ-042", true},
		{"requirement wrong prefix", FamilyRequirements, "REQS-042", false},
		{"feature", FamilyFeatures, "FEAT-007", true},
		{"epic", FamilyEpics, "EPIC-100", true},
		{"story", FamilyStories, "STORY-003", true},
		{"story lowercase", FamilyStories, "story-003", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidID(tt.family, tt.id))
		})
	}
}

func TestNextID(t *testing.T) {
	id, err := NextID(FamilyRequirements, nil)
	require.NoError(t, err)
	assert.Equal(t, "REQ-001", id)

	id, err = NextID(FamilyRequirements, []string{"REQ-001", "REQ-007", "REQ-003"})
	require.NoError(t, err)
	assert.Equal(t, "REQ-008", id)
}

func TestNextIDNeverReuses(t *testing.T) {
	// Numbers stay monotonic even when the highest record is gone.
	id, err := NextID(FamilyStories, []string{"STORY-001", "STORY-002"})
	require.NoError(t, err)
	assert.Equal(t, "STORY-003", id)
}

func TestNextIDWideNumbers(t *testing.T) {
	id, err := NextID(FamilyDomain, []string{"DOM-999"})
	require.NoError(t, err)
	assert.Equal(t, "DOM-1000", id)
}

func TestNextIDReleasesNotGenerated(t *testing.T) {
	_, err := NextID(FamilyReleases, nil)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidID, CodeOf(err))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2025-01-15")
	require.NoError(t, err)

	_, err = ParseDate("15/01/2025")
	require.Error(t, err)
	assert.Equal(t, CodeSchema, CodeOf(err))
}
