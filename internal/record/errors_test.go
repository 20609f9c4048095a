package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := NewError(CodeClosedRelease, "release %q is closed", "REL-2025-01-15")
	assert.Equal(t, CodeClosedRelease, CodeOf(err))
	assert.True(t, IsCode(err, CodeClosedRelease))
	assert.False(t, IsCode(err, CodeNotFound))
}

func TestCodeOfWrapped(t *testing.T) {
	inner := WrapError(CodeCorruptStore, errors.New("unexpected token"), "parse stories.json")
	outer := fmt.Errorf("loading store: %w", inner)

	assert.Equal(t, CodeCorruptStore, CodeOf(outer))
	assert.ErrorContains(t, outer, "unexpected token")
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestSnapshotCloneIsolation(t *testing.T) {
	orig := &Snapshot{
		Requirements: []Requirement{{
			ID:         "REQ-001",
			Title:      "before",
			Status:     StatusActive,
			Type:       "functional",
			Statement:  "s",
			Rationale:  "r",
			DomainRefs: []string{},
			Tags:       []string{},
			CreatedAt:  "2025-01-01T00:00:00Z",
			UpdatedAt:  "2025-01-01T00:00:00Z",
		}},
	}

	clone := orig.Clone()
	clone.Requirements[0].Title = "after"
	clone.Requirements = append(clone.Requirements, Requirement{ID: "REQ-002"})

	assert.Equal(t, "before", orig.Requirements[0].Title)
	assert.Len(t, orig.Requirements, 1)
}
