package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/record"
)

// opCreateRelease adds a planned release. Release identifiers are never
// generated; the caller supplies one carrying the release date.
func opCreateRelease(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	if !record.ValidID(record.FamilyReleases, id) {
		return nil, record.NewError(record.CodeInvalidID, "invalid release id %q", id)
	}
	if _, exists := snap.ReleaseByID(id); exists {
		return nil, record.NewError(record.CodeDuplicateID, "release %q already exists", id)
	}

	releaseDate, err := p.requireString("release_date")
	if err != nil {
		return nil, err
	}
	if _, err := record.ParseDate(releaseDate); err != nil {
		return nil, err
	}

	description, err := p.requireString("description")
	if err != nil {
		return nil, err
	}

	title, err := p.optString("title", id)
	if err != nil {
		return nil, err
	}
	gitTag, err := p.optStringPtr("git_tag")
	if err != nil {
		return nil, err
	}
	tags, err := p.stringSlice("tags")
	if err != nil {
		return nil, err
	}
	owner, err := p.optString("owner", "")
	if err != nil {
		return nil, err
	}
	notes, err := p.optString("notes", "")
	if err != nil {
		return nil, err
	}

	snap.Releases = append(snap.Releases, record.Release{
		ID:          id,
		Title:       title,
		Status:      record.ReleasePlanned,
		ReleaseDate: releaseDate,
		Description: description,
		GitTag:      gitTag,
		Tags:        tags,
		Owner:       owner,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	return &Result{
		Message: fmt.Sprintf("created release %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyReleases},
	}, nil
}

// opSetReleaseStatus advances a release from planned to released or
// superseded. Closed releases stay closed; there is no transition back.
func opSetReleaseStatus(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	statusStr, err := p.requireString("status")
	if err != nil {
		return nil, err
	}
	status := record.ReleaseStatus(statusStr)
	if err := record.ValidReleaseStatus(status); err != nil {
		return nil, err
	}

	rel, ok := snap.ReleaseByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "release %q not found", id)
	}
	if rel.Status.Closed() {
		return nil, record.NewError(record.CodeInvalidTransition,
			"release %q is already %s", id, rel.Status)
	}
	if status == record.ReleasePlanned {
		return nil, record.NewError(record.CodeInvalidTransition,
			"release %q is already planned", id)
	}

	rel.Status = status
	rel.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("release %s is now %s", id, status),
		Data:    map[string]any{"id": id, "status": string(status)},
		changed: []record.Family{record.FamilyReleases},
	}, nil
}
