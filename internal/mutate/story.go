package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/ledger"
	"github.com/roach88/reqstore/internal/record"
)

func opAddStory(snap *record.Snapshot, p payload, now string) (*Result, error) {
	title, err := p.requireString("title")
	if err != nil {
		return nil, err
	}
	epicRef, err := p.requireString("epic_ref")
	if err != nil {
		return nil, err
	}
	if _, ok := snap.EpicByID(epicRef); !ok {
		return nil, record.NewError(record.CodeNotFound, "epic %q not found", epicRef)
	}
	releaseRef, err := p.requireString("release_ref")
	if err != nil {
		return nil, err
	}
	description, err := p.requireString("description")
	if err != nil {
		return nil, err
	}

	requirementRefs, err := p.stringSlice("requirement_refs")
	if err != nil {
		return nil, err
	}
	if err := resolveRefs(snap, record.FamilyRequirements, requirementRefs); err != nil {
		return nil, err
	}
	domainRefs, err := p.stringSlice("domain_refs")
	if err != nil {
		return nil, err
	}
	if err := resolveRefs(snap, record.FamilyDomain, domainRefs); err != nil {
		return nil, err
	}

	id, err := generateOrValidateID(snap, record.FamilyStories, p)
	if err != nil {
		return nil, err
	}

	next, supersedes, err := ledger.Append([]*record.StoryVersion{}, releaseRef, snap.ReleaseByID, now)
	if err != nil {
		return nil, err
	}

	acceptanceCriteria, err := p.stringSlice("acceptance_criteria")
	if err != nil {
		return nil, err
	}
	testIntent, err := p.testIntent("test_intent")
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

	snap.Stories = append(snap.Stories, record.Story{
		ID:        id,
		Title:     title,
		Status:    record.StatusActive,
		EpicRef:   epicRef,
		Tags:      tags,
		Owner:     owner,
		CreatedAt: now,
		Versions: []record.StoryVersion{{
			Version:            next,
			Status:             record.StoryDraft,
			ReleaseRef:         releaseRef,
			Description:        description,
			RequirementRefs:    requirementRefs,
			DomainRefs:         domainRefs,
			AcceptanceCriteria: acceptanceCriteria,
			TestIntent:         testIntent,
			Supersedes:         supersedes,
			Owner:              owner,
			Notes:              notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}},
	})

	return &Result{
		Message: fmt.Sprintf("added story %s at version %d", id, next),
		Data:    map[string]any{"id": id, "version": next},
		changed: []record.Family{record.FamilyStories},
	}, nil
}

// opCreateStoryVersion appends a new version to a story, superseding the
// current one. Content fields absent from the payload carry over from the
// superseded version.
func opCreateStoryVersion(snap *record.Snapshot, p payload, now string) (*Result, error) {
	storyID, err := p.requireString("story_id")
	if err != nil {
		return nil, err
	}
	story, ok := snap.StoryByID(storyID)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "story %q not found", storyID)
	}
	if story.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"story %q is deprecated; deprecated stories accept no new versions", storyID)
	}
	releaseRef, err := p.requireString("release_ref")
	if err != nil {
		return nil, err
	}

	var inherit record.StoryVersion
	if cur, ok := ledger.Current(record.VersionPtrs(story.Versions)); ok {
		inherit = *cur
	}

	next, supersedes, err := ledger.Append(record.VersionPtrs(story.Versions), releaseRef, snap.ReleaseByID, now)
	if err != nil {
		return nil, err
	}

	description, err := p.optString("description", inherit.Description)
	if err != nil {
		return nil, err
	}
	requirementRefs := inherit.RequirementRefs
	if p.has("requirement_refs") {
		if requirementRefs, err = p.stringSlice("requirement_refs"); err != nil {
			return nil, err
		}
	}
	if err := resolveRefs(snap, record.FamilyRequirements, requirementRefs); err != nil {
		return nil, err
	}
	domainRefs := inherit.DomainRefs
	if p.has("domain_refs") {
		if domainRefs, err = p.stringSlice("domain_refs"); err != nil {
			return nil, err
		}
	}
	if err := resolveRefs(snap, record.FamilyDomain, domainRefs); err != nil {
		return nil, err
	}
	acceptanceCriteria := inherit.AcceptanceCriteria
	if p.has("acceptance_criteria") {
		if acceptanceCriteria, err = p.stringSlice("acceptance_criteria"); err != nil {
			return nil, err
		}
	}
	testIntent := inherit.TestIntent
	if p.has("test_intent") {
		if testIntent, err = p.testIntent("test_intent"); err != nil {
			return nil, err
		}
	}
	owner, err := p.optString("owner", inherit.Owner)
	if err != nil {
		return nil, err
	}
	notes, err := p.optString("notes", "")
	if err != nil {
		return nil, err
	}

	if requirementRefs == nil {
		requirementRefs = []string{}
	}
	if domainRefs == nil {
		domainRefs = []string{}
	}
	if acceptanceCriteria == nil {
		acceptanceCriteria = []string{}
	}
	if testIntent.FailureModes == nil {
		testIntent.FailureModes = []string{}
	}
	if testIntent.Guarantees == nil {
		testIntent.Guarantees = []string{}
	}
	if testIntent.Exclusions == nil {
		testIntent.Exclusions = []string{}
	}

	story.Versions = append(story.Versions, record.StoryVersion{
		Version:            next,
		Status:             record.StoryDraft,
		ReleaseRef:         releaseRef,
		Description:        description,
		RequirementRefs:    requirementRefs,
		DomainRefs:         domainRefs,
		AcceptanceCriteria: acceptanceCriteria,
		TestIntent:         testIntent,
		Supersedes:         supersedes,
		Owner:              owner,
		Notes:              notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	})

	return &Result{
		Message: fmt.Sprintf("created story %s version %d", storyID, next),
		Data:    map[string]any{"id": storyID, "version": next},
		changed: []record.Family{record.FamilyStories},
	}, nil
}

// opSetStoryVersionStatus changes the status of the current (or named
// current) version. Moving into ready_to_build or beyond without acceptance
// criteria and test intent fails post-mutation validation, so the
// transition is rejected rather than persisted incomplete.
func opSetStoryVersionStatus(snap *record.Snapshot, p payload, now string) (*Result, error) {
	storyID, err := p.requireString("story_id")
	if err != nil {
		return nil, err
	}
	story, ok := snap.StoryByID(storyID)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "story %q not found", storyID)
	}
	statusStr, err := p.requireString("status")
	if err != nil {
		return nil, err
	}
	status := record.StoryVersionStatus(statusStr)
	if err := record.ValidStoryVersionStatus(status); err != nil {
		return nil, err
	}
	if status == record.StorySuperseded {
		return nil, record.NewError(record.CodeInvalidTransition,
			"superseded is set by creating a new version, never directly")
	}
	versionNum, err := p.optInt("version")
	if err != nil {
		return nil, err
	}

	ver, err := ledger.Mutable(record.VersionPtrs(story.Versions), versionNum)
	if err != nil {
		return nil, err
	}
	ver.Status = status
	ver.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("story %s version %d is now %s", storyID, ver.Version, status),
		Data:    map[string]any{"id": storyID, "version": ver.Version, "status": string(status)},
		changed: []record.Family{record.FamilyStories},
	}, nil
}

func opDeprecateStory(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	story, ok := snap.StoryByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "story %q not found", id)
	}
	if story.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"story %q is already deprecated", id)
	}

	story.Status = record.StatusDeprecated

	return &Result{
		Message: fmt.Sprintf("deprecated story %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyStories},
	}, nil
}
