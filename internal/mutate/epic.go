package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/ledger"
	"github.com/roach88/reqstore/internal/record"
)

func opAddEpic(snap *record.Snapshot, p payload, now string) (*Result, error) {
	title, err := p.requireString("title")
	if err != nil {
		return nil, err
	}
	featureRef, err := p.requireString("feature_ref")
	if err != nil {
		return nil, err
	}
	if _, ok := snap.FeatureByID(featureRef); !ok {
		return nil, record.NewError(record.CodeNotFound, "feature %q not found", featureRef)
	}
	releaseRef, err := p.requireString("release_ref")
	if err != nil {
		return nil, err
	}
	summary, err := p.requireString("summary")
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

	id, err := generateOrValidateID(snap, record.FamilyEpics, p)
	if err != nil {
		return nil, err
	}

	// Appending to an empty sequence still runs the release-binding checks.
	next, supersedes, err := ledger.Append([]*record.EpicVersion{}, releaseRef, snap.ReleaseByID, now)
	if err != nil {
		return nil, err
	}

	assumptions, err := p.stringSlice("assumptions")
	if err != nil {
		return nil, err
	}
	constraints, err := p.stringSlice("constraints")
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

	snap.Epics = append(snap.Epics, record.Epic{
		ID:         id,
		Title:      title,
		Status:     record.StatusActive,
		FeatureRef: featureRef,
		Tags:       tags,
		Owner:      owner,
		CreatedAt:  now,
		Versions: []record.EpicVersion{{
			Version:         next,
			Status:          record.EpicDraft,
			ReleaseRef:      releaseRef,
			Summary:         summary,
			Assumptions:     assumptions,
			Constraints:     constraints,
			RequirementRefs: requirementRefs,
			DomainRefs:      domainRefs,
			Supersedes:      supersedes,
			Owner:           owner,
			Notes:           notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}},
	})

	return &Result{
		Message: fmt.Sprintf("added epic %s at version %d", id, next),
		Data:    map[string]any{"id": id, "version": next},
		changed: []record.Family{record.FamilyEpics},
	}, nil
}

// opCreateEpicVersion appends a new version to an epic, superseding the
// current one. Content fields absent from the payload carry over from the
// superseded version.
func opCreateEpicVersion(snap *record.Snapshot, p payload, now string) (*Result, error) {
	epicID, err := p.requireString("epic_id")
	if err != nil {
		return nil, err
	}
	epic, ok := snap.EpicByID(epicID)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "epic %q not found", epicID)
	}
	if epic.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"epic %q is deprecated; deprecated epics accept no new versions", epicID)
	}
	releaseRef, err := p.requireString("release_ref")
	if err != nil {
		return nil, err
	}

	// Capture the current version's content before Append marks it
	// superseded; absent payload fields inherit from it.
	var inherit record.EpicVersion
	if cur, ok := ledger.Current(record.VersionPtrs(epic.Versions)); ok {
		inherit = *cur
	}

	next, supersedes, err := ledger.Append(record.VersionPtrs(epic.Versions), releaseRef, snap.ReleaseByID, now)
	if err != nil {
		return nil, err
	}

	summary, err := p.optString("summary", inherit.Summary)
	if err != nil {
		return nil, err
	}
	assumptions := inherit.Assumptions
	if p.has("assumptions") {
		if assumptions, err = p.stringSlice("assumptions"); err != nil {
			return nil, err
		}
	}
	constraints := inherit.Constraints
	if p.has("constraints") {
		if constraints, err = p.stringSlice("constraints"); err != nil {
			return nil, err
		}
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
	owner, err := p.optString("owner", inherit.Owner)
	if err != nil {
		return nil, err
	}
	notes, err := p.optString("notes", "")
	if err != nil {
		return nil, err
	}

	if assumptions == nil {
		assumptions = []string{}
	}
	if constraints == nil {
		constraints = []string{}
	}
	if requirementRefs == nil {
		requirementRefs = []string{}
	}
	if domainRefs == nil {
		domainRefs = []string{}
	}

	epic.Versions = append(epic.Versions, record.EpicVersion{
		Version:         next,
		Status:          record.EpicDraft,
		ReleaseRef:      releaseRef,
		Summary:         summary,
		Assumptions:     assumptions,
		Constraints:     constraints,
		RequirementRefs: requirementRefs,
		DomainRefs:      domainRefs,
		Supersedes:      supersedes,
		Owner:           owner,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	})

	return &Result{
		Message: fmt.Sprintf("created epic %s version %d", epicID, next),
		Data:    map[string]any{"id": epicID, "version": next},
		changed: []record.Family{record.FamilyEpics},
	}, nil
}

// opSetEpicVersionStatus changes the status of the current (or named
// current) version. Superseded is never set directly; only appending a new
// version supersedes an old one.
func opSetEpicVersionStatus(snap *record.Snapshot, p payload, now string) (*Result, error) {
	epicID, err := p.requireString("epic_id")
	if err != nil {
		return nil, err
	}
	epic, ok := snap.EpicByID(epicID)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "epic %q not found", epicID)
	}
	statusStr, err := p.requireString("status")
	if err != nil {
		return nil, err
	}
	status := record.EpicVersionStatus(statusStr)
	if err := record.ValidEpicVersionStatus(status); err != nil {
		return nil, err
	}
	if status == record.EpicSuperseded {
		return nil, record.NewError(record.CodeInvalidTransition,
			"superseded is set by creating a new version, never directly")
	}
	versionNum, err := p.optInt("version")
	if err != nil {
		return nil, err
	}

	ver, err := ledger.Mutable(record.VersionPtrs(epic.Versions), versionNum)
	if err != nil {
		return nil, err
	}
	ver.Status = status
	ver.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("epic %s version %d is now %s", epicID, ver.Version, status),
		Data:    map[string]any{"id": epicID, "version": ver.Version, "status": string(status)},
		changed: []record.Family{record.FamilyEpics},
	}, nil
}

func opDeprecateEpic(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	epic, ok := snap.EpicByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "epic %q not found", id)
	}
	if epic.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"epic %q is already deprecated", id)
	}

	epic.Status = record.StatusDeprecated

	return &Result{
		Message: fmt.Sprintf("deprecated epic %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyEpics},
	}, nil
}
