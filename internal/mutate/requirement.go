package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/record"
)

// buildRequirement constructs a new active requirement from a payload.
// Shared by add_requirement and the replacement half of supersede_requirement.
func buildRequirement(snap *record.Snapshot, p payload, now string) (record.Requirement, error) {
	var req record.Requirement

	title, err := p.requireString("title")
	if err != nil {
		return req, err
	}
	reqType, err := p.requireString("type")
	if err != nil {
		return req, err
	}
	if err := record.ValidRequirementType(reqType); err != nil {
		return req, err
	}
	statement, err := p.requireString("statement")
	if err != nil {
		return req, err
	}
	rationale, err := p.requireString("rationale")
	if err != nil {
		return req, err
	}

	domainRefs, err := p.stringSlice("domain_refs")
	if err != nil {
		return req, err
	}
	if err := resolveRefs(snap, record.FamilyDomain, domainRefs); err != nil {
		return req, err
	}

	id, err := generateOrValidateID(snap, record.FamilyRequirements, p)
	if err != nil {
		return req, err
	}

	invariant, err := p.optBool("invariant")
	if err != nil {
		return req, err
	}
	tags, err := p.stringSlice("tags")
	if err != nil {
		return req, err
	}
	owner, err := p.optString("owner", "")
	if err != nil {
		return req, err
	}
	notes, err := p.optString("notes", "")
	if err != nil {
		return req, err
	}

	return record.Requirement{
		ID:           id,
		Title:        title,
		Status:       record.StatusActive,
		Type:         reqType,
		Invariant:    invariant,
		Statement:    statement,
		Rationale:    rationale,
		DomainRefs:   domainRefs,
		SupersededBy: nil,
		Tags:         tags,
		Owner:        owner,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func opAddRequirement(snap *record.Snapshot, p payload, now string) (*Result, error) {
	req, err := buildRequirement(snap, p, now)
	if err != nil {
		return nil, err
	}
	snap.Requirements = append(snap.Requirements, req)

	return &Result{
		Message: fmt.Sprintf("added requirement %s", req.ID),
		Data:    map[string]any{"id": req.ID},
		changed: []record.Family{record.FamilyRequirements},
	}, nil
}

func opUpdateRequirement(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	req, ok := snap.RequirementByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "requirement %q not found", id)
	}
	if req.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"requirement %q is deprecated; deprecated records are read-only", id)
	}

	if p.has("title") {
		if req.Title, err = p.requireString("title"); err != nil {
			return nil, err
		}
	}
	if p.has("invariant") {
		if req.Invariant, err = p.requireBool("invariant"); err != nil {
			return nil, err
		}
	}
	if p.has("statement") {
		if req.Statement, err = p.requireString("statement"); err != nil {
			return nil, err
		}
	}
	if p.has("rationale") {
		if req.Rationale, err = p.requireString("rationale"); err != nil {
			return nil, err
		}
	}
	if p.has("domain_refs") {
		domainRefs, err := p.stringSlice("domain_refs")
		if err != nil {
			return nil, err
		}
		if err := resolveRefs(snap, record.FamilyDomain, domainRefs); err != nil {
			return nil, err
		}
		req.DomainRefs = domainRefs
	}
	if p.has("tags") {
		if req.Tags, err = p.stringSlice("tags"); err != nil {
			return nil, err
		}
	}
	if p.has("owner") {
		if req.Owner, err = p.requireString("owner"); err != nil {
			return nil, err
		}
	}
	if p.has("notes") {
		if req.Notes, err = p.requireString("notes"); err != nil {
			return nil, err
		}
	}
	req.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("updated requirement %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyRequirements},
	}, nil
}

func opDeprecateRequirement(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	req, ok := snap.RequirementByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "requirement %q not found", id)
	}
	if req.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"requirement %q is already deprecated", id)
	}

	req.Status = record.StatusDeprecated
	req.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("deprecated requirement %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyRequirements},
	}, nil
}

// opSupersedeRequirement deprecates a requirement and creates its active
// replacement in one operation, linking old to new via superseded_by.
func opSupersedeRequirement(snap *record.Snapshot, p payload, now string) (*Result, error) {
	oldID, err := p.requireString("old_id")
	if err != nil {
		return nil, err
	}
	old, ok := snap.RequirementByID(oldID)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "requirement %q not found", oldID)
	}
	if old.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"requirement %q is already deprecated", oldID)
	}

	replacement, err := p.object("new_requirement")
	if err != nil {
		return nil, err
	}
	req, err := buildRequirement(snap, replacement, now)
	if err != nil {
		return nil, err
	}
	snap.Requirements = append(snap.Requirements, req)

	// Re-resolve: the append above may have grown the backing array.
	old, _ = snap.RequirementByID(oldID)
	old.Status = record.StatusDeprecated
	old.SupersededBy = &req.ID
	old.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("superseded requirement %s with %s", oldID, req.ID),
		Data:    map[string]any{"old_id": oldID, "new_id": req.ID},
		changed: []record.Family{record.FamilyRequirements},
	}, nil
}
