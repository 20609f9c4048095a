package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/record"
)

func opAddFeature(snap *record.Snapshot, p payload, now string) (*Result, error) {
	title, err := p.requireString("title")
	if err != nil {
		return nil, err
	}
	purpose, err := p.requireString("purpose")
	if err != nil {
		return nil, err
	}
	businessValue, err := p.requireString("business_value")
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

	id, err := generateOrValidateID(snap, record.FamilyFeatures, p)
	if err != nil {
		return nil, err
	}

	inScope, err := p.stringSlice("in_scope")
	if err != nil {
		return nil, err
	}
	outOfScope, err := p.stringSlice("out_of_scope")
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

	snap.Features = append(snap.Features, record.Feature{
		ID:              id,
		Title:           title,
		Status:          record.StatusActive,
		Purpose:         purpose,
		BusinessValue:   businessValue,
		InScope:         inScope,
		OutOfScope:      outOfScope,
		RequirementRefs: requirementRefs,
		DomainRefs:      domainRefs,
		Tags:            tags,
		Owner:           owner,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	})

	return &Result{
		Message: fmt.Sprintf("added feature %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyFeatures},
	}, nil
}

func opUpdateFeature(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	feat, ok := snap.FeatureByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "feature %q not found", id)
	}
	if feat.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"feature %q is deprecated; deprecated records are read-only", id)
	}

	if p.has("title") {
		if feat.Title, err = p.requireString("title"); err != nil {
			return nil, err
		}
	}
	if p.has("purpose") {
		if feat.Purpose, err = p.requireString("purpose"); err != nil {
			return nil, err
		}
	}
	if p.has("business_value") {
		if feat.BusinessValue, err = p.requireString("business_value"); err != nil {
			return nil, err
		}
	}
	if p.has("in_scope") {
		if feat.InScope, err = p.stringSlice("in_scope"); err != nil {
			return nil, err
		}
	}
	if p.has("out_of_scope") {
		if feat.OutOfScope, err = p.stringSlice("out_of_scope"); err != nil {
			return nil, err
		}
	}
	if p.has("requirement_refs") {
		refs, err := p.stringSlice("requirement_refs")
		if err != nil {
			return nil, err
		}
		if err := resolveRefs(snap, record.FamilyRequirements, refs); err != nil {
			return nil, err
		}
		feat.RequirementRefs = refs
	}
	if p.has("domain_refs") {
		refs, err := p.stringSlice("domain_refs")
		if err != nil {
			return nil, err
		}
		if err := resolveRefs(snap, record.FamilyDomain, refs); err != nil {
			return nil, err
		}
		feat.DomainRefs = refs
	}
	if p.has("tags") {
		if feat.Tags, err = p.stringSlice("tags"); err != nil {
			return nil, err
		}
	}
	if p.has("owner") {
		if feat.Owner, err = p.requireString("owner"); err != nil {
			return nil, err
		}
	}
	if p.has("notes") {
		if feat.Notes, err = p.requireString("notes"); err != nil {
			return nil, err
		}
	}
	feat.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("updated feature %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyFeatures},
	}, nil
}

func opDeprecateFeature(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	feat, ok := snap.FeatureByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "feature %q not found", id)
	}
	if feat.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"feature %q is already deprecated", id)
	}

	feat.Status = record.StatusDeprecated
	feat.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("deprecated feature %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyFeatures},
	}, nil
}
