package mutate

import (
	"fmt"

	"github.com/roach88/reqstore/internal/record"
)

func opAddDomainEntry(snap *record.Snapshot, p payload, now string) (*Result, error) {
	title, err := p.requireString("title")
	if err != nil {
		return nil, err
	}
	types, err := p.stringOrSlice("type")
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, record.NewError(record.CodeMissingField, "missing required field %q", "type")
	}
	for _, t := range types {
		if err := record.ValidDomainType(t); err != nil {
			return nil, err
		}
	}
	source, err := p.requireString("source")
	if err != nil {
		return nil, err
	}
	docPath, err := p.requireString("doc_path")
	if err != nil {
		return nil, err
	}

	id, err := generateOrValidateID(snap, record.FamilyDomain, p)
	if err != nil {
		return nil, err
	}

	effectiveDate, err := p.optStringPtr("effective_date")
	if err != nil {
		return nil, err
	}
	if effectiveDate != nil {
		if _, err := record.ParseDate(*effectiveDate); err != nil {
			return nil, err
		}
	}
	description, err := p.optString("description", "")
	if err != nil {
		return nil, err
	}
	anchors, err := p.stringSlice("anchors")
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

	snap.Domain = append(snap.Domain, record.DomainEntry{
		ID:            id,
		Title:         title,
		Status:        record.StatusDraft,
		Types:         types,
		Source:        source,
		EffectiveDate: effectiveDate,
		DocPath:       docPath,
		Description:   description,
		Anchors:       anchors,
		Tags:          tags,
		Owner:         owner,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	})

	return &Result{
		Message: fmt.Sprintf("added domain entry %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyDomain},
	}, nil
}

func opUpdateDomainEntry(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	entry, ok := snap.DomainByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "domain entry %q not found", id)
	}
	if entry.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"domain entry %q is deprecated; deprecated records are read-only", id)
	}

	if p.has("title") {
		if entry.Title, err = p.requireString("title"); err != nil {
			return nil, err
		}
	}
	if p.has("type") {
		types, err := p.stringOrSlice("type")
		if err != nil {
			return nil, err
		}
		for _, t := range types {
			if err := record.ValidDomainType(t); err != nil {
				return nil, err
			}
		}
		entry.Types = types
	}
	if p.has("source") {
		if entry.Source, err = p.requireString("source"); err != nil {
			return nil, err
		}
	}
	if p.has("effective_date") {
		effectiveDate, err := p.optStringPtr("effective_date")
		if err != nil {
			return nil, err
		}
		if effectiveDate != nil {
			if _, err := record.ParseDate(*effectiveDate); err != nil {
				return nil, err
			}
		}
		entry.EffectiveDate = effectiveDate
	}
	if p.has("doc_path") {
		if entry.DocPath, err = p.requireString("doc_path"); err != nil {
			return nil, err
		}
	}
	if p.has("description") {
		if entry.Description, err = p.requireString("description"); err != nil {
			return nil, err
		}
	}
	if p.has("anchors") {
		if entry.Anchors, err = p.stringSlice("anchors"); err != nil {
			return nil, err
		}
	}
	if p.has("tags") {
		if entry.Tags, err = p.stringSlice("tags"); err != nil {
			return nil, err
		}
	}
	if p.has("owner") {
		if entry.Owner, err = p.requireString("owner"); err != nil {
			return nil, err
		}
	}
	if p.has("notes") {
		if entry.Notes, err = p.requireString("notes"); err != nil {
			return nil, err
		}
	}
	entry.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("updated domain entry %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyDomain},
	}, nil
}

func opActivateDomainEntry(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	entry, ok := snap.DomainByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "domain entry %q not found", id)
	}
	if entry.Status != record.StatusDraft {
		return nil, record.NewError(record.CodeInvalidTransition,
			"domain entry %q is %s; only draft entries can be activated", id, entry.Status)
	}

	entry.Status = record.StatusActive
	entry.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("activated domain entry %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyDomain},
	}, nil
}

func opDeprecateDomainEntry(snap *record.Snapshot, p payload, now string) (*Result, error) {
	id, err := p.requireString("id")
	if err != nil {
		return nil, err
	}
	entry, ok := snap.DomainByID(id)
	if !ok {
		return nil, record.NewError(record.CodeNotFound, "domain entry %q not found", id)
	}
	if entry.Status == record.StatusDeprecated {
		return nil, record.NewError(record.CodeInvalidTransition,
			"domain entry %q is already deprecated", id)
	}

	entry.Status = record.StatusDeprecated
	entry.UpdatedAt = now

	return &Result{
		Message: fmt.Sprintf("deprecated domain entry %s", id),
		Data:    map[string]any{"id": id},
		changed: []record.Family{record.FamilyDomain},
	}, nil
}
