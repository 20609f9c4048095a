package mutate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/store"
	"github.com/roach88/reqstore/internal/validate"
)

// Result describes a successfully applied operation.
type Result struct {
	OpID    string         `json:"op_id"`
	Op      string         `json:"op"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`

	// Warnings are non-blocking violations present in the store after the
	// operation applied. They never cause rejection.
	Warnings []validate.Violation `json:"warnings,omitempty"`

	changed []record.Family
}

// opFunc mutates the working snapshot in place. It returns a Result with
// Message, Data, and the changed families filled in; the engine assigns the
// operation identifiers.
type opFunc func(snap *record.Snapshot, p payload, now string) (*Result, error)

// operations is the fixed registry. Handlers live in the per-family files.
var operations = map[string]opFunc{
	"create_release":     opCreateRelease,
	"set_release_status": opSetReleaseStatus,

	"add_domain_entry":       opAddDomainEntry,
	"update_domain_entry":    opUpdateDomainEntry,
	"activate_domain_entry":  opActivateDomainEntry,
	"deprecate_domain_entry": opDeprecateDomainEntry,

	"add_requirement":       opAddRequirement,
	"update_requirement":    opUpdateRequirement,
	"deprecate_requirement": opDeprecateRequirement,
	"supersede_requirement": opSupersedeRequirement,

	"add_feature":       opAddFeature,
	"update_feature":    opUpdateFeature,
	"deprecate_feature": opDeprecateFeature,

	"add_epic":                opAddEpic,
	"create_epic_version":     opCreateEpicVersion,
	"set_epic_version_status": opSetEpicVersionStatus,
	"deprecate_epic":          opDeprecateEpic,

	"add_story":                opAddStory,
	"create_story_version":     opCreateStoryVersion,
	"set_story_version_status": opSetStoryVersionStatus,
	"deprecate_story":          opDeprecateStory,
}

// Operations returns the operation names, sorted.
func Operations() []string {
	out := make([]string, 0, len(operations))
	for name := range operations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Engine applies operations against a store.
type Engine struct {
	store   *store.Store
	clock   func() time.Time
	newOpID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock. Tests use this to pin timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithOpID overrides operation identifier generation.
func WithOpID(gen func() string) Option {
	return func(e *Engine) { e.newOpID = gen }
}

// New creates an engine. By default timestamps come from the wall clock and
// operation identifiers are UUIDv7, so the journal sorts chronologically.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		clock:   time.Now,
		newOpID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs one named operation with the given raw JSON payload.
//
// On any error the persisted store is unchanged. Blocking violations found
// by post-mutation validation surface as *validate.RejectedError
// (VALIDATION_REJECTED); all other failures carry their own taxonomy code.
func (e *Engine) Apply(op string, rawPayload []byte) (*Result, error) {
	fn, ok := operations[op]
	if !ok {
		return nil, record.NewError(record.CodeUnknownOperation, "unknown operation %q", op)
	}

	p, err := decodePayload(rawPayload)
	if err != nil {
		return nil, err
	}

	snap, err := e.store.LoadAll()
	if err != nil {
		return nil, err
	}

	work := snap.Clone()
	now := record.Timestamp(e.clock())

	res, err := fn(work, p, now)
	if err != nil {
		return nil, err
	}

	violations := validate.Check(work, validate.Options{IncludeWarnings: true})
	if blocking := validate.Blocking(violations); len(blocking) > 0 {
		return nil, &validate.RejectedError{Violations: blocking}
	}

	if err := e.store.Save(work, res.changed...); err != nil {
		return nil, err
	}

	res.OpID = e.newOpID()
	res.Op = op
	res.Warnings = validate.Warnings(violations)
	return res, nil
}

// resolveRefs checks that every identifier in refs exists in the given
// family, returning NOT_FOUND on the first miss.
func resolveRefs(snap *record.Snapshot, family record.Family, refs []string) error {
	for _, ref := range refs {
		var ok bool
		switch family {
		case record.FamilyReleases:
			_, ok = snap.ReleaseByID(ref)
		case record.FamilyDomain:
			_, ok = snap.DomainByID(ref)
		case record.FamilyRequirements:
			_, ok = snap.RequirementByID(ref)
		case record.FamilyFeatures:
			_, ok = snap.FeatureByID(ref)
		case record.FamilyEpics:
			_, ok = snap.EpicByID(ref)
		case record.FamilyStories:
			_, ok = snap.StoryByID(ref)
		}
		if !ok {
			return record.NewError(record.CodeNotFound, "%s %q not found", familyNoun(family), ref)
		}
	}
	return nil
}

func familyNoun(family record.Family) string {
	switch family {
	case record.FamilyReleases:
		return "release"
	case record.FamilyDomain:
		return "domain entry"
	case record.FamilyRequirements:
		return "requirement"
	case record.FamilyFeatures:
		return "feature"
	case record.FamilyEpics:
		return "epic"
	case record.FamilyStories:
		return "story"
	}
	return string(family)
}

// generateOrValidateID returns the record identifier: the payload's "id" if
// present (validated for format and uniqueness), otherwise the next
// sequential identifier for the family.
func generateOrValidateID(snap *record.Snapshot, family record.Family, p payload) (string, error) {
	existing := snap.IDs(family)

	if p.has("id") {
		id, err := p.requireString("id")
		if err != nil {
			return "", err
		}
		if !record.ValidID(family, id) {
			return "", record.NewError(record.CodeInvalidID, "invalid %s id %q", familyNoun(family), id)
		}
		for _, have := range existing {
			if have == id {
				return "", record.NewError(record.CodeDuplicateID, "%s %q already exists", familyNoun(family), id)
			}
		}
		return id, nil
	}

	return record.NextID(family, existing)
}
