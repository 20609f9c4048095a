package record

import "encoding/json"

// Release is a timeline-bound delivery event that versions bind to.
type Release struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Status      ReleaseStatus `json:"status"`
	ReleaseDate string        `json:"release_date"`
	Description string        `json:"description"`
	GitTag      *string       `json:"git_tag"`
	Tags        []string      `json:"tags"`
	Owner       string        `json:"owner"`
	Notes       string        `json:"notes"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

// DomainEntry is a registry pointer to a source-of-truth business document
// (policy, catalog, classification, or rule).
type DomainEntry struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Status        RecordStatus `json:"status"`
	Types         []string     `json:"type"`
	Source        string       `json:"source"`
	EffectiveDate *string      `json:"effective_date"`
	DocPath       string       `json:"doc_path"`
	Description   string       `json:"description"`
	Anchors       []string     `json:"anchors"`
	Tags          []string     `json:"tags"`
	Owner         string       `json:"owner"`
	Notes         string       `json:"notes"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// Requirement is an unversioned statement of required behavior, linked
// upstream to domain entries.
type Requirement struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       RecordStatus `json:"status"`
	Type         string       `json:"type"`
	Invariant    bool         `json:"invariant"`
	Statement    string       `json:"statement"`
	Rationale    string       `json:"rationale"`
	DomainRefs   []string     `json:"domain_refs"`
	SupersededBy *string      `json:"superseded_by"`
	Tags         []string     `json:"tags"`
	Owner        string       `json:"owner"`
	Notes        string       `json:"notes"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
}

// Feature is a coherent unit of product capability satisfying requirements.
type Feature struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Status          RecordStatus `json:"status"`
	Purpose         string       `json:"purpose"`
	BusinessValue   string       `json:"business_value"`
	InScope         []string     `json:"in_scope"`
	OutOfScope      []string     `json:"out_of_scope"`
	RequirementRefs []string     `json:"requirement_refs"`
	DomainRefs      []string     `json:"domain_refs"`
	Tags            []string     `json:"tags"`
	Owner           string       `json:"owner"`
	Notes           string       `json:"notes"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// Epic is a versioned artifact scoped by a feature.
type Epic struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     RecordStatus  `json:"status"`
	FeatureRef string        `json:"feature_ref"`
	Tags       []string      `json:"tags"`
	Owner      string        `json:"owner"`
	CreatedAt  string        `json:"created_at"`
	Versions   []EpicVersion `json:"versions"`
}

// EpicVersion is one immutable entry in an epic's version sequence.
type EpicVersion struct {
	Version         int               `json:"version"`
	Status          EpicVersionStatus `json:"status"`
	ReleaseRef      string            `json:"release_ref"`
	Summary         string            `json:"summary"`
	Assumptions     []string          `json:"assumptions"`
	Constraints     []string          `json:"constraints"`
	RequirementRefs []string          `json:"requirement_refs"`
	DomainRefs      []string          `json:"domain_refs"`
	Supersedes      *int              `json:"supersedes"`
	Owner           string            `json:"owner"`
	Notes           string            `json:"notes"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// TestIntent captures what a story's tests must prove.
type TestIntent struct {
	FailureModes []string `json:"failure_modes"`
	Guarantees   []string `json:"guarantees"`
	Exclusions   []string `json:"exclusions"`
}

// Specified reports whether the intent names at least one failure mode or
// guarantee, the minimum for build readiness.
func (t TestIntent) Specified() bool {
	return len(t.FailureModes) > 0 || len(t.Guarantees) > 0
}

// Story is a versioned artifact belonging to an epic.
type Story struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Status    RecordStatus   `json:"status"`
	EpicRef   string         `json:"epic_ref"`
	Tags      []string       `json:"tags"`
	Owner     string         `json:"owner"`
	CreatedAt string         `json:"created_at"`
	Versions  []StoryVersion `json:"versions"`
}

// StoryVersion is one immutable entry in a story's version sequence.
type StoryVersion struct {
	Version            int                `json:"version"`
	Status             StoryVersionStatus `json:"status"`
	ReleaseRef         string             `json:"release_ref"`
	Description        string             `json:"description"`
	RequirementRefs    []string           `json:"requirement_refs"`
	DomainRefs         []string           `json:"domain_refs"`
	AcceptanceCriteria []string           `json:"acceptance_criteria"`
	TestIntent         TestIntent         `json:"test_intent"`
	Supersedes         *int               `json:"supersedes"`
	Owner              string             `json:"owner"`
	Notes              string             `json:"notes"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
}

// Ledger accessors. *EpicVersion and *StoryVersion both satisfy
// ledger.Version through these.

func (v *EpicVersion) Number() int        { return v.Version }
func (v *EpicVersion) StatusName() string { return string(v.Status) }
func (v *EpicVersion) Release() string    { return v.ReleaseRef }
func (v *EpicVersion) Predecessor() *int  { return v.Supersedes }
func (v *EpicVersion) MarkSuperseded(now string) {
	v.Status = EpicSuperseded
	v.UpdatedAt = now
}

func (v *StoryVersion) Number() int        { return v.Version }
func (v *StoryVersion) StatusName() string { return string(v.Status) }
func (v *StoryVersion) Release() string    { return v.ReleaseRef }
func (v *StoryVersion) Predecessor() *int  { return v.Supersedes }
func (v *StoryVersion) MarkSuperseded(now string) {
	v.Status = StorySuperseded
	v.UpdatedAt = now
}

// VersionPtrs converts a version slice to the pointer slice the ledger
// operates on. The pointers alias the slice elements, so ledger mutations
// land in the owning record.
func VersionPtrs[T any](versions []T) []*T {
	out := make([]*T, len(versions))
	for i := range versions {
		out[i] = &versions[i]
	}
	return out
}

// Snapshot is the full in-memory state of the canonical store. It is passed
// explicitly into validation, mutation, and graph building; nothing in the
// core reads the store ambiently.
type Snapshot struct {
	Releases     []Release     `json:"releases"`
	Domain       []DomainEntry `json:"domain"`
	Requirements []Requirement `json:"requirements"`
	Features     []Feature     `json:"features"`
	Epics        []Epic        `json:"epics"`
	Stories      []Story       `json:"stories"`
}

// Clone deep-copies the snapshot. Mutations apply to a clone so a rejected
// operation leaves the loaded state untouched.
func (s *Snapshot) Clone() *Snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		// Snapshot contains only JSON-encodable fields; a marshal failure
		// here is a programming error.
		panic(err)
	}
	var out Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

// ReleaseByID returns the release with the given id.
func (s *Snapshot) ReleaseByID(id string) (*Release, bool) {
	for i := range s.Releases {
		if s.Releases[i].ID == id {
			return &s.Releases[i], true
		}
	}
	return nil, false
}

// DomainByID returns the domain entry with the given id.
func (s *Snapshot) DomainByID(id string) (*DomainEntry, bool) {
	for i := range s.Domain {
		if s.Domain[i].ID == id {
			return &s.Domain[i], true
		}
	}
	return nil, false
}

// RequirementByID returns the requirement with the given id.
func (s *Snapshot) RequirementByID(id string) (*Requirement, bool) {
	for i := range s.Requirements {
		if s.Requirements[i].ID == id {
			return &s.Requirements[i], true
		}
	}
	return nil, false
}

// FeatureByID returns the feature with the given id.
func (s *Snapshot) FeatureByID(id string) (*Feature, bool) {
	for i := range s.Features {
		if s.Features[i].ID == id {
			return &s.Features[i], true
		}
	}
	return nil, false
}

// EpicByID returns the epic with the given id.
func (s *Snapshot) EpicByID(id string) (*Epic, bool) {
	for i := range s.Epics {
		if s.Epics[i].ID == id {
			return &s.Epics[i], true
		}
	}
	return nil, false
}

// StoryByID returns the story with the given id.
func (s *Snapshot) StoryByID(id string) (*Story, bool) {
	for i := range s.Stories {
		if s.Stories[i].ID == id {
			return &s.Stories[i], true
		}
	}
	return nil, false
}

// IDs returns the identifiers present in a family, in collection order.
func (s *Snapshot) IDs(family Family) []string {
	var out []string
	switch family {
	case FamilyReleases:
		for i := range s.Releases {
			out = append(out, s.Releases[i].ID)
		}
	case FamilyDomain:
		for i := range s.Domain {
			out = append(out, s.Domain[i].ID)
		}
	case FamilyRequirements:
		for i := range s.Requirements {
			out = append(out, s.Requirements[i].ID)
		}
	case FamilyFeatures:
		for i := range s.Features {
			out = append(out, s.Features[i].ID)
		}
	case FamilyEpics:
		for i := range s.Epics {
			out = append(out, s.Epics[i].ID)
		}
	case FamilyStories:
		for i := range s.Stories {
			out = append(out, s.Stories[i].ID)
		}
	}
	return out
}
