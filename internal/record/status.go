package record

// ReleaseStatus is the lifecycle of a delivery event. A release is created
// planned; closing it (released or superseded) freezes all bound versions
// and refuses new bindings.
type ReleaseStatus string

const (
	ReleasePlanned    ReleaseStatus = "planned"
	ReleaseReleased   ReleaseStatus = "released"
	ReleaseSuperseded ReleaseStatus = "superseded"
)

// Closed reports whether the release refuses new version bindings.
func (s ReleaseStatus) Closed() bool {
	return s != ReleasePlanned
}

// RecordStatus is the lifecycle of unversioned records and of the epic and
// story records themselves (as opposed to their versions).
type RecordStatus string

const (
	StatusDraft      RecordStatus = "draft" // domain entries only
	StatusActive     RecordStatus = "active"
	StatusDeprecated RecordStatus = "deprecated"
)

// EpicVersionStatus is the status enumeration for epic versions.
type EpicVersionStatus string

const (
	EpicDraft      EpicVersionStatus = "draft"
	EpicApproved   EpicVersionStatus = "approved"
	EpicSuperseded EpicVersionStatus = "superseded"
)

// StoryVersionStatus is the status enumeration for story versions.
type StoryVersionStatus string

const (
	StoryDraft      StoryVersionStatus = "draft"
	StoryReady      StoryVersionStatus = "ready_to_build"
	StoryInBuild    StoryVersionStatus = "in_build"
	StoryBuilt      StoryVersionStatus = "built"
	StorySuperseded StoryVersionStatus = "superseded"
)

// BuildReady reports whether the status requires build-readiness
// completeness (acceptance criteria plus test intent).
func (s StoryVersionStatus) BuildReady() bool {
	switch s {
	case StoryReady, StoryInBuild, StoryBuilt:
		return true
	}
	return false
}

// SupersededStatus is the status every non-current version must carry,
// regardless of artifact kind.
const SupersededStatus = "superseded"

var epicVersionStatuses = map[EpicVersionStatus]bool{
	EpicDraft:      true,
	EpicApproved:   true,
	EpicSuperseded: true,
}

var storyVersionStatuses = map[StoryVersionStatus]bool{
	StoryDraft:      true,
	StoryReady:      true,
	StoryInBuild:    true,
	StoryBuilt:      true,
	StorySuperseded: true,
}

// ValidEpicVersionStatus returns an error if s is not a legal epic version
// status.
func ValidEpicVersionStatus(s EpicVersionStatus) error {
	if !epicVersionStatuses[s] {
		return NewError(CodeSchema, "invalid epic version status %q: must be one of draft, approved, superseded", s)
	}
	return nil
}

// ValidStoryVersionStatus returns an error if s is not a legal story
// version status.
func ValidStoryVersionStatus(s StoryVersionStatus) error {
	if !storyVersionStatuses[s] {
		return NewError(CodeSchema, "invalid story version status %q: must be one of draft, ready_to_build, in_build, built, superseded", s)
	}
	return nil
}

// DomainTypes is the legal value set for domain entry types.
var DomainTypes = map[string]bool{
	"policy":         true,
	"catalog":        true,
	"classification": true,
	"rule":           true,
}

// ValidDomainType returns an error if t is not a legal domain entry type.
func ValidDomainType(t string) error {
	if !DomainTypes[t] {
		return NewError(CodeSchema, "invalid domain entry type %q: must be one of policy, catalog, classification, rule", t)
	}
	return nil
}

// RequirementTypes is the legal value set for requirement types.
var RequirementTypes = map[string]bool{
	"functional":     true,
	"non-functional": true,
}

// ValidRequirementType returns an error if t is not a legal requirement type.
func ValidRequirementType(t string) error {
	if !RequirementTypes[t] {
		return NewError(CodeSchema, "invalid requirement type %q: must be 'functional' or 'non-functional'", t)
	}
	return nil
}

// ValidReleaseStatus returns an error if s is not a legal release status.
func ValidReleaseStatus(s ReleaseStatus) error {
	switch s {
	case ReleasePlanned, ReleaseReleased, ReleaseSuperseded:
		return nil
	}
	return NewError(CodeSchema, "invalid release status %q: must be one of planned, released, superseded", s)
}

func (s ReleaseStatus) String() string { return string(s) }

func (s EpicVersionStatus) String() string { return string(s) }

func (s StoryVersionStatus) String() string { return string(s) }

func (s RecordStatus) String() string { return string(s) }
