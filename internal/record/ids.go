package record

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Family identifies one of the six canonical collections.
type Family string

const (
	FamilyReleases     Family = "releases"
	FamilyDomain       Family = "domain"
	FamilyRequirements Family = "requirements"
	FamilyFeatures     Family = "features"
	FamilyEpics        Family = "epics"
	FamilyStories      Family = "stories"
)

// Families lists all families in load order (upstream before downstream).
var Families = []Family{
	FamilyReleases,
	FamilyDomain,
	FamilyRequirements,
	FamilyFeatures,
	FamilyEpics,
	FamilyStories,
}

// Filename returns the canonical file name for the family's collection.
func (f Family) Filename() string {
	return string(f) + ".json"
}

// idPrefixes maps families to their identifier prefix. Release IDs embed a
// date instead of a sequence number and are never generated.
var idPrefixes = map[Family]string{
	FamilyDomain:       "DOM",
	FamilyRequirements: "REQ",
	FamilyFeatures:     "FEAT",
	FamilyEpics:        "EPIC",
	FamilyStories:      "STORY",
}

// idPatterns enforces the identifier format per family. A release ID carries
// its date plus an optional single-letter suffix for same-day releases.
var idPatterns = map[Family]*regexp.Regexp{
	FamilyReleases:     regexp.MustCompile(`^REL-\d{4}-\d{2}-\d{2}(-[a-z])?$`),
	FamilyDomain:       regexp.MustCompile(`^DOM-\d{3,}$`),
	FamilyRequirements: regexp.MustCompile(`^REQ-\d{3,}$`),
	FamilyFeatures:     regexp.MustCompile(`^FEAT-\d{3,}$`),
	FamilyEpics:        regexp.MustCompile(`^EPIC-\d{3,}$`),
	FamilyStories:      regexp.MustCompile(`^STORY-\d{3,}$`),
}

// ValidID reports whether id matches the family's identifier format.
func ValidID(family Family, id string) bool {
	pattern, ok := idPatterns[family]
	if !ok {
		return false
	}
	return pattern.MatchString(id)
}

// NextID generates the next sequential identifier for a family given the
// identifiers already in use. Identifiers are never reused: the result is
// one past the highest number ever assigned, even if earlier records were
// deprecated.
func NextID(family Family, existing []string) (string, error) {
	prefix, ok := idPrefixes[family]
	if !ok {
		return "", NewError(CodeInvalidID, "family %q does not use generated identifiers", family)
	}

	numbered := regexp.MustCompile(`^` + prefix + `-(\d+)$`)
	maxNum := 0
	for _, id := range existing {
		m := numbered.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > maxNum {
			maxNum = n
		}
	}

	return fmt.Sprintf("%s-%03d", prefix, maxNum+1), nil
}

// TimestampFormat is the audit timestamp layout (UTC, second precision).
const TimestampFormat = "2006-01-02T15:04:05Z"

// DateFormat is the release date layout.
const DateFormat = "2006-01-02"

// Timestamp formats t as an audit timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseDate parses a release date. Dates are compared as dates, never as
// raw strings.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, WrapError(CodeSchema, err, "invalid date %q", s)
	}
	return t, nil
}
