// Package validate performs whole-store consistency checking. It runs
// after every mutation and as a standalone command, accumulating every
// violation it finds rather than stopping at the first (a prior failure
// only suppresses checks it makes meaningless, e.g. lineage checks on an
// artifact with no versions).
//
// Checks:
//  1. schema shape per family (CUE definitions in schema.cue)
//  2. identifier format and uniqueness within each family
//  3. foreign reference resolution
//  4. temporal coherence across each version chain
//  5. version lineage (contiguous numbering, linear supersedes chain,
//     exactly one current version)
//  6. status coherence (superseded versions carry superseded status)
//  7. build-readiness completeness for stories
//
// Release closure is enforced at mutation time only: historical versions
// legitimately reference releases that have since closed, so the validator
// does not re-check release status retroactively.
package validate

import (
	"fmt"
	"sort"

	"github.com/roach88/reqstore/internal/ledger"
	"github.com/roach88/reqstore/internal/record"
)

// Options controls optional checks.
type Options struct {
	// IncludeWarnings enables the advisory checks (deprecated upstream
	// references). Blocking checks always run.
	IncludeWarnings bool
}

// Check validates the full snapshot and returns every violation found.
func Check(snap *record.Snapshot, opts Options) []Violation {
	var violations []Violation
	report := func(v Violation) { violations = append(violations, v) }

	checkSchemaShape(snap, report)
	checkIdentifiers(snap, report)
	checkReferences(snap, report)
	checkVersionChains(snap, report)

	if opts.IncludeWarnings {
		checkDeprecatedRefs(snap, report)
	}

	return violations
}

// checkIdentifiers validates ID format and uniqueness per family.
func checkIdentifiers(snap *record.Snapshot, report func(Violation)) {
	for _, family := range record.Families {
		seen := map[string]bool{}
		for _, id := range snap.IDs(family) {
			if id == "" {
				report(Violation{
					Code:     CodeIDFormat,
					Severity: SeverityBlocking,
					Record:   string(family),
					Message:  "record missing id",
				})
				continue
			}
			if !record.ValidID(family, id) {
				report(Violation{
					Code:     CodeIDFormat,
					Severity: SeverityBlocking,
					Record:   id,
					Message:  fmt.Sprintf("invalid %s identifier format", family),
				})
			}
			if seen[id] {
				report(Violation{
					Code:     CodeIDDuplicate,
					Severity: SeverityBlocking,
					Record:   id,
					Message:  fmt.Sprintf("duplicate identifier in %s", family),
				})
			}
			seen[id] = true
		}
	}
}

// refSets builds per-family membership sets for reference resolution.
type refSets struct {
	releases     map[string]bool
	domain       map[string]bool
	requirements map[string]bool
	features     map[string]bool
	epics        map[string]bool
}

func buildRefSets(snap *record.Snapshot) refSets {
	toSet := func(ids []string) map[string]bool {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		return set
	}
	return refSets{
		releases:     toSet(snap.IDs(record.FamilyReleases)),
		domain:       toSet(snap.IDs(record.FamilyDomain)),
		requirements: toSet(snap.IDs(record.FamilyRequirements)),
		features:     toSet(snap.IDs(record.FamilyFeatures)),
		epics:        toSet(snap.IDs(record.FamilyEpics)),
	}
}

// checkReferences validates that every foreign reference resolves.
func checkReferences(snap *record.Snapshot, report func(Violation)) {
	sets := buildRefSets(snap)

	unresolved := func(id, field, ref, target string, version int) {
		report(Violation{
			Code:     CodeUnresolvedRef,
			Severity: SeverityBlocking,
			Record:   id,
			Version:  version,
			Message:  fmt.Sprintf("%s %q not found in %s", field, ref, target),
		})
	}
	checkRefs := func(id, field string, refs []string, set map[string]bool, target string, version int) {
		for _, ref := range refs {
			if !set[ref] {
				unresolved(id, field, ref, target, version)
			}
		}
	}

	for _, req := range snap.Requirements {
		checkRefs(req.ID, "domain_refs", req.DomainRefs, sets.domain, "domain", 0)
		if req.SupersededBy != nil && !sets.requirements[*req.SupersededBy] {
			unresolved(req.ID, "superseded_by", *req.SupersededBy, "requirements", 0)
		}
	}

	for _, feat := range snap.Features {
		checkRefs(feat.ID, "requirement_refs", feat.RequirementRefs, sets.requirements, "requirements", 0)
		checkRefs(feat.ID, "domain_refs", feat.DomainRefs, sets.domain, "domain", 0)
	}

	for _, epic := range snap.Epics {
		if epic.FeatureRef != "" && !sets.features[epic.FeatureRef] {
			unresolved(epic.ID, "feature_ref", epic.FeatureRef, "features", 0)
		}
		for _, v := range epic.Versions {
			if v.ReleaseRef == "" {
				report(Violation{
					Code:     CodeUnresolvedRef,
					Severity: SeverityBlocking,
					Record:   epic.ID,
					Version:  v.Version,
					Message:  "missing required release_ref",
				})
			} else if !sets.releases[v.ReleaseRef] {
				unresolved(epic.ID, "release_ref", v.ReleaseRef, "releases", v.Version)
			}
			checkRefs(epic.ID, "requirement_refs", v.RequirementRefs, sets.requirements, "requirements", v.Version)
			checkRefs(epic.ID, "domain_refs", v.DomainRefs, sets.domain, "domain", v.Version)
		}
	}

	for _, story := range snap.Stories {
		if story.EpicRef != "" && !sets.epics[story.EpicRef] {
			unresolved(story.ID, "epic_ref", story.EpicRef, "epics", 0)
		}
		for _, v := range story.Versions {
			if v.ReleaseRef == "" {
				report(Violation{
					Code:     CodeUnresolvedRef,
					Severity: SeverityBlocking,
					Record:   story.ID,
					Version:  v.Version,
					Message:  "missing required release_ref",
				})
			} else if !sets.releases[v.ReleaseRef] {
				unresolved(story.ID, "release_ref", v.ReleaseRef, "releases", v.Version)
			}
			checkRefs(story.ID, "requirement_refs", v.RequirementRefs, sets.requirements, "requirements", v.Version)
			checkRefs(story.ID, "domain_refs", v.DomainRefs, sets.domain, "domain", v.Version)
		}
	}
}

// chainView is the neutral view of one version used by the chain checks.
type chainView struct {
	number     int
	status     string
	releaseRef string
	supersedes *int
	buildReady bool
	complete   bool
}

// checkVersionChains runs lineage, status-coherence, temporal-coherence,
// and completeness checks over every versioned artifact.
func checkVersionChains(snap *record.Snapshot, report func(Violation)) {
	for _, epic := range snap.Epics {
		views := make([]chainView, len(epic.Versions))
		for i, v := range epic.Versions {
			views[i] = chainView{
				number:     v.Version,
				status:     string(v.Status),
				releaseRef: v.ReleaseRef,
				supersedes: v.Supersedes,
				complete:   true,
			}
		}
		checkChain(snap, epic.ID, views, report)
	}

	for _, story := range snap.Stories {
		views := make([]chainView, len(story.Versions))
		for i, v := range story.Versions {
			views[i] = chainView{
				number:     v.Version,
				status:     string(v.Status),
				releaseRef: v.ReleaseRef,
				supersedes: v.Supersedes,
				buildReady: v.Status.BuildReady(),
				complete:   len(v.AcceptanceCriteria) > 0 && v.TestIntent.Specified(),
			}
		}
		checkChain(snap, story.ID, views, report)
	}
}

func checkChain(snap *record.Snapshot, id string, views []chainView, report func(Violation)) {
	if len(views) == 0 {
		report(Violation{
			Code:     CodeLineageGap,
			Severity: SeverityBlocking,
			Record:   id,
			Message:  "versioned artifact must have at least one version",
		})
		return
	}

	ordered := make([]chainView, len(views))
	copy(ordered, views)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].number < ordered[j].number })

	// Contiguous numbering 1..N. A gap or duplicate makes the remaining
	// chain checks meaningless for this artifact.
	contiguous := true
	for i, v := range ordered {
		if v.number != i+1 {
			report(Violation{
				Code:     CodeLineageGap,
				Severity: SeverityBlocking,
				Record:   id,
				Message:  fmt.Sprintf("version numbers not contiguous (expected %d, found %d)", i+1, v.number),
			})
			contiguous = false
			break
		}
	}
	if !contiguous {
		return
	}

	max := ordered[len(ordered)-1].number

	for _, v := range ordered {
		// Linear supersedes chain: v1 points nowhere, vN points at N-1.
		switch {
		case v.number == 1 && v.supersedes != nil:
			report(Violation{
				Code:     CodeBrokenChain,
				Severity: SeverityBlocking,
				Record:   id,
				Version:  v.number,
				Message:  fmt.Sprintf("version 1 must not supersede anything (found %d)", *v.supersedes),
			})
		case v.number > 1 && (v.supersedes == nil || *v.supersedes != v.number-1):
			report(Violation{
				Code:     CodeBrokenChain,
				Severity: SeverityBlocking,
				Record:   id,
				Version:  v.number,
				Message:  fmt.Sprintf("version %d must supersede version %d", v.number, v.number-1),
			})
		}

		// Status coherence: only the highest version may be current.
		if v.number < max && v.status != record.SupersededStatus {
			report(Violation{
				Code:     CodeStatusCoherence,
				Severity: SeverityBlocking,
				Record:   id,
				Version:  v.number,
				Message:  fmt.Sprintf("non-current version carries status %q, must be superseded", v.status),
			})
		}
		if v.number == max && v.status == record.SupersededStatus {
			report(Violation{
				Code:     CodeNoCurrent,
				Severity: SeverityBlocking,
				Record:   id,
				Message:  "artifact has no current version (highest version is superseded)",
			})
		}

		// Build-readiness completeness (stories only; buildReady is never
		// set for epics).
		if v.buildReady && !v.complete {
			report(Violation{
				Code:     CodeIncompleteStory,
				Severity: SeverityBlocking,
				Record:   id,
				Version:  v.number,
				Message:  fmt.Sprintf("status %q requires acceptance criteria and a failure mode or guarantee", v.status),
			})
		}
	}

	// Temporal coherence: each version's release must not predate its
	// predecessor's. Unresolved or malformed releases are already reported
	// by other checks; skip those pairs here.
	for i := 1; i < len(ordered); i++ {
		prev, ok := snap.ReleaseByID(ordered[i-1].releaseRef)
		if !ok {
			continue
		}
		cur, ok := snap.ReleaseByID(ordered[i].releaseRef)
		if !ok {
			continue
		}
		prevDate, err := record.ParseDate(prev.ReleaseDate)
		if err != nil {
			continue
		}
		curDate, err := record.ParseDate(cur.ReleaseDate)
		if err != nil {
			continue
		}
		if curDate.Before(prevDate) {
			report(Violation{
				Code:     CodeTemporalOrder,
				Severity: SeverityBlocking,
				Record:   id,
				Version:  ordered[i].number,
				Message: fmt.Sprintf("release %s (%s) predates predecessor release %s (%s)",
					cur.ID, cur.ReleaseDate, prev.ID, prev.ReleaseDate),
			})
		}
	}
}

// checkDeprecatedRefs warns when current versions or parent references
// point at deprecated upstream records. Superseded versions are history and
// are skipped.
func checkDeprecatedRefs(snap *record.Snapshot, report func(Violation)) {
	deprecatedDomain := map[string]bool{}
	for _, d := range snap.Domain {
		if d.Status == record.StatusDeprecated {
			deprecatedDomain[d.ID] = true
		}
	}
	deprecatedReqs := map[string]bool{}
	for _, r := range snap.Requirements {
		if r.Status == record.StatusDeprecated {
			deprecatedReqs[r.ID] = true
		}
	}
	deprecatedFeatures := map[string]bool{}
	for _, f := range snap.Features {
		if f.Status == record.StatusDeprecated {
			deprecatedFeatures[f.ID] = true
		}
	}

	warn := func(id string, version int, field, ref string) {
		report(Violation{
			Code:     CodeDeprecatedRef,
			Severity: SeverityWarning,
			Record:   id,
			Version:  version,
			Message:  fmt.Sprintf("%s references deprecated record %q", field, ref),
		})
	}

	for _, epic := range snap.Epics {
		if deprecatedFeatures[epic.FeatureRef] {
			warn(epic.ID, 0, "feature_ref", epic.FeatureRef)
		}
		if cur, ok := ledger.Current(record.VersionPtrs(epic.Versions)); ok {
			for _, ref := range cur.RequirementRefs {
				if deprecatedReqs[ref] {
					warn(epic.ID, cur.Version, "requirement_refs", ref)
				}
			}
			for _, ref := range cur.DomainRefs {
				if deprecatedDomain[ref] {
					warn(epic.ID, cur.Version, "domain_refs", ref)
				}
			}
		}
	}

	for _, story := range snap.Stories {
		if cur, ok := ledger.Current(record.VersionPtrs(story.Versions)); ok {
			for _, ref := range cur.RequirementRefs {
				if deprecatedReqs[ref] {
					warn(story.ID, cur.Version, "requirement_refs", ref)
				}
			}
			for _, ref := range cur.DomainRefs {
				if deprecatedDomain[ref] {
					warn(story.ID, cur.Version, "domain_refs", ref)
				}
			}
		}
	}
}
