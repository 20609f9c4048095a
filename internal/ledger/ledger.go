// Package ledger encapsulates the versioning rules for versioned artifacts
// (epics and stories): append-only contiguous numbering, single-current
// supersession, release closure, and temporal coherence across the chain.
//
// The ledger is generic over the Version interface so the same rules govern
// both artifact kinds. It validates fully before mutating anything: an
// error return from any function means no version was touched.
package ledger

import (
	"github.com/roach88/reqstore/internal/record"
)

// Version is the ledger's view of one entry in a versioned artifact's
// sequence. *record.EpicVersion and *record.StoryVersion implement it; use
// record.VersionPtrs to obtain the pointer slice.
type Version interface {
	Number() int
	StatusName() string
	Release() string
	Predecessor() *int
	MarkSuperseded(now string)
}

// ReleaseLookup resolves a release identifier against the snapshot.
type ReleaseLookup func(id string) (*record.Release, bool)

// Current returns the current version: the highest-numbered entry whose
// status is not superseded. The second return is false when the sequence is
// empty or every entry is superseded (an invalid state the validator flags).
func Current[V Version](versions []V) (V, bool) {
	var cur V
	found := false
	for _, v := range versions {
		if v.StatusName() == record.SupersededStatus {
			continue
		}
		if !found || v.Number() > cur.Number() {
			cur = v
			found = true
		}
	}
	return cur, found
}

// NextNumber returns the number the next appended version must carry.
func NextNumber[V Version](versions []V) int {
	max := 0
	for _, v := range versions {
		if v.Number() > max {
			max = v.Number()
		}
	}
	return max + 1
}

// Append validates the release-binding rules for a new version and
// supersedes the current one. It returns the number the new version must
// carry and its supersedes pointer (nil for version 1); the caller
// constructs the typed version record and appends it in the same
// transaction.
//
// Checks, all before any mutation:
//   - the target release exists (INVALID_RELEASE)
//   - the target release is planned (CLOSED_RELEASE)
//   - the target release is not chronologically earlier than the
//     predecessor's release, compared by date (TEMPORAL_ORDER)
func Append[V Version](versions []V, releaseRef string, lookup ReleaseLookup, now string) (next int, supersedes *int, err error) {
	target, ok := lookup(releaseRef)
	if !ok {
		return 0, nil, record.NewError(record.CodeInvalidRelease, "release %q not found", releaseRef)
	}
	if target.Status.Closed() {
		return 0, nil, record.NewError(record.CodeClosedRelease,
			"cannot bind new version to %s release %q", target.Status, releaseRef)
	}

	cur, hasCur := Current(versions)
	if hasCur {
		prev, ok := lookup(cur.Release())
		if !ok {
			return 0, nil, record.NewError(record.CodeInvalidRelease,
				"predecessor release %q not found", cur.Release())
		}
		if err := checkTemporalOrder(prev, target); err != nil {
			return 0, nil, err
		}
	}

	next = NextNumber(versions)
	if next > 1 {
		n := next - 1
		supersedes = &n
	}
	if hasCur {
		cur.MarkSuperseded(now)
	}
	return next, supersedes, nil
}

// Mutable returns version n if and only if it may still be modified, i.e.
// it is the current version. Passing n == 0 selects the current version.
// A superseded version yields IMMUTABLE_VERSION; an absent one NOT_FOUND.
func Mutable[V Version](versions []V, n int) (V, error) {
	var zero V
	cur, ok := Current(versions)
	if !ok {
		return zero, record.NewError(record.CodeNotFound, "artifact has no current version")
	}
	if n == 0 || n == cur.Number() {
		return cur, nil
	}
	for _, v := range versions {
		if v.Number() == n {
			return zero, record.NewError(record.CodeImmutableVersion,
				"version %d is superseded and immutable", n)
		}
	}
	return zero, record.NewError(record.CodeNotFound, "version %d not found", n)
}

func checkTemporalOrder(prev, target *record.Release) error {
	prevDate, err := record.ParseDate(prev.ReleaseDate)
	if err != nil {
		return err
	}
	targetDate, err := record.ParseDate(target.ReleaseDate)
	if err != nil {
		return err
	}
	if targetDate.Before(prevDate) {
		return record.NewError(record.CodeTemporalOrder,
			"release %s (%s) predates predecessor release %s (%s)",
			target.ID, target.ReleaseDate, prev.ID, prev.ReleaseDate)
	}
	return nil
}
