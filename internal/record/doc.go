// Package record defines the canonical data model for the requirements
// repository: the six record families (release, domain, requirement,
// feature, epic, story), their status enumerations, identifier formats,
// and the stable JSON encoding used for every persisted artifact.
//
// # Families
//
// Unversioned families (domain, requirement, feature, release) are flat
// records cross-referencing upstream records by identifier only. Epics and
// stories are versioned artifacts: a stable record owning an append-only,
// contiguously numbered sequence of versions, each bound to exactly one
// release.
//
// # Critical Patterns
//
// CP-1: Explicit store state
//   - All collections travel together in a Snapshot value
//   - No package-level mutable state; every operation takes a Snapshot
//
// CP-2: Stable serialization
//   - EncodeStable is the ONLY encoder for persisted artifacts
//   - Sorted object keys, two-space indent, no HTML escaping, NFC strings
//   - Identical input produces byte-identical output, so regeneration
//     diffs cleanly under version control
//
// CP-3: Structured errors
//   - Every failure is an *Error with a Code from the closed taxonomy
//   - Callers branch on CodeOf/IsCode, never on message text
package record
