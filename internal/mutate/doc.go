// Package mutate applies named operations to the canonical store.
//
// Every operation follows the same discipline: load the full store, clone
// the snapshot, mutate the clone, run full-store validation, and persist
// only if no blocking violation remains. A rejected or failed operation
// leaves the persisted store byte-identical to its prior state.
//
// # Critical Patterns
//
// CP-1: Clone before mutate
//   - Operations receive a deep clone of the loaded snapshot
//   - The engine discards the clone on any error, so partial mutations
//     never leak into the store or into the caller's snapshot
//
// CP-2: Validate the whole store, not the delta
//   - Post-mutation validation re-checks every record, so an operation
//     cannot break an invariant it did not touch
//
// CP-3: Operations are data
//   - The operation set is a fixed registry keyed by name; an unknown
//     name is UNKNOWN_OPERATION, never a silent no-op
package mutate
