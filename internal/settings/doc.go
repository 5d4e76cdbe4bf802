// Package settings manages the threshold windows that drive the gray-to-alpha
// mapping: one global default window plus optional per-image overrides.
//
// The Store is the only shared mutable state in the engine. It owns a single
// durable JSON document holding the global window and the override table, and
// serializes all access behind a mutex. Writes go through a temp-file-then-rename
// sequence so a crash mid-write never corrupts previously committed state.
//
// # Resolution
//
// Resolve computes the effective window for a file name fresh on every call:
// the override if one exists, otherwise the global default. Nothing is cached,
// so a global update is immediately visible to every non-overridden image.
//
// # Validation
//
// Both window bounds must lie in [0, 255] and min must not exceed max.
// Validation happens before any mutation or disk write; a rejected update
// leaves the store exactly as it was.
package settings
