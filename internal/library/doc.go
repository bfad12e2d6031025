// Package library persists the game library in SQLite. Entry ids are
// deterministic when a source app id is known (steam-620) and opaque
// otherwise. The store enforces id uniqueness per logical game: an upsert
// under a new id removes any superseded row for the same install in the
// same transaction. A file lock on the data directory enforces the
// single-writer assumption.
package library
