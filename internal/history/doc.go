// Package history persists conversation transcripts across sessions.
//
// # Architecture
//
// Store is the typed layer the conversation core talks to. It encodes each
// chat.Transcript as JSON text and hands the bytes to a Backend, a plain
// durable key-value store:
//
//   - MemoryBackend: map-backed, for tests and ephemeral runs
//   - SQLiteBackend: one row per conversation key in a local database file
//
// # Failure Semantics
//
// Store.Load never returns an error. Missing keys, unreadable rows and
// malformed JSON all load as "absent" so a corrupted entry can never block the
// widget; the caller falls back to a fresh greeting. Corrupt entries are
// logged with ErrCorrupt.
//
// Save overwrites the whole entry (last writer wins) and is idempotent.
//
// # Drivers
//
// SQLiteBackend accepts either registered driver name:
//
//   - "sqlite": modernc.org/sqlite (pure Go, default)
//   - "sqlite3": github.com/mattn/go-sqlite3 (cgo)
package history
