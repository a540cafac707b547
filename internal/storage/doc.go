// Package storage implements the key-value store that backs every per-user list.
//
// Values are opaque strings (JSON documents in practice). Keys for per-user data are
// built with [Key] as "{prefix}_{userID}", e.g. "saved_movies_6f1c...".
//
// Implementations:
//   - [SQLiteStore] : local file, the default
//   - [PostgresStore] : hosted database via pgx
//   - [MemoryStore] : process-local map for tests
//
// There is no locking or compare-and-swap: two writers racing on the same key both succeed
// and the last write wins.
package storage
