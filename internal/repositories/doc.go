// Package repositories implements SQLite persistence for account records.
//
// Per-user collection data (saved movies, progress, ratings, history) does not live here; it is
// stored as JSON documents in the key-value store (see package storage). This package holds the
// relational side: the account registry used to register and sign in.
//
// Key Implementations:
//   - [UserRepository] : User account persistence with email-based lookups
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
