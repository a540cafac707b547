// Package tasks runs long library operations with real-time progress reporting.
//
// # Core Operations
//
// [LibraryEngine] provides two operations:
//
//  1. [LibraryEngine.BulkExport] : Library export
//     - Snapshots the signed-in user's saved movies, progress, ratings and history
//     - Optionally enriches every saved movie with TMDB details through a worker pool
//     - Writes json, csv, markdown or txt files plus export_manifest.json
//
//  2. [LibraryEngine.Import] : Library import
//     - Reads a JSON export written by BulkExport
//     - Merges it into the signed-in user's library
//
// # Progress Reporting
//
// Both operations accept a channel of [ProgressUpdate] values. Sends never block: a full
// or nil channel drops the update.
//
// # Implementation
//
// [LibraryEngine] depends on:
//   - [Library] : snapshot and restore of the user's lists (library.Library)
//   - [services.MetadataService] : TMDB client, only needed for enrichment
//   - [identity.Provider] : the signed-in user
package tasks
