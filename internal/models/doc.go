// Package models defines domain entities and persistence interfaces for MovieBox.
//
// The package contains three categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from the TMDB API
//   - [Movie] : movie summary as returned by list and search endpoints
//   - [MovieDetails] : full movie record with credits and videos
//   - [MoviePage] : one page of a paginated listing
//
// 2. Collection records: JSON documents kept in the key-value store, one list per user
//   - [SavedMovie] : a categorized bookmark ([Category])
//   - [WatchProgress] : playback progress for one movie
//   - [UserRating] : 1-5 star rating with optional review
//   - [Stats] : derived counters, never stored
//
// 3. Persistent Entities: database-backed models with full lifecycle management
//   - [User] : local account with [Preferences]
//
// Persistent entities implement the [Model] interface; [Repository] defines CRUD access for them.
package models
