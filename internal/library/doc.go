// Package library manages a signed-in user's saved movies, watch progress, ratings and watch history.
//
// Each list is stored as one JSON document per user in the key-value store:
//
//	saved_movies_{userID}    []models.SavedMovie
//	watch_progress_{userID}  []models.WatchProgress
//	user_ratings_{userID}    []models.UserRating
//	watch_history_{userID}   []int
//
// Every mutation loads the whole list, changes it in memory and writes the whole list back.
// There is no locking between callers, so two concurrent writers to the same list (for
// example a progress tick from the player racing a manual update) can lose one update.
//
// Mutations return an error wrapping [shared.ErrNotAuthenticated], [shared.ErrStorage],
// [shared.ErrInvalidInput] or [shared.ErrInvalidRating]. Reads never fail: on any error they
// log a warning and return an empty value.
package library
