// Package player is the playback control surface for a single movie.
//
// A [Session] holds the on-screen state (playing, muted, volume, position, speed, quality),
// applies user gestures to a [Media] element and folds the element's asynchronous [Status]
// callbacks back into that state. While playing it periodically writes watch progress;
// at end of video it records 100% and asks for a rating; on close it flushes once more.
//
// [Simulator] is a clock-driven [Media] used by the CLI where no real video element exists.
package player
