// Package tasks groups a user's saved tracks by genre and keeps genre playlists in sync with those groups.
//
// # Core Operations
//
// The [Organizer] interface defines the operations used by the CLI:
//
//  1. [Organizer.GenreGroups] : fetch saved tracks and artists, then group tracks by artist genre
//  2. [Organizer.CreateGenrePlaylists] : create or extend one playlist per genre group
//     - Groups at or below the minimum track count are skipped
//     - Tracks already in a playlist are never added again
//     - A failing genre is logged and skipped; the remaining genres still run
//  3. [Organizer.RemoveDuplicateTracks] and [Organizer.RemoveAllDuplicateTracks] : keep the first occurrence of each track
//     - The library-wide variant stops at the first failing playlist
//
// # Grouping
//
// [GroupByGenre] fans out one goroutine per genre, bounded by an errgroup limit, and merges the results in a single
// loop. It makes no remote calls.
//
// # Run Log
//
// Every operation returns a [RunLog], the ordered human-readable narrative of what it did, including skipped genres.
// [GenreEngine] also keeps the concatenation of all operation logs, available through [GenreEngine.Log].
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default to prevent blocking.
package tasks
