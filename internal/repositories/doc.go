// Package repositories implements SQLite persistence for run history.
//
// [RunRepository] records each organize or dedupe invocation with its status and run log. Library entities such as
// tracks and playlists are never stored; they are fetched fresh on every run.
//
// Runs are soft deleted via deleted_at and excluded from queries by default.
// Sequence numbers provide stable, human-readable ordering (run #1, run #2) independent of UUIDs and timestamps.
// [RunRepository.Create] takes the next value from the runs_sequence counter in the same transaction as the insert.
package repositories
