// Package models defines domain entities and persistence interfaces for stylefy.
//
// The package contains two categories of types:
//
// 1. Library entities fetched fresh from the streaming service on every run:
//   - [Track] : Identity, URI and the artists credited on a track
//   - [SavedTrack] : A [Track] that is in the user's library
//   - [Artist] : Artist metadata carrying the genre tags used for grouping
//   - [Playlist] : Playlist metadata including its owner
//   - [PlaylistItem] : A track at a specific position inside a playlist
//   - [GenreGroups] : Derived genre -> saved tracks mapping, recomputed per run
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Run] : One organize/dedupe invocation and its run log
//
// Library entities are never stored. Persistent entities implement the [Model] interface
// providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
