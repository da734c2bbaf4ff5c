package models

import (
	"slices"
	"time"
)

// ArtistRef is an artist credit on a track. Genres are resolved separately through [Artist].
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track represents a track on the streaming service.
//
// URI is the addressable form used for playlist membership operations.
// ID is empty for items that are not catalog tracks (local files, episodes).
type Track struct {
	ID      string      `json:"id"`
	URI     string      `json:"uri"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// ArtistIDs returns the IDs of the credited artists in credit order.
func (t Track) ArtistIDs() []string {
	ids := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		ids = append(ids, a.ID)
	}
	return ids
}

// SavedTrack is a [Track] saved in the user's library.
type SavedTrack struct {
	Track
	AddedAt time.Time `json:"added_at"`
}

// Artist holds the genre tags for an artist. A nil or empty Genres slice means no genres.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// HasGenre reports whether the artist carries the genre tag. Matching is exact.
func (a Artist) HasGenre(genre string) bool {
	return slices.Contains(a.Genres, genre)
}

// Playlist represents playlist metadata.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerID     string `json:"owner_id"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	TrackCount  int    `json:"track_count"`
}

// PlaylistItem is one occurrence of a track inside a playlist.
type PlaylistItem struct {
	Track
	Position int `json:"position"` // zero-based position in the playlist
}

// GenreGroups maps a genre tag to the distinct saved tracks whose artists carry it.
type GenreGroups map[string][]SavedTrack

// Genres returns the group keys in ascending order.
func (g GenreGroups) Genres() []string {
	genres := make([]string, 0, len(g))
	for genre := range g {
		genres = append(genres, genre)
	}
	slices.Sort(genres)
	return genres
}

// URIs returns the track URIs of a group in group order.
func (g GenreGroups) URIs(genre string) []string {
	tracks := g[genre]
	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		uris = append(uris, t.URI)
	}
	return uris
}
