package services

import (
	"context"

	"github.com/desertthunder/stylefy/internal/models"
)

// MaxBatchSize is the largest number of ids or URIs accepted by a single artist lookup or playlist addition.
const MaxBatchSize = 50

// Page is one page of a paginated collection. An empty Next means there are no more pages.
type Page[T any] struct {
	Items []T
	Next  string
}

// Library defines the operations the organizer needs from a music streaming service.
//
// Every method may fail with an error wrapping [shared.ErrUpstream]; implementations do not retry.
type Library interface {
	// SavedTracksPage returns the page of the user's saved tracks starting at cursor.
	// The first page is requested with an empty cursor.
	SavedTracksPage(ctx context.Context, cursor string) (Page[models.SavedTrack], error)

	// OwnedPlaylistsPage returns the page of playlists owned by the current user starting at cursor.
	OwnedPlaylistsPage(ctx context.Context, cursor string) (Page[models.Playlist], error)

	// PlaylistTracksPage returns the page of a playlist's items starting at cursor.
	// Every playlist position yields one track; non-catalog items have an empty ID.
	PlaylistTracksPage(ctx context.Context, playlistID, cursor string) (Page[models.Track], error)

	// Artists looks up 1 to [MaxBatchSize] artists by ID.
	Artists(ctx context.Context, ids []string) ([]models.Artist, error)

	// CreatePlaylist creates an empty playlist owned by ownerID.
	CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error)

	// AddPlaylistItems appends 1 to [MaxBatchSize] track URIs to a playlist.
	AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error

	// RemovePlaylistItems removes exactly the given occurrences in a single request.
	RemovePlaylistItems(ctx context.Context, playlistID string, items []models.PlaylistItem) error

	// CurrentUserID returns the ID of the authenticated user.
	CurrentUserID(ctx context.Context) (string, error)
}
