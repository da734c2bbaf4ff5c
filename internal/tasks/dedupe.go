package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/services"
	"github.com/desertthunder/stylefy/internal/shared"
)

// DedupeResult reports the occurrences removed from one playlist.
type DedupeResult struct {
	PlaylistID   string                `json:"playlist_id"`
	PlaylistName string                `json:"playlist_name"`
	Removed      []models.PlaylistItem `json:"removed"`
	Log          RunLog                `json:"log"`
}

// LibraryDedupeResult reports a library-wide duplicate removal. Results holds the playlists processed before any failure.
type LibraryDedupeResult struct {
	Results []DedupeResult `json:"results"`
	Removed int            `json:"removed"`
	Log     RunLog         `json:"log"`
}

// Deduplicator removes repeated tracks from playlists.
type Deduplicator struct {
	library services.Library
	logger  *log.Logger
}

// NewDeduplicator creates a Deduplicator. A nil logger discards diagnostics.
func NewDeduplicator(library services.Library, logger *log.Logger) *Deduplicator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Deduplicator{library: library, logger: logger}
}

// FindDuplicates returns every occurrence of a track after its first, in playlist order.
//
// Tracks are compared by ID; items without an ID are never duplicates but still occupy their position.
func FindDuplicates(tracks []models.Track) []models.PlaylistItem {
	seen := make(map[string]struct{}, len(tracks))
	var dups []models.PlaylistItem
	for pos, t := range tracks {
		if t.ID == "" {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			dups = append(dups, models.PlaylistItem{Track: t, Position: pos})
			continue
		}
		seen[t.ID] = struct{}{}
	}
	return dups
}

// RemoveDuplicates removes all but the first occurrence of each track in playlist with a single removal request.
// No request is made when there is nothing to remove.
func (d *Deduplicator) RemoveDuplicates(ctx context.Context, playlist models.Playlist) (*DedupeResult, error) {
	result := &DedupeResult{PlaylistID: playlist.ID, PlaylistName: playlist.Name}

	tracks, err := services.Collect(ctx, func(ctx context.Context, cursor string) (services.Page[models.Track], error) {
		return d.library.PlaylistTracksPage(ctx, playlist.ID, cursor)
	})
	if err != nil {
		return result, err
	}

	dups := FindDuplicates(tracks)
	if len(dups) == 0 {
		d.logger.Debug("no duplicates", "playlist", playlist.ID)
		return result, nil
	}

	result.Log.Printf("Removing %d duplicate tracks from %s playlist.", len(dups), displayName(playlist))
	if err := d.library.RemovePlaylistItems(ctx, playlist.ID, dups); err != nil {
		return result, err
	}

	result.Removed = dups
	return result, nil
}

// RemoveTracks removes every occurrence of the given URIs from playlist with a single removal request.
// URIs not present in the playlist are ignored; no request is made when nothing matches.
func (d *Deduplicator) RemoveTracks(ctx context.Context, playlist models.Playlist, uris []string) (*DedupeResult, error) {
	result := &DedupeResult{PlaylistID: playlist.ID, PlaylistName: playlist.Name}
	if len(uris) == 0 {
		return result, fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidArgument)
	}

	tracks, err := services.Collect(ctx, func(ctx context.Context, cursor string) (services.Page[models.Track], error) {
		return d.library.PlaylistTracksPage(ctx, playlist.ID, cursor)
	})
	if err != nil {
		return result, err
	}

	wanted := make(map[string]struct{}, len(uris))
	for _, uri := range uris {
		wanted[uri] = struct{}{}
	}

	var items []models.PlaylistItem
	for pos, t := range tracks {
		if _, ok := wanted[t.URI]; ok && t.URI != "" {
			items = append(items, models.PlaylistItem{Track: t, Position: pos})
		}
	}
	if len(items) == 0 {
		d.logger.Debug("no matching tracks", "playlist", playlist.ID)
		return result, nil
	}

	result.Log.Printf("Removing %d tracks from %s playlist.", len(items), displayName(playlist))
	if err := d.library.RemovePlaylistItems(ctx, playlist.ID, items); err != nil {
		return result, err
	}

	result.Removed = items
	return result, nil
}

// RemoveAll runs [Deduplicator.RemoveDuplicates] over playlists in order.
//
// The first failure stops the sequence and is returned together with the results gathered so far.
func (d *Deduplicator) RemoveAll(ctx context.Context, playlists []models.Playlist, progress chan<- ProgressUpdate) (*LibraryDedupeResult, error) {
	result := &LibraryDedupeResult{}
	for i, pl := range playlists {
		sendProgress(progress, dedupeUpdate(i+1, len(playlists), pl))

		r, err := d.RemoveDuplicates(ctx, pl)
		result.Log.Append(r.Log)
		if err != nil {
			return result, err
		}

		result.Results = append(result.Results, *r)
		result.Removed += len(r.Removed)
	}
	return result, nil
}

func displayName(pl models.Playlist) string {
	if pl.Name != "" {
		return pl.Name
	}
	return pl.ID
}
