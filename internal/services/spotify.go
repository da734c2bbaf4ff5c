// Spotify Web API implementation of [Library]
//
// Requests go through github.com/zmb3/spotify/v2; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/zmb3/spotify/v2"
)

const (
	libraryPageSize  = 50  // me/tracks and me/playlists maximum
	playlistPageSize = 100 // playlists/{id}/tracks maximum
	trackURIPrefix   = "spotify:track:"
)

// SpotifyLibrary implements [Library] against the Spotify Web API.
type SpotifyLibrary struct {
	client *spotify.Client

	mu     sync.Mutex
	userID string
}

// NewSpotifyLibrary wraps an authenticated HTTP client, typically from [SpotifyAuth.HTTPClient].
func NewSpotifyLibrary(httpClient *http.Client, opts ...spotify.ClientOption) *SpotifyLibrary {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpotifyLibrary{client: spotify.New(httpClient, opts...)}
}

// SavedTracksPage retrieves one page of the user's saved tracks.
func (s *SpotifyLibrary) SavedTracksPage(ctx context.Context, cursor string) (Page[models.SavedTrack], error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return Page[models.SavedTrack]{}, err
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(libraryPageSize), spotify.Offset(offset))
	if err != nil {
		return Page[models.SavedTrack]{}, upstream("saved tracks", err)
	}

	items := make([]models.SavedTrack, 0, len(page.Tracks))
	for _, st := range page.Tracks {
		saved := models.SavedTrack{Track: toTrack(&st.FullTrack)}
		if addedAt, err := time.Parse(time.RFC3339, st.AddedAt); err == nil {
			saved.AddedAt = addedAt
		}
		items = append(items, saved)
	}

	return Page[models.SavedTrack]{Items: items, Next: nextCursor(page.Next, offset, len(page.Tracks))}, nil
}

// OwnedPlaylistsPage retrieves one page of the current user's playlists, keeping only the ones they own.
func (s *SpotifyLibrary) OwnedPlaylistsPage(ctx context.Context, cursor string) (Page[models.Playlist], error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return Page[models.Playlist]{}, err
	}

	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return Page[models.Playlist]{}, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(libraryPageSize), spotify.Offset(offset))
	if err != nil {
		return Page[models.Playlist]{}, upstream("playlists", err)
	}

	items := make([]models.Playlist, 0, len(page.Playlists))
	for _, sp := range page.Playlists {
		if sp.Owner.ID != userID {
			continue
		}
		items = append(items, toPlaylist(&sp))
	}

	return Page[models.Playlist]{Items: items, Next: nextCursor(page.Next, offset, len(page.Playlists))}, nil
}

// PlaylistTracksPage retrieves one page of a playlist's items.
func (s *SpotifyLibrary) PlaylistTracksPage(ctx context.Context, playlistID, cursor string) (Page[models.Track], error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return Page[models.Track]{}, err
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(playlistPageSize), spotify.Offset(offset))
	if err != nil {
		return Page[models.Track]{}, upstream("playlist "+playlistID+" items", err)
	}

	items := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		switch {
		case item.Track.Track != nil:
			items = append(items, toTrack(item.Track.Track))
		case item.Track.Episode != nil:
			items = append(items, models.Track{URI: string(item.Track.Episode.URI), Name: item.Track.Episode.Name})
		default:
			items = append(items, models.Track{})
		}
	}

	return Page[models.Track]{Items: items, Next: nextCursor(page.Next, offset, len(page.Items))}, nil
}

// Artists looks up several artists by ID (up to 50). Unknown IDs are omitted from the result.
func (s *SpotifyLibrary) Artists(ctx context.Context, ids []string) ([]models.Artist, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrInvalidArgument)
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d artist IDs, maximum %d", shared.ErrBatchTooLarge, len(ids), MaxBatchSize)
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	found, err := s.client.GetArtists(ctx, spotifyIDs...)
	if err != nil {
		return nil, upstream("artists", err)
	}

	artists := make([]models.Artist, 0, len(found))
	for _, a := range found {
		if a == nil {
			continue
		}
		artists = append(artists, models.Artist{ID: a.ID.String(), Name: a.Name, Genres: a.Genres})
	}
	return artists, nil
}

// CreatePlaylist creates a non-collaborative playlist for ownerID.
func (s *SpotifyLibrary) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error) {
	pl, err := s.client.CreatePlaylistForUser(ctx, ownerID, name, description, public, false)
	if err != nil {
		return nil, upstream("create playlist "+name, err)
	}

	playlist := toPlaylist(&pl.SimplePlaylist)
	return &playlist, nil
}

// AddPlaylistItems appends up to 50 track URIs to a playlist.
func (s *SpotifyLibrary) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidArgument)
	}
	if len(uris) > MaxBatchSize {
		return fmt.Errorf("%w: %d track URIs, maximum %d", shared.ErrBatchTooLarge, len(uris), MaxBatchSize)
	}

	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		id, err := trackIDFromURI(uri)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return upstream("add items to playlist "+playlistID, err)
	}
	return nil
}

// RemovePlaylistItems removes the given occurrences, addressed by URI and position, in one request.
func (s *SpotifyLibrary) RemovePlaylistItems(ctx context.Context, playlistID string, items []models.PlaylistItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no playlist items provided", shared.ErrInvalidArgument)
	}

	var tracks []spotify.TrackToRemove
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.URI]
		if !ok {
			i = len(tracks)
			index[item.URI] = i
			tracks = append(tracks, spotify.TrackToRemove{URI: item.URI})
		}
		tracks[i].Positions = append(tracks[i].Positions, item.Position)
	}

	if _, err := s.client.RemoveTracksFromPlaylistOpt(ctx, spotify.ID(playlistID), tracks, ""); err != nil {
		return upstream("remove items from playlist "+playlistID, err)
	}
	return nil
}

// CurrentUserID returns the authenticated user's ID, fetching it once.
func (s *SpotifyLibrary) CurrentUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", upstream("current user", err)
	}
	s.userID = user.ID
	return s.userID, nil
}

func toTrack(ft *spotify.FullTrack) models.Track {
	track := models.Track{
		ID:      ft.ID.String(),
		URI:     string(ft.URI),
		Name:    ft.Name,
		Artists: make([]models.ArtistRef, 0, len(ft.Artists)),
	}
	for _, a := range ft.Artists {
		track.Artists = append(track.Artists, models.ArtistRef{ID: a.ID.String(), Name: a.Name})
	}
	return track
}

func toPlaylist(sp *spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID.String(),
		Name:        sp.Name,
		OwnerID:     sp.Owner.ID,
		Description: sp.Description,
		Public:      sp.IsPublic,
		TrackCount:  int(sp.Tracks.Total),
	}
}

// parseCursor converts a page cursor into an offset. Cursors are decimal offsets; empty is the first page.
func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: invalid page cursor %q", shared.ErrInvalidArgument, cursor)
	}
	return offset, nil
}

func nextCursor(next string, offset, count int) string {
	if next == "" || count == 0 {
		return ""
	}
	return strconv.Itoa(offset + count)
}

func trackIDFromURI(uri string) (spotify.ID, error) {
	id, ok := strings.CutPrefix(uri, trackURIPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: not a track URI: %q", shared.ErrInvalidArgument, uri)
	}
	return spotify.ID(id), nil
}

// upstream wraps a failed API call. Unauthorized responses additionally wrap [shared.ErrTokenExpired].
func upstream(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w: %s: %v", shared.ErrUpstream, shared.ErrTokenExpired, op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrUpstream, op, err)
}
