// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/services"
	"github.com/desertthunder/stylefy/internal/shared"
)

// Call records one invocation of a [MockLibrary] method.
type Call struct {
	Op    string // method name
	Arg   string // playlist ID, playlist name or cursor, depending on Op
	Count int    // number of items sent, for batch methods
}

// MockPlaylist is a playlist held by [MockLibrary] together with its items.
type MockPlaylist struct {
	models.Playlist
	Tracks []models.Track
}

// MockLibrary is an in-memory test double for [services.Library].
//
// Pages hold PageSize items so callers exercise pagination. Errors are injected with [MockLibrary.Fail].
type MockLibrary struct {
	UserID   string
	PageSize int
	Saved    []models.SavedTrack
	Catalog  map[string]models.Artist

	mu        sync.Mutex
	playlists []*MockPlaylist
	errs      map[string]error
	calls     []Call
	nextID    int
}

// NewMockLibrary creates an empty library owned by userID with a page size of 2.
func NewMockLibrary(userID string) *MockLibrary {
	return &MockLibrary{
		UserID:   userID,
		PageSize: 2,
		Catalog:  map[string]models.Artist{},
		errs:     map[string]error{},
	}
}

// NewTrack builds a saved catalog track with the URI derived from id.
func NewTrack(id string, artistIDs ...string) models.SavedTrack {
	t := models.SavedTrack{Track: models.Track{ID: id, URI: "spotify:track:" + id, Name: id}}
	for _, a := range artistIDs {
		t.Artists = append(t.Artists, models.ArtistRef{ID: a, Name: a})
	}
	return t
}

// Save adds tracks to the saved-track library.
func (m *MockLibrary) Save(tracks ...models.SavedTrack) *MockLibrary {
	m.Saved = append(m.Saved, tracks...)
	return m
}

// AddArtist registers an artist with the given genres.
func (m *MockLibrary) AddArtist(id string, genres ...string) *MockLibrary {
	m.Catalog[id] = models.Artist{ID: id, Name: id, Genres: genres}
	return m
}

// AddPlaylist stores a playlist owned by ownerID and returns it.
func (m *MockLibrary) AddPlaylist(ownerID, name string, tracks ...models.Track) *MockPlaylist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addPlaylist(ownerID, name, "", true, tracks)
}

func (m *MockLibrary) addPlaylist(ownerID, name, description string, public bool, tracks []models.Track) *MockPlaylist {
	m.nextID++
	pl := &MockPlaylist{
		Playlist: models.Playlist{
			ID:          fmt.Sprintf("pl-%d", m.nextID),
			Name:        name,
			OwnerID:     ownerID,
			Description: description,
			Public:      public,
		},
		Tracks: append([]models.Track(nil), tracks...),
	}
	m.playlists = append(m.playlists, pl)
	return pl
}

// Playlist returns the stored playlist with the given name, or nil.
func (m *MockLibrary) Playlist(name string) *MockPlaylist {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pl := range m.playlists {
		if pl.Name == name {
			return pl
		}
	}
	return nil
}

// Fail makes op fail with err. With a non-empty arg only calls for that playlist ID or name fail.
func (m *MockLibrary) Fail(op, arg string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op+":"+arg] = err
}

// Calls returns the recorded calls for op, or all calls when op is empty.
func (m *MockLibrary) Calls(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, c := range m.calls {
		if op == "" || c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// record logs the call and returns the injected error for it, if any. Callers hold mu.
func (m *MockLibrary) record(op, arg string, count int) error {
	m.calls = append(m.calls, Call{Op: op, Arg: arg, Count: count})
	if err, ok := m.errs[op+":"+arg]; ok {
		return err
	}
	return m.errs[op+":"]
}

func (m *MockLibrary) find(id string) *MockPlaylist {
	for _, pl := range m.playlists {
		if pl.ID == id {
			return pl
		}
	}
	return nil
}

func page[T any](items []T, cursor string, size int) (services.Page[T], error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return services.Page[T]{}, fmt.Errorf("%w: bad cursor %q", shared.ErrInvalidArgument, cursor)
		}
		offset = n
	}
	if size <= 0 {
		size = len(items) + 1
	}

	end := min(offset+size, len(items))
	p := services.Page[T]{Items: append([]T(nil), items[min(offset, end):end]...)}
	if end < len(items) {
		p.Next = strconv.Itoa(end)
	}
	return p, nil
}

func (m *MockLibrary) SavedTracksPage(ctx context.Context, cursor string) (services.Page[models.SavedTrack], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SavedTracksPage", cursor, 0); err != nil {
		return services.Page[models.SavedTrack]{}, err
	}
	return page(m.Saved, cursor, m.PageSize)
}

func (m *MockLibrary) OwnedPlaylistsPage(ctx context.Context, cursor string) (services.Page[models.Playlist], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("OwnedPlaylistsPage", cursor, 0); err != nil {
		return services.Page[models.Playlist]{}, err
	}

	var owned []models.Playlist
	for _, pl := range m.playlists {
		if pl.OwnerID == m.UserID {
			p := pl.Playlist
			p.TrackCount = len(pl.Tracks)
			owned = append(owned, p)
		}
	}
	return page(owned, cursor, m.PageSize)
}

func (m *MockLibrary) PlaylistTracksPage(ctx context.Context, playlistID, cursor string) (services.Page[models.Track], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("PlaylistTracksPage", playlistID, 0); err != nil {
		return services.Page[models.Track]{}, err
	}

	pl := m.find(playlistID)
	if pl == nil {
		return services.Page[models.Track]{}, fmt.Errorf("%w: playlist %s not found", shared.ErrUpstream, playlistID)
	}
	return page(pl.Tracks, cursor, m.PageSize)
}

func (m *MockLibrary) Artists(ctx context.Context, ids []string) ([]models.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Artists", "", len(ids)); err != nil {
		return nil, err
	}
	if len(ids) == 0 || len(ids) > services.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d artist IDs", shared.ErrBatchTooLarge, len(ids))
	}

	var found []models.Artist
	for _, id := range ids {
		if a, ok := m.Catalog[id]; ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (m *MockLibrary) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreatePlaylist", name, 0); err != nil {
		return nil, err
	}

	pl := m.addPlaylist(ownerID, name, description, public, nil)
	created := pl.Playlist
	return &created, nil
}

func (m *MockLibrary) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddPlaylistItems", playlistID, len(uris)); err != nil {
		return err
	}
	if len(uris) == 0 || len(uris) > services.MaxBatchSize {
		return fmt.Errorf("%w: %d track URIs", shared.ErrBatchTooLarge, len(uris))
	}

	pl := m.find(playlistID)
	if pl == nil {
		return fmt.Errorf("%w: playlist %s not found", shared.ErrUpstream, playlistID)
	}
	for _, uri := range uris {
		pl.Tracks = append(pl.Tracks, m.trackFor(uri))
	}
	return nil
}

func (m *MockLibrary) trackFor(uri string) models.Track {
	for _, t := range m.Saved {
		if t.URI == uri {
			return t.Track
		}
	}
	return models.Track{ID: strings.TrimPrefix(uri, "spotify:track:"), URI: uri}
}

// RemovePlaylistItems removes the addressed positions. Every item must match the URI at its position.
func (m *MockLibrary) RemovePlaylistItems(ctx context.Context, playlistID string, items []models.PlaylistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemovePlaylistItems", playlistID, len(items)); err != nil {
		return err
	}

	pl := m.find(playlistID)
	if pl == nil {
		return fmt.Errorf("%w: playlist %s not found", shared.ErrUpstream, playlistID)
	}

	drop := map[int]struct{}{}
	for _, item := range items {
		if item.Position < 0 || item.Position >= len(pl.Tracks) || pl.Tracks[item.Position].URI != item.URI {
			return fmt.Errorf("%w: %s not at position %d", shared.ErrUpstream, item.URI, item.Position)
		}
		drop[item.Position] = struct{}{}
	}

	kept := pl.Tracks[:0:0]
	for i, t := range pl.Tracks {
		if _, ok := drop[i]; !ok {
			kept = append(kept, t)
		}
	}
	pl.Tracks = kept
	return nil
}

func (m *MockLibrary) CurrentUserID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CurrentUserID", "", 0); err != nil {
		return "", err
	}
	return m.UserID, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// AssertFileExists fails the test when path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
