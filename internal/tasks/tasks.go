package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/services"
	"github.com/desertthunder/stylefy/internal/shared"
)

// Organizer defines the operations exposed to the CLI.
type Organizer interface {
	// FetchSavedTracks returns the user's whole saved-track library.
	FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate) ([]models.SavedTrack, RunLog, error)

	// FetchPlaylists returns the playlists owned by the user.
	FetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, RunLog, error)

	// FetchPlaylistTracks returns every item of a playlist in order.
	FetchPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, RunLog, error)

	// GenreGroups fetches saved tracks and their artists and groups the tracks by genre.
	GenreGroups(ctx context.Context, progress chan<- ProgressUpdate) (models.GenreGroups, RunLog, error)

	// CreateGenrePlaylists creates or extends one playlist per genre group.
	CreateGenrePlaylists(ctx context.Context, progress chan<- ProgressUpdate, opts ReconcileOptions) (*ReconcileResult, error)

	// ReconcileGroups creates or extends one playlist per given group.
	ReconcileGroups(ctx context.Context, groups models.GenreGroups, progress chan<- ProgressUpdate, opts ReconcileOptions) (*ReconcileResult, error)

	// RemoveDuplicateTracks removes repeated tracks from one playlist.
	RemoveDuplicateTracks(ctx context.Context, playlist models.Playlist) (*DedupeResult, error)

	// RemoveAllDuplicateTracks removes repeated tracks from every owned playlist, stopping at the first failure.
	RemoveAllDuplicateTracks(ctx context.Context, progress chan<- ProgressUpdate) (*LibraryDedupeResult, error)

	// RemoveTracks removes every occurrence of the given track URIs from a playlist.
	RemoveTracks(ctx context.Context, playlist models.Playlist, uris []string) (*DedupeResult, error)

	// Log returns everything the engine has logged so far.
	Log() RunLog
}

// GenreEngine implements [Organizer] against a [services.Library].
//
// Each operation returns its own [RunLog]; the engine also keeps the concatenation of every operation's log.
type GenreEngine struct {
	library    services.Library
	logger     *log.Logger
	workers    int
	reconciler *Reconciler
	dedupe     *Deduplicator

	mu  sync.Mutex
	log RunLog
}

// NewGenreEngine creates a GenreEngine. workers bounds the grouping fan-out; non-positive means one goroutine per genre.
func NewGenreEngine(library services.Library, logger *log.Logger, workers int) *GenreEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GenreEngine{
		library:    library,
		logger:     logger,
		workers:    workers,
		reconciler: NewReconciler(library, logger),
		dedupe:     NewDeduplicator(library, logger),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Log returns a copy of the cumulative log. Safe for concurrent use.
func (e *GenreEngine) Log() RunLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewRunLog(e.log.lines...)
}

func (e *GenreEngine) record(l RunLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Append(l)
}

func (e *GenreEngine) ready() error {
	if e.library == nil {
		return fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// FetchSavedTracks returns the user's saved tracks in library order.
func (e *GenreEngine) FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate) ([]models.SavedTrack, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	tracks, err := e.savedTracks(ctx, &runLog, progress)
	return tracks, runLog, err
}

// FetchPlaylists returns the playlists owned by the user.
func (e *GenreEngine) FetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	playlists, err := e.playlists(ctx, &runLog, progress)
	return playlists, runLog, err
}

// FetchPlaylistTracks returns every item of a playlist in order.
func (e *GenreEngine) FetchPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	if err := e.ready(); err != nil {
		return nil, runLog, err
	}

	runLog.Printf("Getting tracks of %s playlist.", playlistID)
	tracks, err := e.playlistTracks(ctx, playlistID)
	return tracks, runLog, err
}

// FetchArtists looks up the distinct artists credited on tracks, 50 per request.
func (e *GenreEngine) FetchArtists(ctx context.Context, tracks []models.SavedTrack, progress chan<- ProgressUpdate) ([]models.Artist, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	artists, err := e.artists(ctx, &runLog, tracks, progress)
	return artists, runLog, err
}

// GroupByGenre groups tracks by the genres of their artists. It makes no remote calls.
func (e *GenreEngine) GroupByGenre(ctx context.Context, tracks []models.SavedTrack, artists []models.Artist) (models.GenreGroups, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	groups, err := e.group(ctx, &runLog, tracks, artists, nil)
	return groups, runLog, err
}

// GenreGroups fetches the saved tracks and their artists, then groups the tracks by genre.
func (e *GenreEngine) GenreGroups(ctx context.Context, progress chan<- ProgressUpdate) (models.GenreGroups, RunLog, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	groups, err := e.genreGroups(ctx, &runLog, progress)
	return groups, runLog, err
}

// CreateGenrePlaylists builds the genre groups and reconciles them against the user's playlists.
//
// Fetch failures abort the operation. Failures while reconciling a single genre are reported in the result instead.
func (e *GenreEngine) CreateGenrePlaylists(ctx context.Context, progress chan<- ProgressUpdate, opts ReconcileOptions) (*ReconcileResult, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	groups, err := e.genreGroups(ctx, &runLog, progress)
	if err != nil {
		return &ReconcileResult{Log: runLog}, err
	}
	return e.reconcile(ctx, &runLog, groups, progress, opts)
}

// ReconcileGroups reconciles already computed groups, such as a subset picked by the user, against the user's playlists.
func (e *GenreEngine) ReconcileGroups(ctx context.Context, groups models.GenreGroups, progress chan<- ProgressUpdate, opts ReconcileOptions) (*ReconcileResult, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	return e.reconcile(ctx, &runLog, groups, progress, opts)
}

func (e *GenreEngine) reconcile(ctx context.Context, runLog *RunLog, groups models.GenreGroups, progress chan<- ProgressUpdate, opts ReconcileOptions) (*ReconcileResult, error) {
	existing, err := e.playlists(ctx, runLog, progress)
	if err != nil {
		return &ReconcileResult{Log: *runLog}, err
	}

	ownerID, err := e.library.CurrentUserID(ctx)
	if err != nil {
		return &ReconcileResult{Log: *runLog}, err
	}

	sendProgress(progress, phaseUpdate(Reconcile, "Reconciling genre playlists..."))
	result, err := e.reconciler.Reconcile(ctx, groups, existing, ownerID, opts)
	runLog.Append(result.Log)
	result.Log = NewRunLog(runLog.lines...)
	if err != nil {
		return result, err
	}

	sendProgress(progress, reconcileUpdate(result))
	e.logger.Info("reconciled genre playlists",
		"created", result.Created, "extended", result.Extended, "failed", result.Failed, "tracks", result.TracksAdded)
	return result, nil
}

// RemoveDuplicateTracks removes all but the first occurrence of each track in playlist.
func (e *GenreEngine) RemoveDuplicateTracks(ctx context.Context, playlist models.Playlist) (*DedupeResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	result, err := e.dedupe.RemoveDuplicates(ctx, playlist)
	e.record(result.Log)
	return result, err
}

// RemoveTracks removes every occurrence of uris from playlist in one request.
func (e *GenreEngine) RemoveTracks(ctx context.Context, playlist models.Playlist, uris []string) (*DedupeResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	result, err := e.dedupe.RemoveTracks(ctx, playlist, uris)
	e.record(result.Log)
	return result, err
}

// RemoveAllDuplicateTracks removes duplicates from every owned playlist in order. The first failure aborts the rest.
func (e *GenreEngine) RemoveAllDuplicateTracks(ctx context.Context, progress chan<- ProgressUpdate) (*LibraryDedupeResult, error) {
	var runLog RunLog
	defer func() { e.record(runLog) }()

	playlists, err := e.playlists(ctx, &runLog, progress)
	if err != nil {
		return &LibraryDedupeResult{Log: runLog}, err
	}

	result, err := e.dedupe.RemoveAll(ctx, playlists, progress)
	runLog.Append(result.Log)
	result.Log = NewRunLog(runLog.lines...)
	return result, err
}

// FindPlaylist resolves an owned playlist by ID, falling back to an exact name match.
func (e *GenreEngine) FindPlaylist(ctx context.Context, idOrName string) (*models.Playlist, error) {
	playlists, err := e.playlists(ctx, &RunLog{}, nil)
	if err != nil {
		return nil, err
	}

	for _, pl := range playlists {
		if pl.ID == idOrName {
			return &pl, nil
		}
	}
	for _, pl := range playlists {
		if pl.Name == idOrName {
			return &pl, nil
		}
	}
	return nil, fmt.Errorf("%w: no owned playlist with ID or name '%s'", shared.ErrPlaylistNotFound, idOrName)
}

func (e *GenreEngine) genreGroups(ctx context.Context, runLog *RunLog, progress chan<- ProgressUpdate) (models.GenreGroups, error) {
	tracks, err := e.savedTracks(ctx, runLog, progress)
	if err != nil {
		return nil, err
	}

	artists, err := e.artists(ctx, runLog, tracks, progress)
	if err != nil {
		return nil, err
	}

	return e.group(ctx, runLog, tracks, artists, progress)
}

func (e *GenreEngine) savedTracks(ctx context.Context, runLog *RunLog, progress chan<- ProgressUpdate) ([]models.SavedTrack, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	runLog.Printf("Getting saved tracks.")
	sendProgress(progress, phaseUpdate(FetchSavedTracks, "Fetching saved tracks..."))

	tracks, err := services.Collect(ctx, e.library.SavedTracksPage)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("fetched saved tracks", "count", len(tracks))
	sendProgress(progress, savedTracksUpdate(len(tracks)))
	return tracks, nil
}

func (e *GenreEngine) playlists(ctx context.Context, runLog *RunLog, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	runLog.Printf("Getting existing playlists.")
	sendProgress(progress, phaseUpdate(FetchPlaylists, "Fetching playlists..."))

	playlists, err := services.Collect(ctx, e.library.OwnedPlaylistsPage)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("fetched playlists", "count", len(playlists))
	return playlists, nil
}

func (e *GenreEngine) playlistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	return services.Collect(ctx, func(ctx context.Context, cursor string) (services.Page[models.Track], error) {
		return e.library.PlaylistTracksPage(ctx, playlistID, cursor)
	})
}

func (e *GenreEngine) artists(ctx context.Context, runLog *RunLog, tracks []models.SavedTrack, progress chan<- ProgressUpdate) ([]models.Artist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	runLog.Printf("Getting artists info.")
	ids := distinctArtistIDs(tracks)
	total := (len(ids) + services.MaxBatchSize - 1) / services.MaxBatchSize

	step := 0
	artists, err := services.Dispatch(ctx, ids, services.MaxBatchSize, func(ctx context.Context, batch []string) ([]models.Artist, error) {
		step++
		sendProgress(progress, artistsUpdate(step, total))
		return e.library.Artists(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("fetched artists", "requested", len(ids), "found", len(artists))
	return artists, nil
}

func (e *GenreEngine) group(ctx context.Context, runLog *RunLog, tracks []models.SavedTrack, artists []models.Artist, progress chan<- ProgressUpdate) (models.GenreGroups, error) {
	runLog.Printf("Putting pieces together.")

	groups, err := GroupByGenre(ctx, tracks, artists, e.workers)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, groupsUpdate(groups))
	return groups, nil
}

// distinctArtistIDs returns the non-empty artist IDs credited on tracks in first-seen order.
func distinctArtistIDs(tracks []models.SavedTrack) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, t := range tracks {
		for _, id := range t.ArtistIDs() {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
