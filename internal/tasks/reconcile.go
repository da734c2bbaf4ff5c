package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/services"
)

// DefaultDescription is used for created playlists when none is configured.
const DefaultDescription = "Generated playlist"

// Action is what reconciliation did, or would do, with one genre group.
type Action string

const (
	ActionCreated   Action = "created"
	ActionExtended  Action = "extended"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// GroupOutcome is the result of reconciling one genre group.
type GroupOutcome struct {
	Genre      string `json:"genre"`
	PlaylistID string `json:"playlist_id,omitempty"`
	Action     Action `json:"action"`
	Added      int    `json:"added"` // tracks appended, or that would be appended in a dry run
	Err        error  `json:"-"`
}

// ReconcileResult summarizes a reconciliation run.
type ReconcileResult struct {
	Outcomes    []GroupOutcome `json:"outcomes"`
	Created     int            `json:"created"`
	Extended    int            `json:"extended"`
	Unchanged   int            `json:"unchanged"`
	Failed      int            `json:"failed"`
	TracksAdded int            `json:"tracks_added"`
	DryRun      bool           `json:"dry_run"`
	Log         RunLog         `json:"log"`
}

func (r *ReconcileResult) record(o GroupOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.TracksAdded += o.Added
	switch o.Action {
	case ActionCreated:
		r.Created++
	case ActionExtended:
		r.Extended++
	case ActionUnchanged:
		r.Unchanged++
	case ActionFailed:
		r.Failed++
	}
}

// ReconcileOptions controls which groups are reconciled and how new playlists are created.
type ReconcileOptions struct {
	MinTrackCount int    // groups with this many tracks or fewer are skipped
	Description   string // defaults to [DefaultDescription]
	Public        bool
	DryRun        bool // compute the plan without creating or modifying playlists
}

// Reconciler makes playlist membership match genre groups.
type Reconciler struct {
	library services.Library
	logger  *log.Logger
}

// NewReconciler creates a Reconciler. A nil logger discards diagnostics.
func NewReconciler(library services.Library, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler{library: library, logger: logger}
}

// Reconcile creates or extends one playlist per genre group larger than MinTrackCount, in ascending genre order.
//
// The playlist for a genre is the first of existing whose name equals the genre. Tracks already in it,
// by ID or URI, are not added again. A failure for one group is recorded in its outcome and the log,
// and the remaining groups are still processed. Only cancellation of ctx stops the run early.
func (r *Reconciler) Reconcile(ctx context.Context, groups models.GenreGroups, existing []models.Playlist, ownerID string, opts ReconcileOptions) (*ReconcileResult, error) {
	if opts.Description == "" {
		opts.Description = DefaultDescription
	}

	byName := make(map[string]models.Playlist, len(existing))
	for _, pl := range existing {
		if _, ok := byName[pl.Name]; !ok {
			byName[pl.Name] = pl
		}
	}

	result := &ReconcileResult{DryRun: opts.DryRun}
	for _, genre := range groups.Genres() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tracks := groups[genre]
		if len(tracks) <= opts.MinTrackCount {
			continue
		}

		var outcome GroupOutcome
		var err error
		if pl, ok := byName[genre]; ok {
			outcome, err = r.extend(ctx, &result.Log, genre, pl, tracks, opts.DryRun)
		} else {
			outcome, err = r.create(ctx, &result.Log, genre, ownerID, tracks, opts)
		}

		if err != nil {
			outcome.Action = ActionFailed
			outcome.Err = err
			result.Log.Printf("Skipping interrupted %s playlist: %v", genre, err)
			r.logger.Warn("genre playlist failed", "genre", genre, "err", err)
		}
		result.record(outcome)
	}
	return result, nil
}

func (r *Reconciler) extend(ctx context.Context, runLog *RunLog, genre string, pl models.Playlist, tracks []models.SavedTrack, dryRun bool) (GroupOutcome, error) {
	outcome := GroupOutcome{Genre: genre, PlaylistID: pl.ID}

	current, err := services.Collect(ctx, func(ctx context.Context, cursor string) (services.Page[models.Track], error) {
		return r.library.PlaylistTracksPage(ctx, pl.ID, cursor)
	})
	if err != nil {
		return outcome, err
	}

	uris := missingURIs(tracks, current)
	if len(uris) == 0 {
		outcome.Action = ActionUnchanged
		return outcome, nil
	}

	outcome.Action = ActionExtended
	if dryRun {
		outcome.Added = len(uris)
		runLog.Printf("Would extend %s playlist with %d tracks.", genre, len(uris))
		return outcome, nil
	}

	runLog.Printf("Extending %s playlist.", genre)
	err = r.add(ctx, pl.ID, uris, &outcome.Added)
	return outcome, err
}

func (r *Reconciler) create(ctx context.Context, runLog *RunLog, genre, ownerID string, tracks []models.SavedTrack, opts ReconcileOptions) (GroupOutcome, error) {
	outcome := GroupOutcome{Genre: genre, Action: ActionCreated}
	uris := missingURIs(tracks, nil)

	if opts.DryRun {
		outcome.Added = len(uris)
		runLog.Printf("Would create %s playlist with %d tracks.", genre, len(uris))
		return outcome, nil
	}

	runLog.Printf("Creating %s playlist.", genre)
	pl, err := r.library.CreatePlaylist(ctx, ownerID, genre, opts.Description, opts.Public)
	if err != nil {
		return outcome, err
	}
	outcome.PlaylistID = pl.ID

	err = r.add(ctx, pl.ID, uris, &outcome.Added)
	return outcome, err
}

// add appends uris in batches, counting the tracks of every acknowledged batch.
func (r *Reconciler) add(ctx context.Context, playlistID string, uris []string, added *int) error {
	return services.DispatchEach(ctx, uris, services.MaxBatchSize, func(ctx context.Context, batch []string) error {
		if err := r.library.AddPlaylistItems(ctx, playlistID, batch); err != nil {
			return err
		}
		*added += len(batch)
		r.logger.Debug("added tracks", "playlist", playlistID, "count", len(batch))
		return nil
	})
}

// missingURIs returns the URIs of tracks not already in current, each at most once, in group order.
func missingURIs(tracks []models.SavedTrack, current []models.Track) []string {
	present := make(map[string]struct{}, 2*len(current))
	for _, t := range current {
		if t.ID != "" {
			present[t.ID] = struct{}{}
		}
		if t.URI != "" {
			present[t.URI] = struct{}{}
		}
	}

	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.URI == "" {
			continue
		}
		if _, ok := present[t.URI]; ok {
			continue
		}
		if t.ID != "" {
			if _, ok := present[t.ID]; ok {
				continue
			}
			present[t.ID] = struct{}{}
		}
		present[t.URI] = struct{}{}
		uris = append(uris, t.URI)
	}
	return uris
}
