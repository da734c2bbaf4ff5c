package tasks

import (
	"context"
	"slices"

	"github.com/desertthunder/stylefy/internal/models"
	"golang.org/x/sync/errgroup"
)

type genreResult struct {
	genre  string
	tracks []models.SavedTrack
}

// GroupByGenre maps every distinct genre carried by artists to the saved tracks with at least one artist in that genre.
//
// Genres are computed independently by up to workers goroutines (non-positive means unbounded); each sends its
// result to a single merge loop, so the output only depends on tracks and artists.
// Tracks keep their input order within a group and appear at most once per group.
// Artist references missing from artists contribute no genres.
func GroupByGenre(ctx context.Context, tracks []models.SavedTrack, artists []models.Artist, workers int) (models.GenreGroups, error) {
	index := make(map[string]models.Artist, len(artists))
	for _, a := range artists {
		if _, ok := index[a.ID]; !ok {
			index[a.ID] = a
		}
	}

	genres := distinctGenres(artists)
	results := make(chan genreResult, len(genres))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, genre := range genres {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results <- genreResult{genre: genre, tracks: tracksInGenre(genre, tracks, index)}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}

	groups := make(models.GenreGroups, len(genres))
	for r := range results {
		groups[r.genre] = r.tracks
	}
	return groups, nil
}

// distinctGenres returns the non-empty genre tags across artists, sorted.
func distinctGenres(artists []models.Artist) []string {
	seen := map[string]struct{}{}
	var genres []string
	for _, a := range artists {
		for _, genre := range a.Genres {
			if genre == "" {
				continue
			}
			if _, ok := seen[genre]; ok {
				continue
			}
			seen[genre] = struct{}{}
			genres = append(genres, genre)
		}
	}
	slices.Sort(genres)
	return genres
}

func tracksInGenre(genre string, tracks []models.SavedTrack, index map[string]models.Artist) []models.SavedTrack {
	members := []models.SavedTrack{}
	seen := map[string]struct{}{}
	for _, track := range tracks {
		key := trackKey(track.Track)
		if _, ok := seen[key]; ok {
			continue
		}

		for _, ref := range track.Artists {
			if artist, ok := index[ref.ID]; ok && artist.HasGenre(genre) {
				seen[key] = struct{}{}
				members = append(members, track)
				break
			}
		}
	}
	return members
}

// trackKey is the identity used to detect duplicates: the track ID, or the URI for items without one.
func trackKey(t models.Track) string {
	if t.ID != "" {
		return t.ID
	}
	return t.URI
}
