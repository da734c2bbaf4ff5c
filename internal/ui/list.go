package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/stylefy/internal/models"
)

var (
	_ list.Item = genreItem{}
	_ list.Item = trackItem{}
)

// genreItem wraps one genre group to implement [list.Item].
type genreItem struct {
	genre    string
	tracks   int
	eligible bool
}

func (i genreItem) FilterValue() string { return i.genre }
func (i genreItem) Title() string       { return i.genre }
func (i genreItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.tracks)
	if !i.eligible {
		desc += " • below minimum"
	}
	return desc
}

// trackItem wraps [models.SavedTrack] to implement [list.Item].
type trackItem struct {
	track models.SavedTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	names := make([]string, 0, len(i.track.Artists))
	for _, a := range i.track.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
