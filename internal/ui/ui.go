package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GenreListView ViewState = iota
	TrackListView
	ConfirmView
	ReconcileView
	ResultView
)

var styles = formatter.Terminal

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	organizer tasks.Organizer
	opts      tasks.ReconcileOptions
	width     int
	height    int
	loading   bool
	groups    models.GenreGroups
	genreList list.Model
	trackList list.Model
	selected  string // genre picked in the list; empty when organizing every eligible genre
	spinner   spinner.Model
	progress  tasks.ProgressUpdate
	updates   chan tasks.ProgressUpdate
	done      chan reconcileCompleteMsg
	result    *tasks.ReconcileResult
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model. opts apply when organizing all genres; a single picked genre ignores the minimum.
func NewModel(ctx context.Context, organizer tasks.Organizer, opts tasks.ReconcileOptions) *Model {
	return &Model{
		ctx:       ctx,
		view:      GenreListView,
		organizer: organizer,
		opts:      opts,
		loading:   true,
		genreList: newList(nil, 0, 0),
		trackList: newList(nil, 0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Result returns the last reconcile result, or nil if nothing was reconciled.
func (m *Model) Result() *tasks.ReconcileResult { return m.result }

// Err returns the last error shown by the TUI.
func (m *Model) Err() error { return m.err }

// Init starts the spinner and fetches the genre groups.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchGroups())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.genreList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GenreListView:
			return m.handleGenreListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ReconcileView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.view != ReconcileView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case groupsFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.groups = msg.groups
		m.genreList = m.newGenreList()
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, waitForProgress(m.updates, m.done)

	case reconcileCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.updates, m.done = nil, nil
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.Err(fmt.Sprintf("Error: %v", m.err)) + "\n\nPress q to quit"
	}
	if m.loading {
		return fmt.Sprintf("%s Grouping your saved tracks by genre...", m.spinner.View())
	}

	switch m.view {
	case GenreListView:
		return m.renderGenreList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ReconcileView:
		return m.renderReconcile()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleGenreListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil || m.loading {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.genreList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.genreList.SelectedItem().(genreItem); ok {
			m.selected = item.genre
			m.trackList = m.newTrackList(item.genre)
			m.view = TrackListView
			return m, nil
		}
	case key.Matches(msg, m.keys.all):
		m.selected = ""
		m.view = ConfirmView
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = GenreListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ReconcileView
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spinner.Tick, m.startReconcile())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		if m.selected == "" {
			m.view = GenreListView
		} else {
			m.view = TrackListView
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = GenreListView
		m.selected = ""
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GenreListView:
		m.genreList, cmd = m.genreList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// newList builds a list whose quit keys are left to the model, so esc can mean back.
func newList(items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func (m *Model) newGenreList() list.Model {
	sizes := formatter.GenreSizes(m.groups, m.opts.MinTrackCount)
	items := make([]list.Item, len(sizes))
	for i, s := range sizes {
		items[i] = genreItem{genre: s.Genre, tracks: s.Tracks, eligible: s.Eligible}
	}

	l := newList(items, m.width-4, m.height-8)
	l.Title = fmt.Sprintf("Genres (%d)", len(items))
	return l
}

func (m *Model) newTrackList(genre string) list.Model {
	tracks := m.groups[genre]
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}

	l := newList(items, m.width-4, m.height-8)
	l.Title = fmt.Sprintf("Tracks in '%s'", genre)
	return l
}

// pending returns the groups the confirm view refers to, and the options to reconcile them with.
func (m *Model) pending() (models.GenreGroups, tasks.ReconcileOptions) {
	opts := m.opts
	if m.selected != "" {
		opts.MinTrackCount = 0
		return models.GenreGroups{m.selected: m.groups[m.selected]}, opts
	}

	groups := models.GenreGroups{}
	for genre, tracks := range m.groups {
		if len(tracks) > opts.MinTrackCount {
			groups[genre] = tracks
		}
	}
	return groups, opts
}

func (m *Model) fetchGroups() tea.Cmd {
	return func() tea.Msg {
		groups, _, err := m.organizer.GenreGroups(m.ctx, nil)
		return groupsFetchedMsg{groups: groups, err: err}
	}
}

func (m *Model) startReconcile() tea.Cmd {
	groups, opts := m.pending()
	updates := make(chan tasks.ProgressUpdate, 50)
	done := make(chan reconcileCompleteMsg, 1)
	m.updates, m.done = updates, done

	go func() {
		result, err := m.organizer.ReconcileGroups(m.ctx, groups, updates, opts)
		close(updates)
		done <- reconcileCompleteMsg{result: result, err: err}
	}()

	return waitForProgress(updates, done)
}

// waitForProgress delivers the next progress update, or the completion once updates is closed.
func waitForProgress(updates <-chan tasks.ProgressUpdate, done <-chan reconcileCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-updates; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderGenreList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.all, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.genreList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTrackList() string {
	organizeKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "organize"))
	helpKeys := []key.Binding{organizeKey, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	groups, opts := m.pending()

	var title string
	if m.selected != "" {
		title = fmt.Sprintf("Create or extend the '%s' playlist?", m.selected)
	} else {
		title = fmt.Sprintf("Create or extend playlists for %d genres?", len(groups))
	}

	tracks := 0
	for _, g := range groups {
		tracks += len(g)
	}
	info := fmt.Sprintf("\nGenres: %d\nTracks: %d\n", len(groups), tracks)
	if opts.DryRun {
		info += styles.Warn("Dry run, no playlists will be changed.") + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", styles.Title(title), info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderReconcile() string {
	title := styles.Title("Organizing playlists")

	phase := "Starting..."
	if m.progress.Message != "" {
		phase = m.progress.Message
		if m.progress.Total > 1 {
			phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
		}
	}

	return fmt.Sprintf("%s\n\n%s %s", title, m.spinner.View(), phase)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.Err(fmt.Sprintf("Organize failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.Err("No result available") + "\n\n" + helpView
	}

	title := styles.OK("✓ Done")
	body := strings.TrimRight(string(formatter.ReconcileToText(m.result, styles)), "\n")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, helpView)
}
