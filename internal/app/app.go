// Package app holds the root Bubble Tea model: a session list screen
// with a detail view stacked on top of it while one session is open.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/config"
	"github.com/drawpile/dpwebadmin/internal/views/session"
	"github.com/drawpile/dpwebadmin/internal/views/sessionlist"
	"github.com/drawpile/dpwebadmin/internal/views/status"
)

// Model is the root Bubble Tea model.
type Model struct {
	api     *api.Client
	refresh config.RefreshConfig

	keys   KeyMap
	width  int
	height int

	statusBar status.Model
	list      sessionlist.Model

	// detail is non-nil while a session is open. Discarding it ends
	// every schedule the detail view started.
	detail *session.Model
}

// New creates the root model.
func New(client *api.Client, serverURL string, refresh config.RefreshConfig) Model {
	return Model{
		api:       client,
		refresh:   refresh,
		keys:      DefaultKeyMap(),
		statusBar: status.New(serverURL),
		list:      sessionlist.New(client, refresh),
	}
}

// Init starts the session list poll.
func (m Model) Init() tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Init()
	return cmd
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		if m.detail != nil {
			d, cmd := m.detail.Update(msg)
			m.detail = &d
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionlist.OpenSessionMsg:
		d := session.New(m.api, msg.ID, m.refresh)
		d, cmd := d.Init()
		m.detail = &d
		return m, cmd

	case session.ClosedMsg:
		// Back to the list; the interrupted list schedule is replaced
		// by a fresh fetch.
		m.detail = nil
		var cmd tea.Cmd
		m.list, cmd = m.list.Init()
		return m, cmd

	case session.TerminatedMsg:
		m.detail = nil
		var cmd tea.Cmd
		m.list, cmd = m.list.Init()
		return m, cmd
	}

	// Everything else is a screen-internal message. While a detail view
	// is open it owns the screen; list ticks from before the switch die
	// on their generation check after the list restarts.
	return m.route(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		// The detail view takes every key except the emergency exit,
		// so typing into a text field cannot quit the program.
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m.route(msg)
	}

	if m.list.DialogOpen() {
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m.route(msg)
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	return m.route(msg)
}

func (m Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		d, cmd := m.detail.Update(msg)
		m.detail = &d
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the status bar and the active screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	m.statusBar.Healthy = m.list.Healthy()
	m.statusBar.Locked = m.list.Locked()
	m.statusBar.SetCounts(m.list.Counts())

	var screen string
	if m.detail != nil {
		screen = m.detail.View()
	} else {
		screen = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		screen,
	)
}
