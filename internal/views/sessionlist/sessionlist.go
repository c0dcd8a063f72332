// Package sessionlist shows every session on the server in a table,
// refreshed by the same completion-scheduled polling the detail view
// uses.
package sessionlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/config"
	"github.com/drawpile/dpwebadmin/internal/format"
	"github.com/drawpile/dpwebadmin/internal/theme"
	"github.com/drawpile/dpwebadmin/internal/views/modal"
)

var instanceCounter atomic.Int64

// OpenSessionMsg asks the app to open the detail view for a session.
type OpenSessionMsg struct{ ID string }

type (
	pollTickMsg struct {
		epoch int64
		gen   int
	}
	listMsg struct {
		epoch int64
		gen   int
		list  *api.SessionList
		err   error
	}
)

// Model is the session list state.
type Model struct {
	api     *api.Client
	refresh config.RefreshConfig
	epoch   int64

	sessions []api.SessionHead
	locked   bool
	loaded   bool
	banner   string

	pollGen      int
	pollInFlight bool

	modal *modal.Model

	row    int
	width  int
	height int
}

// New creates the session list view.
func New(client *api.Client, refresh config.RefreshConfig) Model {
	return Model{
		api:     client,
		refresh: refresh,
		epoch:   instanceCounter.Add(1),
	}
}

// Init fetches the first page immediately.
func (m Model) Init() (Model, tea.Cmd) {
	return m.startPoll()
}

// Locked reports whether the administrative interface is read-only.
func (m Model) Locked() bool { return m.locked }

// Counts returns the total and active session counts for the status bar.
func (m Model) Counts() (total, active int) {
	for _, s := range m.sessions {
		if s.UserCount > 0 {
			active++
		}
	}
	return len(m.sessions), active
}

// Healthy reports whether the last poll succeeded.
func (m Model) Healthy() bool { return m.loaded && m.banner == "" }

// DialogOpen reports whether the message dialog is capturing input.
func (m Model) DialogOpen() bool { return m.modal != nil }

func (m Model) startPoll() (Model, tea.Cmd) {
	m.pollGen++
	m.pollInFlight = true
	client, epoch, gen := m.api, m.epoch, m.pollGen
	return m, func() tea.Msg {
		list, err := client.Sessions(context.Background())
		return listMsg{epoch: epoch, gen: gen, list: list, err: err}
	}
}

func (m Model) schedulePoll() tea.Cmd {
	epoch, gen := m.epoch, m.pollGen
	return tea.Tick(m.refresh.SessionInterval, func(time.Time) tea.Msg {
		return pollTickMsg{epoch: epoch, gen: gen}
	})
}

// Update handles messages for the session list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.modal != nil {
			return m.updateModal(msg)
		}
		return m.handleKey(msg)

	case modal.ResultMsg:
		if m.modal != nil {
			return m.updateModal(msg)
		}
		return m, nil

	case pollTickMsg:
		if msg.epoch != m.epoch || msg.gen != m.pollGen || m.pollInFlight {
			return m, nil
		}
		return m.startPoll()

	case listMsg:
		if msg.epoch != m.epoch || msg.gen != m.pollGen {
			return m, nil
		}
		m.pollInFlight = false
		if msg.err != nil {
			m.banner = msg.err.Error()
		} else {
			m.applyList(msg.list)
		}
		return m, m.schedulePoll()
	}
	return m, nil
}

func (m *Model) applyList(list *api.SessionList) {
	sessions := list.Sessions
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime < sessions[j].StartTime
	})
	m.sessions = sessions
	m.locked = list.Locked
	m.loaded = true
	m.banner = ""
	if m.row >= len(sessions) {
		m.row = len(sessions) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) updateModal(msg tea.Msg) (Model, tea.Cmd) {
	mm, cmd := m.modal.Update(msg)
	m.modal = &mm
	if mm.Done() {
		// Message-all has no local effect; the next poll carries
		// anything observable.
		m.modal = nil
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if n := len(m.sessions); n > 0 {
			m.row = (m.row + 1) % n
		}
	case "k", "up":
		if n := len(m.sessions); n > 0 {
			m.row = (m.row - 1 + n) % n
		}
	case "r":
		return m.startPoll()
	case "M":
		if !m.locked {
			mm := modal.New(m.api, modal.KindMessageAll, modal.Context{})
			m.modal = &mm
		}
	case "enter":
		if m.row < len(m.sessions) {
			id := m.sessions[m.row].ID
			return m, func() tea.Msg { return OpenSessionMsg{ID: id} }
		}
	}
	return m, nil
}

// Column widths (fixed layout).
const (
	colID    = 14
	colTitle = 28
	colUsers = 9
	colSize  = 12
	colFlags = 16
	colStart = 20
)

// View renders the session table, or the message dialog over it.
func (m Model) View() string {
	if m.modal != nil {
		return lipgloss.Place(max(m.width, 40), max(m.height, 10),
			lipgloss.Center, lipgloss.Center, m.modal.View())
	}

	var b strings.Builder

	b.WriteString(theme.StyleHeader.Render("Sessions") + "\n")
	if m.banner != "" {
		b.WriteString(theme.StyleError.Render("⚠ "+m.banner) + "\n")
	}
	if m.locked {
		b.WriteString(theme.StyleLocked.Render("The session list is locked.") + "\n")
	}

	if !m.loaded && m.banner == "" {
		b.WriteString(theme.StyleDimmed.Render("Loading sessions…"))
		return b.String()
	}
	if len(m.sessions) == 0 {
		b.WriteString(theme.StyleDimmed.Render("No active sessions"))
		return b.String()
	}

	header := fmt.Sprintf("  %-*s %-*s %*s %*s  %-*s %-*s",
		colID, "ID", colTitle, "Title", colUsers, "Users",
		colSize, "Size", colFlags, "Flags", colStart, "Started")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDimmed).Render(header) + "\n")

	for i, s := range m.sessions {
		line := m.renderRow(s)
		if i == m.row {
			line = theme.StyleSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + theme.StyleDimmed.Render("  j/k:move  enter:open  M:message all sessions  r:refresh  q:quit"))
	return b.String()
}

func (m Model) renderRow(s api.SessionHead) string {
	id := s.ID
	if s.Alias != "" {
		id = s.Alias
	}
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	if len(title) > colTitle {
		title = title[:colTitle-1] + "…"
	}

	users := fmt.Sprintf("%d / %d", s.UserCount, s.MaxUserCount)

	var flags []string
	if s.HasPassword {
		flags = append(flags, "PASS")
	}
	if s.Closed {
		flags = append(flags, "CLOSED")
	}
	if s.AuthOnly {
		flags = append(flags, "AUTH")
	}
	if s.Persistent {
		flags = append(flags, "PERSIST")
	}
	if s.Nsfm {
		flags = append(flags, "NSFM")
	}

	return fmt.Sprintf("%-*s %-*s %*s %*s  %-*s %-*s",
		colID, truncate(id, colID),
		colTitle, title,
		colUsers, users,
		colSize, format.FileSize(s.Size),
		colFlags, truncate(strings.Join(flags, " "), colFlags),
		colStart, s.StartTime)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
