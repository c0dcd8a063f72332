// Package session implements the session detail view: a single open
// administrative view of one live session, kept consistent with the
// server by periodic snapshot polling while the operator edits settings,
// exchanges chat messages and runs administrative actions. All timers are
// Bubble Tea ticks tagged with generation counters; bumping a counter
// cancels whatever tick or request is still carrying the old value, and
// discarding the model ends every schedule at once.
package session

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/config"
	"github.com/drawpile/dpwebadmin/internal/views/eventlog"
	"github.com/drawpile/dpwebadmin/internal/views/modal"
)

// section identifies which part of the detail view has input focus.
type section int

const (
	sectionSettings section = iota
	sectionUsers
	sectionListings
	sectionInvites
	sectionChat
	sectionCount
)

// instanceCounter distinguishes view instances, so a tick scheduled by a
// previous visit to the same session can never reach a new model.
var instanceCounter atomic.Int64

// Messages the app layer reacts to.

// ClosedMsg is emitted when the operator leaves the detail view.
type ClosedMsg struct{}

// TerminatedMsg is emitted after a successful terminate action; the
// session is gone and the view must be navigated away from.
type TerminatedMsg struct{ ID string }

// Internal messages. Every timer-driven message carries the epoch of the
// model that scheduled it plus a generation counter; a mismatch on either
// means the schedule was cancelled.
type (
	pollTickMsg struct {
		epoch int64
		gen   int
	}
	snapshotMsg struct {
		epoch    int64
		gen      int
		snapshot *api.SessionSnapshot
		err      error
	}
	debounceMsg struct {
		epoch int64
		gen   int
	}
	writeResultMsg struct {
		epoch    int64
		snapshot *api.SessionSnapshot
		err      error
	}
	chatTickMsg struct {
		epoch int64
		gen   int
	}
	chatResultMsg struct {
		epoch int64
		gen   int
		batch *api.ChatBatch
		err   error
	}
	unlistDoneMsg struct {
		epoch     int64
		listingID int
		err       error
	}
	revokeDoneMsg struct {
		epoch  int64
		secret string
		err    error
	}
	userChangeDoneMsg struct {
		epoch  int64
		userID int
		err    error
	}
)

// Model is the session detail view state.
type Model struct {
	api     *api.Client
	id      string
	refresh config.RefreshConfig
	epoch   int64

	snapshot *api.SessionSnapshot
	locked   bool
	banner   string // dismissed by the next successful poll

	// Settings reconciler state (settings.go).
	fields      []field
	pending     map[string]interface{}
	debounceGen int

	// Poll scheduler state.
	pollGen      int
	pollInFlight bool

	// Chat stream cursor state (chat.go).
	chat chatState

	// Transient in-flight markers. Entries are never cleared; a later
	// poll that drops the item makes them irrelevant.
	unlisted map[int]bool
	revoked  map[string]bool

	modal *modal.Model

	section section
	row     int
	editing bool

	log     eventlog.Model
	showLog bool

	width  int
	height int
}

// New creates a detail view for the given session id.
func New(client *api.Client, id string, refresh config.RefreshConfig) Model {
	m := Model{
		api:      client,
		id:       id,
		refresh:  refresh,
		epoch:    instanceCounter.Add(1),
		pending:  make(map[string]interface{}),
		unlisted: make(map[int]bool),
		revoked:  make(map[string]bool),
		log:      eventlog.New(),
	}
	m.initFields()
	m.initChat()
	return m
}

// ID returns the session id this view is bound to.
func (m Model) ID() string { return m.id }

// Init fetches the first snapshot immediately.
func (m Model) Init() (Model, tea.Cmd) {
	return m.startPoll()
}

// startPoll bumps the poll generation (cancelling any scheduled tick)
// and issues a snapshot fetch. Used for the initial fetch, timer cycles
// and out-of-band refreshes alike, so there is never more than one poll
// in flight.
func (m Model) startPoll() (Model, tea.Cmd) {
	m.pollGen++
	m.pollInFlight = true
	client, id, epoch, gen := m.api, m.id, m.epoch, m.pollGen
	return m, func() tea.Msg {
		s, err := client.Session(context.Background(), id)
		return snapshotMsg{epoch: epoch, gen: gen, snapshot: s, err: err}
	}
}

// schedulePoll arms the next cycle, measured from the completion of the
// previous fetch.
func (m Model) schedulePoll() tea.Cmd {
	epoch, gen := m.epoch, m.pollGen
	return tea.Tick(m.refresh.SessionInterval, func(time.Time) tea.Msg {
		return pollTickMsg{epoch: epoch, gen: gen}
	})
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChat()
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

	case snapshotMsg:
		if msg.epoch != m.epoch || msg.gen != m.pollGen {
			return m, nil
		}
		m.pollInFlight = false
		var cmds []tea.Cmd
		if msg.err != nil {
			// Keep the previous snapshot on screen; a single failed
			// poll is retried on the next cycle.
			m.banner = msg.err.Error()
			m.log.Add("err", "poll: "+msg.err.Error())
		} else {
			m.applySnapshot(msg.snapshot)
			m.log.Add("poll", "snapshot applied")
			if m.snapshot.Chat != nil && !m.chat.timerRunning && !m.chat.awaiting {
				// Auto-reconnect: the server says chat is attached but
				// no refresh cycle is running.
				var cmd tea.Cmd
				m, cmd = m.requestChatMessages()
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, m.schedulePoll())
		return m, tea.Batch(cmds...)

	case debounceMsg:
		if msg.epoch != m.epoch || msg.gen != m.debounceGen {
			return m, nil
		}
		return m.flushPending()

	case writeResultMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if msg.err != nil {
			m.banner = msg.err.Error()
			m.log.Add("err", "write: "+msg.err.Error())
			return m, nil
		}
		m.applySnapshot(msg.snapshot)
		m.log.Add("write", "settings written")
		return m, nil

	case chatTickMsg:
		if msg.epoch != m.epoch || msg.gen != m.chat.gen || m.chat.awaiting {
			return m, nil
		}
		return m.requestChatMessages()

	case chatResultMsg:
		return m.handleChatResult(msg)

	case unlistDoneMsg:
		// Fire and forget: the marker stays set either way and no error
		// is surfaced. The next poll shows the authoritative state.
		if msg.epoch == m.epoch {
			m.log.Add("act", "unlist request finished")
		}
		return m, nil

	case revokeDoneMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		// Success or failure, refresh so the invite list reflects the
		// authoritative state. The marker is not cleared here.
		m.log.Add("act", "revoke request finished")
		return m.startPoll()

	case userChangeDoneMsg:
		if msg.epoch == m.epoch && msg.err != nil {
			m.log.Add("err", "user change: "+msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (Model, tea.Cmd) {
	mm, cmd := m.modal.Update(msg)
	m.modal = &mm
	if !mm.Done() {
		return m, cmd
	}
	outcome := mm.Outcome()
	m.modal = nil
	return m.dispatchOutcome(outcome)
}

// dispatchOutcome applies the special post-close behavior of the action
// kind that just closed successfully. A nil outcome means the dialog was
// cancelled.
func (m Model) dispatchOutcome(out *modal.Outcome) (Model, tea.Cmd) {
	if out == nil {
		return m, nil
	}
	switch out.Kind {
	case modal.KindChatConnect:
		m.log.Add("act", "chat connected")
		return m.connectChat(out.Chat)

	case modal.KindChatDisconnect:
		m.log.Add("act", "chat disconnected")
		return m.disconnectChat(out.Chat)

	case modal.KindTerminate:
		id := m.id
		return m, func() tea.Msg { return TerminatedMsg{ID: id} }

	case modal.KindInviteCreate:
		// The create response does not include the new code; fetch a
		// fresh snapshot for it.
		m.log.Add("act", "invite created")
		return m.startPoll()
	}
	// Everything else is inert: the next scheduled poll surfaces it.
	return m, nil
}

// unlist optimistically marks a listing and fires the delete request
// without observing its outcome.
func (m Model) unlist(listingID int) (Model, tea.Cmd) {
	if m.locked || m.unlisted[listingID] {
		return m, nil
	}
	m.unlisted[listingID] = true
	client, id, epoch := m.api, m.id, m.epoch
	return m, func() tea.Msg {
		err := client.UnlistSession(context.Background(), id, listingID)
		return unlistDoneMsg{epoch: epoch, listingID: listingID, err: err}
	}
}

// revoke marks an invite and fires the revoke request; completion
// triggers a refresh regardless of outcome.
func (m Model) revoke(secret string) (Model, tea.Cmd) {
	if m.locked || m.revoked[secret] {
		return m, nil
	}
	m.revoked[secret] = true
	client, id, epoch := m.api, m.id, m.epoch
	return m, func() tea.Msg {
		err := client.RevokeInvite(context.Background(), id, secret)
		return revokeDoneMsg{epoch: epoch, secret: secret, err: err}
	}
}

// changeUser toggles a per-user attribute. The outcome is not applied
// locally; the next poll carries the authoritative flags.
func (m Model) changeUser(userID int, fields map[string]interface{}) (Model, tea.Cmd) {
	if m.locked {
		return m, nil
	}
	client, id, epoch := m.api, m.id, m.epoch
	return m, func() tea.Msg {
		err := client.ChangeUser(context.Background(), id, userID, fields)
		return userChangeDoneMsg{epoch: epoch, userID: userID, err: err}
	}
}

func (m Model) openModal(kind modal.Kind, userID int, userName string) (Model, tea.Cmd) {
	if m.locked {
		return m, nil
	}
	mm := modal.New(m.api, kind, modal.Context{
		SessionID: m.id,
		UserID:    userID,
		UserName:  userName,
	})
	m.modal = &mm
	return m, nil
}

// applySnapshot replaces the authoritative server state wholesale and
// re-syncs every control that has no pending local edit. Fields the
// operator touched while a request was in flight keep their optimistic
// values; the next debounce flush writes them out.
func (m *Model) applySnapshot(s *api.SessionSnapshot) {
	sortInvites(s.InviteList)
	m.snapshot = s
	m.locked = s.Locked
	m.banner = ""
	m.syncFields()
	m.clampRow()
}

func (m *Model) clampRow() {
	max := m.rowCount(m.section) - 1
	if max < 0 {
		max = 0
	}
	if m.row > max {
		m.row = max
	}
}

func (m Model) rowCount(sec section) int {
	if m.snapshot == nil {
		return 0
	}
	switch sec {
	case sectionSettings:
		return len(m.visibleFields())
	case sectionUsers:
		return len(m.snapshot.Users)
	case sectionListings:
		return len(m.snapshot.Listings)
	case sectionInvites:
		return len(m.snapshot.InviteList)
	}
	return 0
}

// sortInvites orders invites and their uses by creation time, oldest
// first, matching the server's admin web interface.
func sortInvites(invites []api.Invite) {
	sort.Slice(invites, func(i, j int) bool { return invites[i].At < invites[j].At })
	for i := range invites {
		uses := invites[i].Uses
		sort.Slice(uses, func(a, b int) bool { return uses[a].At < uses[b].At })
	}
}
