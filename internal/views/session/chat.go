package session

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
)

// chatState is the chat stream cursor. The offset counts messages
// already retrieved and only ever grows while connected; the message log
// is append-only and cleared only by a connect/disconnect transition.
type chatState struct {
	connected bool
	messages  []api.ChatMessage
	offset    int
	errText   string

	// gen invalidates scheduled ticks and in-flight requests at once.
	// awaiting guarantees at most one chat request in flight;
	// timerRunning tracks whether a refresh tick is armed.
	gen          int
	awaiting     bool
	timerRunning bool

	compose  textarea.Model
	viewport viewport.Model
}

func (m *Model) initChat() {
	ta := textarea.New()
	ta.SetHeight(3)
	ta.Placeholder = "Write a chat message here…"
	vp := viewport.New(60, 10)
	m.chat = chatState{compose: ta, viewport: vp}
}

func (m *Model) resizeChat() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	m.chat.viewport.Width = w
	m.chat.viewport.Height = 10
	m.chat.compose.SetWidth(w)
}

// chatVisible reports whether the session exposes chat at all: the
// descriptor may be missing on server builds without the relay.
func (m Model) chatVisible() bool {
	return m.snapshot != nil && (m.snapshot.Chat != nil || m.chat.connected)
}

// chatConnected mirrors the web admin: the view counts as connected when
// either the snapshot carries a chat descriptor or a connect action
// succeeded in this view.
func (m Model) chatConnected() bool {
	return (m.snapshot != nil && m.snapshot.Chat != nil) || m.chat.connected
}

// requestChatMessages cancels any armed refresh tick and fetches from
// the current offset. At most one chat request is in flight at a time.
func (m Model) requestChatMessages() (Model, tea.Cmd) {
	m.chat.gen++
	m.chat.awaiting = true
	m.chat.timerRunning = false
	client, id, epoch, gen, offset := m.api, m.id, m.epoch, m.chat.gen, m.chat.offset
	return m, func() tea.Msg {
		b, err := client.ChatMessages(context.Background(), id, offset)
		return chatResultMsg{epoch: epoch, gen: gen, batch: b, err: err}
	}
}

// sendChatMessage sends the compose box content, carrying the current
// offset so the response doubles as a fetch.
func (m Model) sendChatMessage() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.chat.compose.Value())
	if text == "" || m.locked || !m.chatConnected() {
		return m, nil
	}
	m.chat.compose.Reset()
	m.chat.gen++
	m.chat.awaiting = true
	m.chat.timerRunning = false
	client, id, epoch, gen, offset := m.api, m.id, m.epoch, m.chat.gen, m.chat.offset
	return m, func() tea.Msg {
		b, err := client.SendChatMessage(context.Background(), id, text, offset)
		return chatResultMsg{epoch: epoch, gen: gen, batch: b, err: err}
	}
}

// handleChatResult applies a fetch/send response and restarts the
// refresh timer. Errors are display-only: chat polling never stops
// itself on failure.
func (m Model) handleChatResult(msg chatResultMsg) (Model, tea.Cmd) {
	if msg.epoch != m.epoch || msg.gen != m.chat.gen {
		return m, nil
	}
	m.chat.awaiting = false
	if msg.err != nil {
		m.chat.errText = stripErrorPrefix(msg.err.Error())
		m.log.Add("err", "chat: "+m.chat.errText)
	} else {
		m.applyChatBatch(msg.batch)
	}
	cmd := m.scheduleChatTick()
	return m, cmd
}

// applyChatBatch merges a response idempotently: the batch is applied
// only when it moves the offset, so a duplicate response (a retry racing
// a timer-driven fetch) cannot append the same messages twice.
func (m *Model) applyChatBatch(batch *api.ChatBatch) {
	newOffset := batch.Offset + len(batch.Messages)
	if newOffset == m.chat.offset {
		return
	}
	m.chat.messages = append(m.chat.messages, batch.Messages...)
	m.chat.offset = newOffset
	m.chat.viewport.SetContent(m.renderChatLog())
	m.chat.viewport.GotoBottom()
}

func (m *Model) scheduleChatTick() tea.Cmd {
	m.chat.timerRunning = true
	epoch, gen := m.epoch, m.chat.gen
	return tea.Tick(m.refresh.ChatInterval, func(time.Time) tea.Msg {
		return chatTickMsg{epoch: epoch, gen: gen}
	})
}

// connectChat applies a successful connect action: the cursor starts
// over from offset zero with an empty log, then the connect response is
// applied as the first batch and the refresh timer starts.
func (m Model) connectChat(batch *api.ChatBatch) (Model, tea.Cmd) {
	m.chat.gen++
	m.chat.connected = true
	m.chat.awaiting = false
	m.chat.offset = 0
	m.chat.messages = nil
	m.chat.errText = ""
	if batch != nil {
		m.applyChatBatch(batch)
	}
	cmd := m.scheduleChatTick()
	return m, cmd
}

// disconnectChat applies a successful disconnect action: the timer
// stops, display state resets, and the chat descriptor leaves the
// snapshot. The disconnect response still carries the farewell message,
// applied onto the cleared log.
func (m Model) disconnectChat(batch *api.ChatBatch) (Model, tea.Cmd) {
	m.chat.gen++
	m.chat.connected = false
	m.chat.awaiting = false
	m.chat.timerRunning = false
	m.chat.offset = 0
	m.chat.messages = nil
	m.chat.errText = ""
	if m.snapshot != nil {
		m.snapshot.Chat = nil
	}
	if batch != nil {
		m.applyChatBatch(batch)
	}
	return m, nil
}

// stripErrorPrefix removes a leading "Error:" from transport error text
// before display.
func stripErrorPrefix(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "Error:") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "Error:"))
	}
	return trimmed
}
