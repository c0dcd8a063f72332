// Package modal implements the single-flight action dialog of the session
// detail view. Exactly one action kind is open at a time; submitting is
// single-shot per open instance, a failed submit keeps the dialog open
// with an inline error, and a successful one closes it with an Outcome
// the parent view dispatches on.
package modal

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/theme"
)

// Kind identifies which action dialog is open.
type Kind int

const (
	KindTerminate Kind = iota
	KindSetPassword
	KindSetOpword
	KindKick
	KindMessage
	KindMessageAll
	KindInviteCreate
	KindChatConnect
	KindChatDisconnect
)

// Context carries the action target. UserID zero with KindMessage means
// the message goes to everyone in the session.
type Context struct {
	SessionID string
	UserID    int
	UserName  string
}

// ResultMsg is delivered when the submitted request completes.
type ResultMsg struct {
	Kind Kind
	Chat *api.ChatBatch // set for chat connect/disconnect
	Err  error
}

// Outcome is what a successfully submitted modal closed with.
type Outcome struct {
	Kind Kind
	Chat *api.ChatBatch
}

// Invite role choices, in display order.
var roleLabels = []string{"None", "Trusted", "Operator"}

// Model is the modal dialog state.
type Model struct {
	api  *api.Client
	kind Kind
	ctx  Context

	input textinput.Model // password / opword / invite uses
	text  textarea.Model  // message bodies
	role  int             // invite role index into roleLabels

	busy    bool
	errText string

	done    bool
	outcome *Outcome
}

// New opens a dialog of the given kind.
func New(client *api.Client, kind Kind, ctx Context) Model {
	m := Model{api: client, kind: kind, ctx: ctx}
	switch kind {
	case KindSetPassword, KindSetOpword:
		m.input = textinput.New()
		m.input.EchoMode = textinput.EchoPassword
		m.input.Focus()
	case KindInviteCreate:
		m.input = textinput.New()
		m.input.SetValue("1")
		m.input.CharLimit = 3
		m.input.Focus()
	case KindMessage, KindMessageAll, KindChatConnect, KindChatDisconnect:
		m.text = textarea.New()
		m.text.SetHeight(4)
		m.text.Focus()
	}
	return m
}

// Done reports whether the dialog has closed. The parent must then read
// Outcome (nil when the dialog was cancelled) and drop the model.
func (m Model) Done() bool { return m.done }

// Outcome returns the successful submit result, or nil if cancelled.
func (m Model) Outcome() *Outcome { return m.outcome }

// Kind returns the open dialog's action kind.
func (m Model) Kind() Kind { return m.kind }

// Update handles messages while the dialog is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if msg.Kind != m.kind {
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.errText = stripErrorPrefix(msg.Err.Error())
			return m, nil
		}
		m.done = true
		m.outcome = &Outcome{Kind: m.kind, Chat: msg.Chat}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.done = true
		return m, nil
	case "enter":
		if !m.usesTextarea() {
			return m.submit()
		}
	case "ctrl+s":
		return m.submit()
	case "left", "right":
		if m.kind == KindInviteCreate {
			if msg.String() == "left" && m.role > 0 {
				m.role--
			}
			if msg.String() == "right" && m.role < len(roleLabels)-1 {
				m.role++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.usesTextarea() {
		m.text, cmd = m.text.Update(msg)
	} else if m.usesInput() {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) usesTextarea() bool {
	switch m.kind {
	case KindMessage, KindMessageAll, KindChatConnect, KindChatDisconnect:
		return true
	}
	return false
}

func (m Model) usesInput() bool {
	switch m.kind {
	case KindSetPassword, KindSetOpword, KindInviteCreate:
		return true
	}
	return false
}

// submit validates the form and fires the request. The OK control is
// single-shot: further submits are ignored until the result arrives.
func (m Model) submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch m.kind {
	case KindChatConnect:
		if strings.TrimSpace(m.text.Value()) == "" {
			m.errText = "an initial message is required"
			return m, nil
		}
	case KindInviteCreate:
		uses, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil || uses < 1 {
			m.errText = "uses must be a number of at least 1"
			return m, nil
		}
	}

	m.busy = true
	m.errText = ""
	return m, m.submitCmd()
}

func (m Model) submitCmd() tea.Cmd {
	client := m.api
	kind := m.kind
	mctx := m.ctx
	password := strings.TrimSpace(m.input.Value())
	message := m.text.Value()
	uses, _ := strconv.Atoi(strings.TrimSpace(m.input.Value()))
	trusted := m.role == 1
	op := m.role == 2

	return func() tea.Msg {
		ctx := context.Background()
		var chat *api.ChatBatch
		var err error
		switch kind {
		case KindTerminate:
			err = client.TerminateSession(ctx, mctx.SessionID)
		case KindSetPassword:
			_, err = client.ChangeSession(ctx, mctx.SessionID, map[string]interface{}{"password": password})
		case KindSetOpword:
			_, err = client.ChangeSession(ctx, mctx.SessionID, map[string]interface{}{"opword": password})
		case KindKick:
			err = client.KickUser(ctx, mctx.SessionID, mctx.UserID)
		case KindMessage:
			if mctx.UserID != 0 {
				err = client.ChangeUser(ctx, mctx.SessionID, mctx.UserID, map[string]interface{}{"alert": message})
			} else {
				_, err = client.ChangeSession(ctx, mctx.SessionID, map[string]interface{}{"alert": message})
			}
		case KindMessageAll:
			err = client.ChangeAllSessions(ctx, map[string]interface{}{"alert": message})
		case KindInviteCreate:
			err = client.CreateInvite(ctx, mctx.SessionID, uses, trusted, op)
		case KindChatConnect:
			chat, err = client.ConnectChat(ctx, mctx.SessionID, message)
		case KindChatDisconnect:
			chat, err = client.DisconnectChat(ctx, mctx.SessionID, message)
		}
		return ResultMsg{Kind: kind, Chat: chat, Err: err}
	}
}

// View renders the dialog panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render(m.title()) + "\n\n")

	if m.errText != "" {
		b.WriteString(theme.StyleError.Render("Error: "+m.errText) + "\n\n")
	}

	switch m.kind {
	case KindTerminate:
		b.WriteString("Really terminate session?\n")
	case KindKick:
		b.WriteString("Really kick " + m.ctx.UserName + "?\n")
	case KindSetPassword, KindSetOpword:
		b.WriteString(m.input.View() + "\n")
	case KindInviteCreate:
		b.WriteString("Uses: " + m.input.View() + "\n")
		b.WriteString("Role: " + m.renderRoles() + "\n")
	case KindMessage, KindMessageAll, KindChatConnect, KindChatDisconnect:
		b.WriteString(m.text.View() + "\n")
	}

	b.WriteString("\n")
	if m.busy {
		b.WriteString(theme.StyleDimmed.Render("working…"))
	} else {
		b.WriteString(theme.StyleDimmed.Render(m.footer()))
	}

	return theme.StyleBorder.Padding(1, 2).Render(b.String())
}

func (m Model) title() string {
	switch m.kind {
	case KindTerminate:
		return "Terminate session"
	case KindSetPassword:
		return "Set session password"
	case KindSetOpword:
		return "Set session opword"
	case KindKick:
		return "Kick user"
	case KindMessage:
		if m.ctx.UserID != 0 {
			return "Message " + m.ctx.UserName
		}
		return "Message everyone"
	case KindMessageAll:
		return "Message all sessions"
	case KindInviteCreate:
		return "Create invite code"
	case KindChatConnect:
		return "Connect chat"
	case KindChatDisconnect:
		return "Disconnect chat"
	}
	return ""
}

func (m Model) footer() string {
	if m.usesTextarea() {
		return "[ctrl+s] ok  [esc] cancel"
	}
	if m.kind == KindInviteCreate {
		return "[←/→] role  [enter] ok  [esc] cancel"
	}
	return "[enter] ok  [esc] cancel"
}

func (m Model) renderRoles() string {
	parts := make([]string, len(roleLabels))
	for i, label := range roleLabels {
		if i == m.role {
			parts[i] = theme.StyleSelected.Render("(•) " + label)
		} else {
			parts[i] = theme.StyleDimmed.Render("( ) " + label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], "  ", parts[1], "  ", parts[2])
}

// stripErrorPrefix removes a leading "Error:" from server-supplied text
// so the dialog doesn't render "Error: Error: ...".
func stripErrorPrefix(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "Error:") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "Error:"))
	}
	return trimmed
}
