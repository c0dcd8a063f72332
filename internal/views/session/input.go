package session

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/views/modal"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showLog {
		switch msg.String() {
		case "esc", "l":
			m.showLog = false
		case "j", "down":
			m.log.ScrollDown(1)
		case "k", "up":
			m.log.ScrollUp(1)
		}
		return m, nil
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return ClosedMsg{} }

	case "tab":
		m.section = (m.section + 1) % sectionCount
		m.row = 0
		return m, nil

	case "shift+tab":
		m.section = (m.section - 1 + sectionCount) % sectionCount
		m.row = 0
		return m, nil

	case "j", "down":
		if n := m.rowCount(m.section); n > 0 {
			m.row = (m.row + 1) % n
		}
		return m, nil

	case "k", "up":
		if n := m.rowCount(m.section); n > 0 {
			m.row = (m.row - 1 + n) % n
		}
		return m, nil

	case "r":
		return m.startPoll()

	case "l":
		m.showLog = true
		return m, nil

	case "T":
		return m.openModal(modal.KindTerminate, 0, "")

	case "p":
		return m.openModal(modal.KindSetPassword, 0, "")

	case "w":
		return m.openModal(modal.KindSetOpword, 0, "")

	case "M":
		return m.openModal(modal.KindMessage, 0, "")
	}

	switch m.section {
	case sectionSettings:
		return m.handleSettingsKey(msg)
	case sectionUsers:
		return m.handleUsersKey(msg)
	case sectionListings:
		return m.handleListingsKey(msg)
	case sectionInvites:
		return m.handleInvitesKey(msg)
	case sectionChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	visible := m.visibleFields()
	if m.row >= len(visible) {
		return m, nil
	}
	idx := visible[m.row]

	switch msg.String() {
	case "enter":
		if m.locked {
			return m, nil
		}
		if m.fields[idx].kind == fieldCheckbox {
			return m.toggleField(idx)
		}
		m.editing = true
		m.fields[idx].input.Focus()
		return m, nil

	case " ":
		if m.locked || m.fields[idx].kind != fieldCheckbox {
			return m, nil
		}
		return m.toggleField(idx)
	}
	return m, nil
}

func (m Model) handleUsersKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.snapshot == nil || m.row >= len(m.snapshot.Users) {
		return m, nil
	}
	u := m.snapshot.Users[m.row]
	if !u.Online {
		return m, nil
	}

	switch msg.String() {
	case "o":
		if u.Mod {
			return m, nil
		}
		return m.changeUser(u.ID, map[string]interface{}{"op": !u.Op})
	case "t":
		if u.Mod {
			return m, nil
		}
		return m.changeUser(u.ID, map[string]interface{}{"trusted": !u.Trusted})
	case "m":
		return m.openModal(modal.KindMessage, u.ID, u.Name)
	case "x":
		return m.openModal(modal.KindKick, u.ID, u.Name)
	}
	return m, nil
}

func (m Model) handleListingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() != "x" || m.snapshot == nil || m.row >= len(m.snapshot.Listings) {
		return m, nil
	}
	return m.unlist(m.snapshot.Listings[m.row].ID)
}

func (m Model) handleInvitesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m.openModal(modal.KindInviteCreate, 0, "")
	case "x":
		if m.snapshot == nil || m.row >= len(m.snapshot.InviteList) {
			return m, nil
		}
		return m.revoke(m.snapshot.InviteList[m.row].Secret)
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.chatConnected() && !m.locked {
			m.editing = true
			m.chat.compose.Focus()
		}
		return m, nil
	case "c":
		if !m.chatConnected() {
			return m.openModal(modal.KindChatConnect, 0, "")
		}
	case "d":
		if m.chatConnected() {
			return m.openModal(modal.KindChatDisconnect, 0, "")
		}
	}
	return m, nil
}

// handleEditKey routes keys while a text control has focus: a settings
// field in the settings section, or the chat compose box.
func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.blurInputs()
		return m, nil

	case "enter":
		if m.section == sectionChat {
			// Enter sends; the compose box stays focused for the next
			// message.
			return m.sendChatMessage()
		}
		m.editing = false
		m.blurInputs()
		return m, nil
	}

	if m.section == sectionChat {
		var cmd tea.Cmd
		m.chat.compose, cmd = m.chat.compose.Update(msg)
		return m, cmd
	}

	visible := m.visibleFields()
	if m.row < len(visible) {
		return m.editField(visible[m.row], msg)
	}
	return m, nil
}

func (m *Model) blurInputs() {
	for i := range m.fields {
		m.fields[i].input.Blur()
	}
	m.chat.compose.Blur()
}
