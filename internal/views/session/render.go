package session

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/format"
	"github.com/drawpile/dpwebadmin/internal/theme"
)

const labelWidth = 24

var (
	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorAccent)

	styleInvalid = lipgloss.NewStyle().
			Foreground(theme.ColorDanger)
)

// View renders the full detail view, or an overlay when one is open.
func (m Model) View() string {
	if m.showLog {
		return m.log.View(m.width, m.height)
	}
	if m.modal != nil {
		return lipgloss.Place(max(m.width, 40), max(m.height, 10),
			lipgloss.Center, lipgloss.Center, m.modal.View())
	}

	if m.snapshot == nil {
		if m.banner != "" {
			return theme.StyleError.Render("Error: " + m.banner)
		}
		return theme.StyleDimmed.Render("Loading session…")
	}

	sections := []string{
		m.renderHeader(),
		m.renderSettings(),
	}
	if m.snapshot.Autoreset != nil {
		sections = append(sections, m.renderStatus())
	}
	sections = append(sections, m.renderUsers(), m.renderListings())
	if m.snapshot.InviteList != nil {
		sections = append(sections, m.renderInvites())
	}
	if m.chatVisible() {
		sections = append(sections, m.renderChat())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	s := m.snapshot
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Session: "+title) + "\n")
	if m.banner != "" {
		b.WriteString(theme.StyleError.Render("⚠ "+m.banner) + "\n")
	}
	if m.locked {
		b.WriteString(theme.StyleLocked.Render("This section is locked.") + "\n")
	}
	writeRow(&b, "ID", s.ID)
	writeRow(&b, "Alias", s.Alias)
	writeRow(&b, "Started by", s.Founder)
	writeRow(&b, "Started at", format.DateTime(s.StartTime))
	sizeRatio := 0.0
	if s.MaxSize > 0 {
		sizeRatio = float64(s.Size) / float64(s.MaxSize)
	}
	sizeStr := lipgloss.NewStyle().Foreground(theme.UsageColor(sizeRatio)).
		Render(fmt.Sprintf("%s / %s", format.FileSize(s.Size), format.FileSize(s.MaxSize)))
	writeRow(&b, "Size", sizeStr)
	writeRow(&b, "Users", fmt.Sprintf("%d / %d", s.UserCount, s.MaxUserCount))
	if s.EffectiveResetThreshold > 0 {
		writeRow(&b, "Effective reset at", format.FileSize(s.EffectiveResetThreshold))
	}
	return b.String()
}

func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(m.sectionHeader(sectionSettings, "Settings") + "\n")
	for vi, idx := range m.visibleFields() {
		f := &m.fields[idx]
		prefix := "  "
		if m.section == sectionSettings && vi == m.row {
			prefix = "> "
		}

		label := f.label
		if m.pendingField(f.name) {
			label = theme.StylePending.Render(label + " *")
		} else {
			label = styleLabel.Render(label)
		}

		var value string
		switch f.kind {
		case fieldText:
			value = f.input.View()
			if f.invalid {
				value = styleInvalid.Render(value)
			}
		case fieldCheckbox:
			if f.checked {
				value = "[x]"
			} else {
				value = "[ ]"
			}
		}
		b.WriteString(prefix + label + " " + value + "\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	a := m.snapshot.Autoreset
	var b strings.Builder
	b.WriteString(styleSection.Render("Status") + "\n")
	writeRow(&b, "Session state", a.SessionState)
	writeRow(&b, "History indexes", fmt.Sprintf("%d to %d", a.HistoryFirstIndex, a.HistoryLastIndex))
	writeRow(&b, "Autoreset request", a.RequestStatus)
	writeRow(&b, "Autoreset delay", fmt.Sprintf("%d ms", a.Delay))
	if a.Timer != nil {
		writeRow(&b, "Autoreset timer", fmt.Sprintf("%d ms", *a.Timer))
	} else {
		writeRow(&b, "Autoreset timer", "not active")
	}
	if st := a.Stream; st != nil {
		writeRow(&b, "Reset stream state", st.State)
		writeRow(&b, "Reset stream user", fmt.Sprintf("%d", st.CtxID))
		writeRow(&b, "Reset stream size", format.FileSize(st.Size))
		writeRow(&b, "Reset stream start", fmt.Sprintf("%d", st.StartIndex))
		writeRow(&b, "Reset stream msgs", fmt.Sprintf("%d", st.MessageCount))
		writeRow(&b, "Reset stream consumer", yesNo(st.HaveConsumer))
	}
	return b.String()
}

func (m Model) renderUsers() string {
	var b strings.Builder
	b.WriteString(m.sectionHeader(sectionUsers, "Users") + "\n")
	if len(m.snapshot.Users) == 0 {
		b.WriteString(theme.StyleDimmed.Render("  No users") + "\n")
		return b.String()
	}
	for i, u := range m.snapshot.Users {
		prefix := "  "
		if m.section == sectionUsers && i == m.row {
			prefix = "> "
		}
		name := lipgloss.NewStyle().Foreground(theme.OnlineColor(u.Online)).
			Render(fmt.Sprintf("%-20s", u.Name))
		status := "offline"
		if u.Online {
			status = "online"
		}
		line := fmt.Sprintf("%s%3d %s %-15s %-8s %s",
			prefix, u.ID, name, u.IP, status, userFlags(u))
		b.WriteString(line + "\n")
	}
	b.WriteString(theme.StyleDimmed.Render("  o:op  t:trust  m:message  x:kick") + "\n")
	return b.String()
}

func userFlags(u api.SessionUser) string {
	var flags []string
	if u.Mod {
		flags = append(flags, "MOD")
	}
	if u.Ghost {
		flags = append(flags, "GHOST")
	}
	if u.Op {
		flags = append(flags, "Op")
	}
	if u.Trusted {
		flags = append(flags, "Trusted")
	}
	if u.Muted {
		flags = append(flags, "Muted")
	}
	if u.HoldLocked {
		flags = append(flags, "Hold")
	}
	if len(u.ResetFlags) > 0 {
		flags = append(flags, "Reset("+strings.Join(u.ResetFlags, " ")+")")
	}
	return strings.Join(flags, " ")
}

func (m Model) renderListings() string {
	var b strings.Builder
	b.WriteString(m.sectionHeader(sectionListings, "Listings") + "\n")
	if len(m.snapshot.Listings) == 0 {
		b.WriteString(theme.StyleDimmed.Render("  No listings") + "\n")
		return b.String()
	}
	for i, l := range m.snapshot.Listings {
		prefix := "  "
		if m.section == sectionListings && i == m.row {
			prefix = "> "
		}
		kind := "Public"
		if l.Private {
			kind = "Private"
		}
		action := theme.StyleDimmed.Render("x:unlist")
		if m.unlisted[l.ID] {
			action = theme.StylePending.Render("Unlisting…")
		}
		b.WriteString(fmt.Sprintf("%s%3d %-30s %-10s %-8s %s\n",
			prefix, l.ID, truncate(l.URL, 30), l.RoomCode, kind, action))
	}
	return b.String()
}

func (m Model) renderInvites() string {
	var b strings.Builder
	b.WriteString(m.sectionHeader(sectionInvites, "Invite Codes") + "\n")
	for i, inv := range m.snapshot.InviteList {
		prefix := "  "
		if m.section == sectionInvites && i == m.row {
			prefix = "> "
		}
		var roles []string
		if inv.Trust {
			roles = append(roles, "Trusted")
		}
		if inv.Op {
			roles = append(roles, "Operator")
		}
		action := theme.StyleDimmed.Render("x:revoke")
		if m.revoked[inv.Secret] {
			action = theme.StylePending.Render("Revoked")
		}
		b.WriteString(fmt.Sprintf("%s%-12s %-16s %s  %d/%d  %-18s %s\n",
			prefix, inv.Secret, inv.Creator, format.DateTime(inv.At),
			len(inv.Uses), inv.MaxUses, strings.Join(roles, " "), action))
		for _, use := range inv.Uses {
			b.WriteString(theme.StyleDimmed.Render(
				fmt.Sprintf("      used %s by %s", format.DateTime(use.At), use.Name)) + "\n")
		}
	}
	b.WriteString(theme.StyleDimmed.Render("  c:create invite") + "\n")
	return b.String()
}

func (m Model) renderChat() string {
	var b strings.Builder
	b.WriteString(m.sectionHeader(sectionChat, "Chat") + "\n")
	if m.chat.errText != "" {
		b.WriteString(theme.StyleError.Render("Error: "+m.chat.errText) + "\n")
	}
	if m.chatConnected() {
		b.WriteString(theme.StyleDimmed.Render("  Connected.  d:disconnect") + "\n")
		b.WriteString(m.chat.viewport.View() + "\n")
		b.WriteString(m.chat.compose.View() + "\n")
		b.WriteString(theme.StyleDimmed.Render("  enter:send") + "\n")
	} else {
		b.WriteString(theme.StyleDimmed.Render("  Not connected.  c:connect") + "\n")
	}
	return b.String()
}

// renderChatLog renders the transcript for the viewport, classifying
// each message by its flag bits.
func (m Model) renderChatLog() string {
	lines := make([]string, 0, len(m.chat.messages))
	for _, msg := range m.chat.messages {
		lines = append(lines, renderChatMessage(msg))
	}
	return strings.Join(lines, "\n")
}

func renderChatMessage(msg api.ChatMessage) string {
	if msg.Sender == nil {
		sender := lipgloss.NewStyle().Foreground(theme.ColorChatAdmin).Render("Admin:")
		return sender + " " + msg.Message
	}

	who := fmt.Sprintf("%d %s", *msg.Sender, msg.Name)
	switch {
	case msg.Flags&api.ChatFlagPin != 0:
		style := lipgloss.NewStyle().Foreground(theme.ColorChatPin)
		if msg.Message == api.UnpinSentinel {
			return style.Render(who + " unpinned the pinned message")
		}
		return style.Render(who+" pinned a message:") + " " + msg.Message

	case msg.Flags&api.ChatFlagAlert != 0:
		return lipgloss.NewStyle().Foreground(theme.ColorChatAlert).
			Render(who+" alerts:") + " " + msg.Message

	case msg.Flags&api.ChatFlagShout != 0:
		return lipgloss.NewStyle().Foreground(theme.ColorChatShout).
			Render(who+" shouts:") + " " + msg.Message

	case msg.Flags&api.ChatFlagAction != 0:
		return lipgloss.NewStyle().Foreground(theme.ColorChatAction).
			Render(who + " " + msg.Message)

	default:
		return lipgloss.NewStyle().Foreground(theme.ColorChatUser).
			Render(who+":") + " " + msg.Message
	}
}

func (m Model) renderFooter() string {
	return theme.StyleDimmed.Render(
		"  tab:section  j/k:move  r:refresh  p:password  w:opword  M:message all  T:terminate  l:log  esc:back")
}

func (m Model) sectionHeader(sec section, title string) string {
	if m.section == sec {
		return styleSection.Render("── " + title + " ──")
	}
	return theme.StyleDimmed.Render("── " + title + " ──")
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
