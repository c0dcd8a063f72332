package session

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/format"
)

// fieldKind distinguishes the two control shapes of the settings grid.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldCheckbox
)

// field is one editable session setting. Text fields keep a display
// value (what the operator typed) separate from the wire value produced
// by parse; checkboxes carry the value directly.
type field struct {
	name  string // wire name in the settings PUT
	label string
	kind  fieldKind

	input   textinput.Model
	parse   func(string) (interface{}, error)
	invalid bool

	checked bool

	// hidden is set when the server build does not support the field.
	hidden func(*api.SessionSnapshot) bool
}

func (m *Model) initFields() {
	text := func(name, label string, parse func(string) (interface{}, error)) field {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		return field{name: name, label: label, kind: fieldText, input: in, parse: parse}
	}
	check := func(name, label string) field {
		return field{name: name, label: label, kind: fieldCheckbox}
	}

	asString := func(s string) (interface{}, error) { return s, nil }
	asInt := func(s string) (interface{}, error) { return strconv.Atoi(s) }
	asSize := func(s string) (interface{}, error) { return format.ParseFileSize(s) }

	m.fields = []field{
		text("title", "Title", asString),
		text("resetThreshold", "Autoreset threshold", asSize),
		text("maxUserCount", "Max users", asInt),
		check("closed", "Closed to new users"),
		check("authOnly", "Registered users only"),
		check("persistent", "Persists without users"),
		check("nsfm", "Not suitable for minors (NSFM)"),
		check("idleOverride", "Ignores idle timeout"),
		check("allowWeb", "Allow joining via web browser"),
		check("invites", "Operators manage invite codes"),
	}
	m.fields[8].hidden = func(s *api.SessionSnapshot) bool { return s.AllowWeb == nil }
	m.fields[9].hidden = func(s *api.SessionSnapshot) bool { return s.Invites == nil }
}

// visibleFields returns indexes into m.fields for every field the
// current server build supports.
func (m Model) visibleFields() []int {
	if m.snapshot == nil {
		return nil
	}
	out := make([]int, 0, len(m.fields))
	for i := range m.fields {
		if m.fields[i].hidden != nil && m.fields[i].hidden(m.snapshot) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// syncFields refreshes every control from the snapshot, skipping fields
// with a pending edit: those keep the operator's optimistic value until
// the write that carries it comes back.
func (m *Model) syncFields() {
	s := m.snapshot
	for i := range m.fields {
		f := &m.fields[i]
		if _, pending := m.pending[f.name]; pending {
			continue
		}
		if f.kind == fieldText && f.input.Focused() {
			// Don't yank the text out from under an active edit.
			continue
		}
		switch f.name {
		case "title":
			f.input.SetValue(s.Title)
		case "resetThreshold":
			f.input.SetValue(format.FileSize(s.ResetThreshold))
		case "maxUserCount":
			f.input.SetValue(strconv.Itoa(s.MaxUserCount))
		case "closed":
			f.checked = s.Closed
		case "authOnly":
			f.checked = s.AuthOnly
		case "persistent":
			f.checked = s.Persistent
		case "nsfm":
			f.checked = s.Nsfm
		case "idleOverride":
			f.checked = s.IdleOverride
		case "allowWeb":
			if s.AllowWeb != nil {
				f.checked = *s.AllowWeb
			}
		case "invites":
			if s.Invites != nil {
				f.checked = *s.Invites
			}
		}
		f.invalid = false
	}
}

// setField records an optimistic local edit and restarts the shared
// debounce timer. The control already shows the new value; the snapshot
// stays untouched until the server confirms.
func (m Model) setField(name string, value interface{}) (Model, tea.Cmd) {
	m.pending[name] = value
	m.debounceGen++
	epoch, gen := m.epoch, m.debounceGen
	return m, tea.Tick(m.refresh.SettingsDebounce, func(time.Time) tea.Msg {
		return debounceMsg{epoch: epoch, gen: gen}
	})
}

// flushPending sends the whole accumulated edit set as one write and
// clears it. Edits arriving while the write is in flight start a new
// pending set and a new debounce window.
func (m Model) flushPending() (Model, tea.Cmd) {
	if len(m.pending) == 0 {
		return m, nil
	}
	fields := m.pending
	m.pending = make(map[string]interface{})
	client, id, epoch := m.api, m.id, m.epoch
	return m, func() tea.Msg {
		s, err := client.ChangeSession(context.Background(), id, fields)
		return writeResultMsg{epoch: epoch, snapshot: s, err: err}
	}
}

// editField routes a key into the focused text field and records the
// resulting value change, if any.
func (m Model) editField(idx int, msg tea.KeyMsg) (Model, tea.Cmd) {
	f := &m.fields[idx]
	before := f.input.Value()
	var inputCmd tea.Cmd
	f.input, inputCmd = f.input.Update(msg)
	after := f.input.Value()
	if after == before {
		return m, inputCmd
	}

	wire, err := f.parse(after)
	if err != nil {
		// Hold the edit back until it parses; the field renders as
		// invalid in the meantime.
		f.invalid = true
		return m, inputCmd
	}
	f.invalid = false
	var cmd tea.Cmd
	m, cmd = m.setField(f.name, wire)
	return m, tea.Batch(inputCmd, cmd)
}

// toggleField flips a checkbox and records the edit.
func (m Model) toggleField(idx int) (Model, tea.Cmd) {
	f := &m.fields[idx]
	f.checked = !f.checked
	return m.setField(f.name, f.checked)
}

// pendingField reports whether the named setting has an unconfirmed edit.
func (m Model) pendingField(name string) bool {
	_, ok := m.pending[name]
	return ok
}
