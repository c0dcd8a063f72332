package sessionlist

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/config"
	"github.com/drawpile/dpwebadmin/internal/views/modal"
)

func testList() *api.SessionList {
	return &api.SessionList{
		Sessions: []api.SessionHead{
			{ID: "s2", Title: "Later", StartTime: "2026-08-02 10:00:00", UserCount: 3, MaxUserCount: 25},
			{ID: "s1", Title: "Earlier", StartTime: "2026-08-01 10:00:00", HasPassword: true},
		},
	}
}

func startedModel(t *testing.T, list *api.SessionList) Model {
	t.Helper()
	m := New(api.NewClient("http://127.0.0.1:0", "admin", "pw"), config.Default().Refresh)
	m, _ = m.Init()
	m, _ = m.Update(listMsg{epoch: m.epoch, gen: m.pollGen, list: list})
	return m
}

func TestListSortsByStartTime(t *testing.T) {
	m := startedModel(t, testList())
	if m.sessions[0].ID != "s1" || m.sessions[1].ID != "s2" {
		t.Error("sessions should be ordered oldest first")
	}
}

func TestPollNeverOverlaps(t *testing.T) {
	m := New(api.NewClient("http://127.0.0.1:0", "admin", "pw"), config.Default().Refresh)
	m, _ = m.Init()
	gen := m.pollGen

	m, cmd := m.Update(pollTickMsg{epoch: m.epoch, gen: gen})
	if cmd != nil || m.pollGen != gen {
		t.Error("tick during in-flight poll must be a no-op")
	}

	m, _ = m.Update(listMsg{epoch: m.epoch, gen: gen, list: testList()})
	m, cmd = m.Update(pollTickMsg{epoch: m.epoch, gen: m.pollGen})
	if cmd == nil || !m.pollInFlight {
		t.Error("tick after completion should start the next poll")
	}
}

func TestFailedPollKeepsList(t *testing.T) {
	m := startedModel(t, testList())
	m, _ = m.Update(pollTickMsg{epoch: m.epoch, gen: m.pollGen})
	m, cmd := m.Update(listMsg{epoch: m.epoch, gen: m.pollGen, err: errors.New("connection refused")})
	if len(m.sessions) != 2 {
		t.Error("a failed poll must keep the previous list")
	}
	if m.banner == "" || cmd == nil {
		t.Error("a failed poll must show a banner and reschedule")
	}
}

func TestEnterOpensSelection(t *testing.T) {
	m := startedModel(t, testList())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should open the selected session")
	}
	msg, ok := cmd().(OpenSessionMsg)
	if !ok || msg.ID != "s2" {
		t.Errorf("expected OpenSessionMsg for s2, got %#v", cmd())
	}
}

func TestSelectionClampedOnShrink(t *testing.T) {
	m := startedModel(t, testList())
	m.row = 1

	m, _ = m.Update(pollTickMsg{epoch: m.epoch, gen: m.pollGen})
	m, _ = m.Update(listMsg{epoch: m.epoch, gen: m.pollGen, list: &api.SessionList{
		Sessions: []api.SessionHead{{ID: "s1", StartTime: "2026-08-01 10:00:00"}},
	}})
	if m.row != 0 {
		t.Errorf("row = %d, want 0 after the list shrank", m.row)
	}
}

func TestLockedFlagApplied(t *testing.T) {
	list := testList()
	list.Locked = true
	m := startedModel(t, list)
	if !m.Locked() {
		t.Error("lock flag not applied")
	}
	if !strings.Contains(m.View(), "locked") {
		t.Error("view should announce the lock")
	}
}

func TestViewRendersTable(t *testing.T) {
	m := startedModel(t, testList())
	view := m.View()
	for _, want := range []string{"Earlier", "Later", "PASS", "3 / 25"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCounts(t *testing.T) {
	m := startedModel(t, testList())
	total, active := m.Counts()
	if total != 2 || active != 1 {
		t.Errorf("Counts() = %d/%d, want 2/1", total, active)
	}
}

func TestMessageAllOpensDialog(t *testing.T) {
	m := startedModel(t, testList())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("M")})
	if m.modal == nil {
		t.Fatal("M should open the message-all dialog")
	}
	if m.modal.Kind() != modal.KindMessageAll {
		t.Errorf("dialog kind = %v, want KindMessageAll", m.modal.Kind())
	}

	// Escape closes it with nothing to dispatch.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != nil {
		t.Error("escape should close the dialog")
	}
}

func TestMessageAllBlockedWhileLocked(t *testing.T) {
	list := testList()
	list.Locked = true
	m := startedModel(t, list)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("M")})
	if m.modal != nil {
		t.Error("the message-all dialog must not open while locked")
	}
}
