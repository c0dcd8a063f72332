package session

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/config"
)

func TestDebounceCoalescesEdits(t *testing.T) {
	m := startedModel(t, testSnapshot())

	// Each edit restarts the shared timer; only the last generation
	// survives.
	m, _ = m.setField("title", "Renamed")
	firstGen := m.debounceGen
	m, _ = m.setField("maxUserCount", 30)
	m, _ = m.setField("title", "Renamed Again")

	if len(m.pending) != 2 {
		t.Fatalf("pending set has %d entries, want 2", len(m.pending))
	}
	if m.pending["title"] != "Renamed Again" {
		t.Error("a re-edit must replace the earlier pending value")
	}

	// The cancelled timer firing must not flush anything.
	m, cmd := m.Update(debounceMsg{epoch: m.epoch, gen: firstGen})
	if cmd != nil || len(m.pending) != 2 {
		t.Error("a stale debounce tick must not flush")
	}

	// The live timer flushes everything in one request.
	m, cmd = m.Update(debounceMsg{epoch: m.epoch, gen: m.debounceGen})
	if cmd == nil {
		t.Fatal("the live debounce tick must flush")
	}
	if len(m.pending) != 0 {
		t.Error("the pending set must be cleared when the write starts")
	}
}

func TestDebouncedFlushSendsOneWrite(t *testing.T) {
	var (
		mu     sync.Mutex
		puts   int
		fields map[string]interface{}
	)
	snap := testSnapshot()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			puts++
			body, _ := io.ReadAll(r.Body)
			fields = nil
			json.Unmarshal(body, &fields)
			mu.Unlock()
		}
		json.NewEncoder(w).Encode(snap)
	}))
	defer srv.Close()

	m := New(api.NewClient(srv.URL, "admin", "pw"), "s1", config.Default().Refresh)
	m, _ = m.Init()
	m, _ = m.Update(snapshotMsg{epoch: m.epoch, gen: m.pollGen, snapshot: snap})

	m, _ = m.setField("title", "Renamed")
	m, _ = m.setField("maxUserCount", 30)
	m, cmd := m.Update(debounceMsg{epoch: m.epoch, gen: m.debounceGen})
	if cmd == nil {
		t.Fatal("flush command missing")
	}
	m.Update(cmd())

	mu.Lock()
	defer mu.Unlock()
	if puts != 1 {
		t.Fatalf("server saw %d writes, want 1", puts)
	}
	if fields["title"] != "Renamed" || fields["maxUserCount"] != float64(30) {
		t.Errorf("write body %v missing coalesced edits", fields)
	}
}

func TestEmptyFlushIsNoop(t *testing.T) {
	m := startedModel(t, testSnapshot())
	if _, cmd := m.flushPending(); cmd != nil {
		t.Error("flushing an empty pending set must not issue a write")
	}
}

func TestSyncSkipsPendingFields(t *testing.T) {
	m := startedModel(t, testSnapshot())

	m, _ = m.setField("title", "Local Edit")
	m.fields[0].input.SetValue("Local Edit")

	snap := testSnapshot()
	snap.Title = "Server Title"
	snap.MaxUserCount = 50
	m.applySnapshot(snap)

	if got := m.fields[0].input.Value(); got != "Local Edit" {
		t.Errorf("pending field was clobbered: %q", got)
	}
	if got := m.fields[2].input.Value(); got != "50" {
		t.Errorf("untouched field not synced: %q", got)
	}
}

func TestWriteResponseKeepsNewerEdits(t *testing.T) {
	m := startedModel(t, testSnapshot())

	// Flush one edit, then edit again while the write is in flight.
	m, _ = m.setField("title", "First")
	m, _ = m.Update(debounceMsg{epoch: m.epoch, gen: m.debounceGen})
	m, _ = m.setField("title", "Second")
	m.fields[0].input.SetValue("Second")

	resp := testSnapshot()
	resp.Title = "First"
	m, _ = m.Update(writeResultMsg{epoch: m.epoch, snapshot: resp})

	if got := m.fields[0].input.Value(); got != "Second" {
		t.Errorf("write response clobbered a newer edit: %q", got)
	}
	if m.pending["title"] != "Second" {
		t.Error("the newer edit must stay pending for the next flush")
	}
}

func TestFailedWriteKeepsOptimisticValues(t *testing.T) {
	m := startedModel(t, testSnapshot())
	m, _ = m.setField("closed", true)
	m.fields[3].checked = true
	m, _ = m.Update(debounceMsg{epoch: m.epoch, gen: m.debounceGen})

	m, _ = m.Update(writeResultMsg{epoch: m.epoch, err: errTest})
	if m.banner == "" {
		t.Error("a failed write must surface an error banner")
	}
	if !m.fields[3].checked {
		t.Error("the control keeps its optimistic value until the next poll")
	}
}

func TestInvalidInputHeldBack(t *testing.T) {
	m := startedModel(t, testSnapshot())
	idx := 2 // max users
	m.fields[idx].input.SetValue("")
	m.fields[idx].input.Focus()

	m, _ = m.editField(idx, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !m.fields[idx].invalid {
		t.Error("unparseable input must mark the field invalid")
	}
	if len(m.pending) != 0 {
		t.Error("unparseable input must not be queued for writing")
	}

	m, _ = m.editField(idx, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.editField(idx, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if m.fields[idx].invalid {
		t.Error("a parseable value must clear the invalid mark")
	}
	if m.pending["maxUserCount"] != 7 {
		t.Errorf("pending maxUserCount = %v, want 7", m.pending["maxUserCount"])
	}
}

func TestUnsupportedFieldsHidden(t *testing.T) {
	m := startedModel(t, testSnapshot())
	if got := len(m.visibleFields()); got != 8 {
		t.Errorf("visible fields = %d, want 8 without allowWeb/invites", got)
	}

	snap := testSnapshot()
	tru := true
	snap.AllowWeb = &tru
	snap.Invites = &tru
	m.applySnapshot(snap)
	if got := len(m.visibleFields()); got != 10 {
		t.Errorf("visible fields = %d, want 10 with allowWeb/invites", got)
	}
	if !m.fields[8].checked || !m.fields[9].checked {
		t.Error("optional checkboxes must sync from the snapshot")
	}
}

func TestCheckboxToggleQueuesEdit(t *testing.T) {
	m := startedModel(t, testSnapshot())
	m.section = sectionSettings
	m.row = 3 // closed

	m, cmd := m.handleSettingsKey(keyMsg(" "))
	if cmd == nil {
		t.Fatal("toggle should arm the debounce timer")
	}
	if !m.fields[3].checked {
		t.Error("the checkbox shows the new value immediately")
	}
	if m.pending["closed"] != true {
		t.Errorf("pending closed = %v, want true", m.pending["closed"])
	}
	if m.snapshot.Closed {
		t.Error("the snapshot stays untouched until the server confirms")
	}
}
