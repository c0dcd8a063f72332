package session

import (
	"strings"
	"testing"

	"github.com/drawpile/dpwebadmin/internal/api"
)

func user(id int) *int { return &id }

func batch(offset int, texts ...string) *api.ChatBatch {
	b := &api.ChatBatch{Offset: offset}
	for i, text := range texts {
		b.Messages = append(b.Messages, api.ChatMessage{
			Sender:  user(i + 1),
			Name:    "alice",
			Message: text,
		})
	}
	return b
}

func connectedModel(t *testing.T) Model {
	t.Helper()
	m := startedModel(t, testSnapshot())
	m, _ = m.connectChat(batch(0, "hello", "world"))
	return m
}

func TestConnectStartsCursorAtZero(t *testing.T) {
	m := connectedModel(t)
	if !m.chat.connected || !m.chat.timerRunning {
		t.Fatal("connect should mark connected and arm the refresh timer")
	}
	if m.chat.offset != 2 || len(m.chat.messages) != 2 {
		t.Errorf("offset=%d messages=%d, want 2/2", m.chat.offset, len(m.chat.messages))
	}
}

func TestChatOffsetAdvances(t *testing.T) {
	m := connectedModel(t)
	m.applyChatBatch(batch(2, "third", "fourth", "fifth"))
	if m.chat.offset != 5 {
		t.Errorf("offset = %d, want 5", m.chat.offset)
	}
	if len(m.chat.messages) != 5 || m.chat.messages[4].Message != "fifth" {
		t.Error("later batches append in response order")
	}
}

func TestDuplicateBatchIgnored(t *testing.T) {
	m := connectedModel(t)

	// The same page delivered twice moves the offset nowhere and must
	// not duplicate the log.
	m.applyChatBatch(batch(0, "hello", "world"))
	if m.chat.offset != 2 || len(m.chat.messages) != 2 {
		t.Errorf("offset=%d messages=%d after duplicate, want 2/2", m.chat.offset, len(m.chat.messages))
	}

	// An empty batch at the current offset is also a no-op.
	m.applyChatBatch(&api.ChatBatch{Offset: 2})
	if m.chat.offset != 2 || len(m.chat.messages) != 2 {
		t.Error("an empty batch must not disturb the cursor")
	}
}

func TestChatSingleRequestInFlight(t *testing.T) {
	m := connectedModel(t)

	m, cmd := m.requestChatMessages()
	if cmd == nil || !m.chat.awaiting {
		t.Fatal("fetch should mark a request in flight")
	}
	gen := m.chat.gen

	// A tick firing while the request is out is ignored.
	m, cmd = m.Update(chatTickMsg{epoch: m.epoch, gen: gen})
	if cmd != nil || m.chat.gen != gen {
		t.Error("tick during an in-flight chat request must be a no-op")
	}

	// A tick from a cancelled schedule is ignored too.
	m, cmd = m.Update(chatTickMsg{epoch: m.epoch, gen: gen - 1})
	if cmd != nil {
		t.Error("stale chat tick must be ignored")
	}
}

func TestChatResultRestartsTimer(t *testing.T) {
	m := connectedModel(t)
	m, _ = m.requestChatMessages()

	m, cmd := m.Update(chatResultMsg{epoch: m.epoch, gen: m.chat.gen, batch: batch(2, "third")})
	if cmd == nil || !m.chat.timerRunning || m.chat.awaiting {
		t.Error("a fetch result must re-arm the refresh timer")
	}
	if m.chat.offset != 3 {
		t.Errorf("offset = %d, want 3", m.chat.offset)
	}
}

func TestChatErrorKeepsPolling(t *testing.T) {
	m := connectedModel(t)
	m, _ = m.requestChatMessages()

	m, cmd := m.Update(chatResultMsg{epoch: m.epoch, gen: m.chat.gen, err: errTest})
	if m.chat.errText == "" {
		t.Error("a failed fetch must show its error")
	}
	if cmd == nil || !m.chat.timerRunning {
		t.Error("chat polling never stops itself on failure")
	}
	if m.chat.offset != 2 || len(m.chat.messages) != 2 {
		t.Error("a failed fetch must not disturb the log")
	}
}

func TestStaleChatResultIgnored(t *testing.T) {
	m := connectedModel(t)
	m, _ = m.requestChatMessages()

	m, cmd := m.Update(chatResultMsg{epoch: m.epoch, gen: m.chat.gen - 1, batch: batch(2, "stale")})
	if cmd != nil || m.chat.offset != 2 {
		t.Error("a result from a cancelled request must be dropped")
	}
}

func TestSendRejectsBlankMessage(t *testing.T) {
	m := connectedModel(t)
	m.chat.compose.SetValue("   \n  ")
	m, cmd := m.sendChatMessage()
	if cmd != nil || m.chat.awaiting {
		t.Error("a blank message must not be sent")
	}
}

func TestSendCarriesCurrentOffset(t *testing.T) {
	m := connectedModel(t)
	m.chat.compose.SetValue("hi there")
	m, cmd := m.sendChatMessage()
	if cmd == nil || !m.chat.awaiting {
		t.Fatal("send should put a request in flight")
	}
	if m.chat.compose.Value() != "" {
		t.Error("the compose box clears on send")
	}

	// The send response doubles as a fetch: it may carry other users'
	// messages that arrived since the last page.
	m, _ = m.Update(chatResultMsg{epoch: m.epoch, gen: m.chat.gen,
		batch: batch(2, "interleaved", "hi there")})
	if m.chat.offset != 4 || m.chat.messages[2].Message != "interleaved" {
		t.Error("messages arriving before the echo keep their server order")
	}
}

func TestDisconnectClearsEverything(t *testing.T) {
	m := connectedModel(t)
	m.snapshot.Chat = &api.ChatInfo{Name: "Admin"}

	farewell := &api.ChatBatch{Offset: 0, Messages: []api.ChatMessage{
		{Message: "Admin left", Flags: 0},
	}}
	m, cmd := m.disconnectChat(farewell)
	if cmd != nil {
		t.Error("disconnect must not arm a refresh timer")
	}
	if m.chat.connected || m.chat.timerRunning {
		t.Error("disconnect should stop the cycle")
	}
	if m.snapshot.Chat != nil {
		t.Error("disconnect removes the chat descriptor so polls do not reconnect")
	}
	if len(m.chat.messages) != 1 || m.chat.offset != 1 {
		t.Error("only the farewell message survives a disconnect")
	}
}

func TestReconnectRestartsCursor(t *testing.T) {
	m := connectedModel(t)
	m.applyChatBatch(batch(2, "third"))

	m, _ = m.disconnectChat(nil)
	m, _ = m.connectChat(batch(0, "fresh start"))
	if m.chat.offset != 1 || len(m.chat.messages) != 1 {
		t.Errorf("offset=%d messages=%d after reconnect, want 1/1", m.chat.offset, len(m.chat.messages))
	}
	if m.chat.messages[0].Message != "fresh start" {
		t.Error("the old log must not survive a reconnect")
	}
}

func TestRenderChatMessageKinds(t *testing.T) {
	tests := []struct {
		name string
		msg  api.ChatMessage
		want string
	}{
		{"plain", api.ChatMessage{Sender: user(3), Name: "alice", Message: "hi"}, "3 alice: hi"},
		{"admin", api.ChatMessage{Message: "server notice"}, "Admin: server notice"},
		{"shout", api.ChatMessage{Sender: user(3), Name: "alice", Message: "hey", Flags: api.ChatFlagShout}, "alice shouts: hey"},
		{"action", api.ChatMessage{Sender: user(3), Name: "alice", Message: "waves", Flags: api.ChatFlagAction}, "alice waves"},
		{"alert", api.ChatMessage{Sender: user(3), Name: "alice", Message: "look", Flags: api.ChatFlagAlert}, "alice alerts: look"},
		{"pin", api.ChatMessage{Sender: user(3), Name: "alice", Message: "rules", Flags: api.ChatFlagPin}, "alice pinned a message: rules"},
		{"unpin", api.ChatMessage{Sender: user(3), Name: "alice", Message: "-", Flags: api.ChatFlagPin}, "unpinned the pinned message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderChatMessage(tt.msg)
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderChatMessage() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestStripErrorPrefix(t *testing.T) {
	if got := stripErrorPrefix(" Error: not allowed "); got != "not allowed" {
		t.Errorf("stripErrorPrefix = %q", got)
	}
	if got := stripErrorPrefix("plain text"); got != "plain text" {
		t.Errorf("stripErrorPrefix = %q", got)
	}
}
