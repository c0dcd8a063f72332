// Package api is the HTTP client for the server's JSON admin interface.
// Types mirror the server wire format without importing server packages.
package api

import (
	"bytes"
	"encoding/json"
)

// Chat message flag bits, matching the server protocol.
const (
	ChatFlagShout  = 0x1
	ChatFlagAction = 0x2
	ChatFlagPin    = 0x4
	ChatFlagAlert  = 0x8
)

// UnpinSentinel is the message body that, combined with ChatFlagPin, means
// the pinned message was removed rather than a literal "-" being pinned.
const UnpinSentinel = "-"

// SessionSnapshot is the server's full view of one session at a point in
// time. The detail view replaces it wholesale on every successful poll or
// settings write. Optional features the server build lacks are nil and the
// matching controls are hidden.
type SessionSnapshot struct {
	ID        string `json:"id"`
	Alias     string `json:"alias,omitempty"`
	Founder   string `json:"founder"`
	StartTime string `json:"startTime"`

	Title                   string `json:"title"`
	Closed                  bool   `json:"closed"`
	AuthOnly                bool   `json:"authOnly"`
	Persistent              bool   `json:"persistent"`
	Nsfm                    bool   `json:"nsfm"`
	IdleOverride            bool   `json:"idleOverride"`
	AllowWeb                *bool  `json:"allowWeb,omitempty"`
	Invites                 *bool  `json:"invites,omitempty"`
	ResetThreshold          int64  `json:"resetThreshold"`
	EffectiveResetThreshold int64  `json:"effectiveResetThreshold,omitempty"`
	MaxUserCount            int    `json:"maxUserCount"`
	HasPassword             bool   `json:"hasPassword"`
	HasOpword               bool   `json:"hasOpword"`

	Size      int64 `json:"size"`
	MaxSize   int64 `json:"maxSize"`
	UserCount int   `json:"userCount"`

	Autoreset  *Autoreset    `json:"autoreset,omitempty"`
	Users      []SessionUser `json:"users"`
	Listings   []Listing     `json:"listings"`
	InviteList []Invite      `json:"invitelist,omitempty"`
	Chat       *ChatInfo     `json:"chat,omitempty"`

	Locked bool `json:"_locked,omitempty"`
}

// SessionHead is the abbreviated per-session record in the session list.
type SessionHead struct {
	ID           string `json:"id"`
	Alias        string `json:"alias,omitempty"`
	Title        string `json:"title"`
	UserCount    int    `json:"userCount"`
	MaxUserCount int    `json:"maxUserCount"`
	Size         int64  `json:"size"`
	StartTime    string `json:"startTime"`
	HasPassword  bool   `json:"hasPassword"`
	Closed       bool   `json:"closed"`
	AuthOnly     bool   `json:"authOnly"`
	Persistent   bool   `json:"persistent"`
	Nsfm         bool   `json:"nsfm"`
	IdleOverride bool   `json:"idleOverride"`
	AllowWeb     bool   `json:"allowWeb,omitempty"`
	Invites      bool   `json:"invites,omitempty"`
}

// SessionList is the /sessions/ response. Older server builds return a
// bare array, newer ones wrap it with a lock flag; see UnmarshalJSON.
type SessionList struct {
	Sessions []SessionHead `json:"sessions"`
	Locked   bool          `json:"_locked,omitempty"`
}

// UnmarshalJSON accepts both response shapes for /sessions/.
func (l *SessionList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		l.Locked = false
		return json.Unmarshal(data, &l.Sessions)
	}
	type plain SessionList
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = SessionList(p)
	return nil
}

// SessionUser is one connected (or recently disconnected) user.
type SessionUser struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	IP         string   `json:"ip"`
	Online     bool     `json:"online"`
	Op         bool     `json:"op"`
	Trusted    bool     `json:"trusted"`
	Muted      bool     `json:"muted"`
	Mod        bool     `json:"mod"`
	Ghost      bool     `json:"ghost"`
	HoldLocked bool     `json:"holdLocked"`
	ResetFlags []string `json:"resetFlags,omitempty"`
}

// Listing is one announcement at a public list server.
type Listing struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	RoomCode string `json:"roomcode"`
	Private  bool   `json:"private"`
}

// Invite is one invite code with its use history.
type Invite struct {
	Secret  string      `json:"secret"`
	Creator string      `json:"creator"`
	At      string      `json:"at"`
	Trust   bool        `json:"trust"`
	Op      bool        `json:"op"`
	MaxUses int         `json:"maxUses"`
	Uses    []InviteUse `json:"uses"`
}

// InviteUse records a single redemption of an invite code.
type InviteUse struct {
	At   string `json:"at"`
	Name string `json:"name"`
}

// Autoreset describes the session's autoreset machinery.
type Autoreset struct {
	Delay             int64        `json:"delay"`
	HistoryFirstIndex int64        `json:"historyFirstIndex"`
	HistoryLastIndex  int64        `json:"historyLastIndex"`
	RequestStatus     string       `json:"requestStatus"`
	SessionState      string       `json:"sessionState"`
	Timer             *int64       `json:"timer,omitempty"`
	Stream            *ResetStream `json:"stream,omitempty"`
}

// ResetStream describes an in-progress reset image upload.
type ResetStream struct {
	State        string `json:"state"`
	CtxID        int    `json:"ctxId"`
	Size         int64  `json:"size"`
	StartIndex   int64  `json:"startIndex"`
	MessageCount int    `json:"messageCount"`
	HaveConsumer bool   `json:"haveConsumer"`
}

// ChatInfo is the session's chat connection descriptor. Its presence in a
// snapshot means the admin chat relay is attached server-side.
type ChatInfo struct {
	Name string `json:"name,omitempty"`
}

// ChatMessage is one relayed chat message. A nil Sender marks a message
// sent by the admin console or the server itself.
type ChatMessage struct {
	Sender  *int   `json:"i,omitempty"`
	Name    string `json:"n,omitempty"`
	Message string `json:"m"`
	Flags   int    `json:"f,omitempty"`
}

// ChatBatch is a page of chat messages together with the offset the page
// was fetched from.
type ChatBatch struct {
	Messages []ChatMessage `json:"messages"`
	Offset   int           `json:"offset"`
}
