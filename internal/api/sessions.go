package api

import (
	"context"
	"fmt"
)

// ChangeAllSessions applies the given settings to every session at
// once. Used for server-wide alert messages.
func (c *Client) ChangeAllSessions(ctx context.Context, fields map[string]interface{}) error {
	return c.put(ctx, "/sessions/", fields, nil)
}

// Sessions fetches the session list.
func (c *Client) Sessions(ctx context.Context) (*SessionList, error) {
	var list SessionList
	if err := c.get(ctx, "/sessions/", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Session fetches the full snapshot of one session.
func (c *Client) Session(ctx context.Context, id string) (*SessionSnapshot, error) {
	var s SessionSnapshot
	if err := c.get(ctx, "/sessions/"+id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ChangeSession writes a partial settings update and returns the fresh
// snapshot the server responds with.
func (c *Client) ChangeSession(ctx context.Context, id string, fields map[string]interface{}) (*SessionSnapshot, error) {
	var s SessionSnapshot
	if err := c.put(ctx, "/sessions/"+id, fields, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TerminateSession shuts the session down.
func (c *Client) TerminateSession(ctx context.Context, id string) error {
	return c.delete(ctx, "/sessions/"+id)
}

// ChangeUser updates per-user attributes (op, trusted, alert, ...).
func (c *Client) ChangeUser(ctx context.Context, sessionID string, userID int, fields map[string]interface{}) error {
	return c.put(ctx, fmt.Sprintf("/sessions/%s/%d", sessionID, userID), fields, nil)
}

// KickUser disconnects a user from the session.
func (c *Client) KickUser(ctx context.Context, sessionID string, userID int) error {
	return c.delete(ctx, fmt.Sprintf("/sessions/%s/%d", sessionID, userID))
}

// ChatMessages fetches chat messages starting at offset.
func (c *Client) ChatMessages(ctx context.Context, sessionID string, offset int) (*ChatBatch, error) {
	var b ChatBatch
	path := fmt.Sprintf("/sessions/%s/chat/?offset=%d", sessionID, offset)
	if err := c.get(ctx, path, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SendChatMessage sends a chat message and returns the messages that
// arrived since offset, the sent one included.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, text string, offset int) (*ChatBatch, error) {
	var b ChatBatch
	body := map[string]interface{}{"message": text, "offset": offset}
	if err := c.post(ctx, "/sessions/"+sessionID+"/chat/", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ConnectChat attaches the admin chat relay to the session. The initial
// message is announced to the session's users.
func (c *Client) ConnectChat(ctx context.Context, sessionID, message string) (*ChatBatch, error) {
	var b ChatBatch
	body := map[string]interface{}{"message": message}
	if err := c.post(ctx, "/sessions/"+sessionID+"/chat/connect", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DisconnectChat detaches the admin chat relay. The farewell message may
// be empty.
func (c *Client) DisconnectChat(ctx context.Context, sessionID, message string) (*ChatBatch, error) {
	var b ChatBatch
	body := map[string]interface{}{"message": message}
	if err := c.post(ctx, "/sessions/"+sessionID+"/chat/disconnect", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UnlistSession removes the session's announcement from a list server.
func (c *Client) UnlistSession(ctx context.Context, sessionID string, listingID int) error {
	return c.delete(ctx, fmt.Sprintf("/sessions/%s/listing/%d", sessionID, listingID))
}

// CreateInvite creates a new invite code for the session.
func (c *Client) CreateInvite(ctx context.Context, sessionID string, maxUses int, trusted, op bool) error {
	body := map[string]interface{}{"maxUses": maxUses, "trust": trusted, "op": op}
	return c.post(ctx, "/sessions/"+sessionID+"/invites/", body, nil)
}

// RevokeInvite deletes an invite code.
func (c *Client) RevokeInvite(ctx context.Context, sessionID, secret string) error {
	return c.delete(ctx, "/sessions/"+sessionID+"/invites/"+secret)
}
