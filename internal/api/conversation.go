package api

import (
	"context"
	"net/http"
)

// StartSession opens a new conversation session on the backend.
func (c *Client) StartSession(ctx context.Context) (*StartSessionResponse, error) {
	var out StartSessionResponse
	if err := c.post(ctx, "/api/conversation/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinishSession uploads the full transcript and closes the session. The raw
// envelope is returned alongside the typed response because the score's
// location in the payload varies across backend versions.
func (c *Client) FinishSession(ctx context.Context, req FinishSessionRequest) (*FinishSessionResponse, *Envelope, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/conversation/finish", nil, req)
	if err != nil {
		return nil, env, err
	}
	var out FinishSessionResponse
	if err := decode(env, &out); err != nil {
		return nil, env, err
	}
	return &out, env, nil
}

// GetHistory returns a page of the user's past conversations.
func (c *Client) GetHistory(ctx context.Context, page, limit int) (*ConversationHistoryResponse, error) {
	var out ConversationHistoryResponse
	if err := c.get(ctx, "/api/conversation/history", pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConversation returns one past conversation by session id.
func (c *Client) GetConversation(ctx context.Context, sessionID string) (*ConversationDetail, error) {
	var out ConversationDetail
	if err := c.get(ctx, "/api/conversation/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation removes one past conversation.
func (c *Client) DeleteConversation(ctx context.Context, sessionID string) error {
	return c.delete(ctx, "/api/conversation/delete", map[string]any{"sessionId": sessionID})
}

// DeleteAllConversations removes the user's entire conversation history.
func (c *Client) DeleteAllConversations(ctx context.Context) error {
	return c.delete(ctx, "/api/conversation/delete", map[string]any{"all": true})
}

// GetSettings returns the conversation settings (accent, style, voice gender).
func (c *Client) GetSettings(ctx context.Context) (*ConversationSettings, error) {
	var out ConversationSettings
	if err := c.get(ctx, "/api/conversation/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings applies a partial settings update.
func (c *Client) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*ConversationSettings, error) {
	var out ConversationSettings
	if err := c.put(ctx, "/api/conversation/settings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
