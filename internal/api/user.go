package api

import "context"

// Me returns the authenticated user's identity.
func (c *Client) Me(ctx context.Context) (*AuthMe, error) {
	var out AuthMe
	if err := c.get(ctx, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterIfNeeded provisions a backend account for a freshly authenticated
// identity. Safe to call on every login.
func (c *Client) RegisterIfNeeded(ctx context.Context) error {
	return c.post(ctx, "/api/auth/register-if-needed", nil, nil)
}

// GetProfile returns the user's profile.
func (c *Client) GetProfile(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := c.get(ctx, "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserProfile, error) {
	var out UserProfile
	if err := c.put(ctx, "/api/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStats returns the server-side study statistics.
func (c *Client) GetStats(ctx context.Context) (*UserStats, error) {
	var out UserStats
	if err := c.get(ctx, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPhrases returns the bundled practice phrases.
func (c *Client) GetPhrases(ctx context.Context) ([]Phrase, error) {
	var out []Phrase
	if err := c.get(ctx, "/api/phrases", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNotificationSettings returns the push notification settings.
func (c *Client) GetNotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	var out NotificationSettings
	if err := c.get(ctx, "/api/notifications/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNotificationSettings toggles push notifications.
func (c *Client) UpdateNotificationSettings(ctx context.Context, enabled bool) (*NotificationSettings, error) {
	var out NotificationSettings
	if err := c.put(ctx, "/api/notifications/settings", map[string]bool{"enabled": enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSubscriptionOptions returns the available plans.
func (c *Client) GetSubscriptionOptions(ctx context.Context) (*SubscriptionOptionsResponse, error) {
	var out SubscriptionOptionsResponse
	if err := c.get(ctx, "/api/subscription/options", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subscribe starts or changes the subscription plan.
func (c *Client) Subscribe(ctx context.Context, plan string) (*SubscribeResponse, error) {
	var out SubscribeResponse
	if err := c.post(ctx, "/api/subscription/subscribe", map[string]string{"plan": plan}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelSubscription cancels the current subscription.
func (c *Client) CancelSubscription(ctx context.Context) (*CancelSubscriptionResponse, error) {
	var out CancelSubscriptionResponse
	if err := c.post(ctx, "/api/subscription/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHomeStatus returns the home screen status (today's count, plan).
func (c *Client) GetHomeStatus(ctx context.Context) (*HomeStatus, error) {
	var out HomeStatus
	if err := c.get(ctx, "/api/home/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
