package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Authenticator runs the OAuth 2.0 device-authorization flow against the
// configured identity provider and keeps the resulting tokens fresh.
type Authenticator struct {
	Domain   string
	ClientID string
	Audience string
	Scopes   string

	Store  TokenStore
	Client *http.Client

	logger *log.Logger
}

// NewAuthenticator creates an authenticator for the given provider settings.
func NewAuthenticator(domain, clientID, audience, scopes string, store TokenStore) *Authenticator {
	return &Authenticator{
		Domain:   domain,
		ClientID: clientID,
		Audience: audience,
		Scopes:   scopes,
		Store:    store,
		Client:   &http.Client{Timeout: 15 * time.Second},
		logger:   log.WithPrefix("auth"),
	}
}

// DeviceCode is the provider's device-authorization response.
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestDeviceCode begins the device flow. The caller should show the user
// the verification URI and user code, then call WaitForToken.
func (a *Authenticator) RequestDeviceCode(ctx context.Context) (*DeviceCode, error) {
	form := url.Values{}
	form.Set("client_id", a.ClientID)
	form.Set("scope", a.Scopes)
	if a.Audience != "" {
		form.Set("audience", a.Audience)
	}

	var dc DeviceCode
	if err := a.postForm(ctx, "/oauth/device/code", form, &dc); err != nil {
		return nil, fmt.Errorf("device code request failed: %w", err)
	}
	if dc.Interval <= 0 {
		dc.Interval = 5
	}
	return &dc, nil
}

// WaitForToken polls the token endpoint until the user approves the device,
// the code expires, or the context is canceled. On success the credentials
// are saved to the store and returned.
func (a *Authenticator) WaitForToken(ctx context.Context, dc *DeviceCode) (*Credentials, error) {
	interval := time.Duration(dc.Interval) * time.Second
	deadline := time.Now().Add(time.Duration(dc.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("device code expired before approval")
		}

		form := url.Values{}
		form.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
		form.Set("device_code", dc.DeviceCode)
		form.Set("client_id", a.ClientID)

		var tr tokenResponse
		if err := a.postForm(ctx, "/oauth/token", form, &tr); err != nil {
			return nil, fmt.Errorf("token request failed: %w", err)
		}

		switch tr.Error {
		case "":
			creds := credsFromToken(tr)
			a.Store.Save(creds)
			a.logger.Info("login complete")
			return creds, nil
		case "authorization_pending":
			continue
		case "slow_down":
			interval += 5 * time.Second
		case "expired_token":
			return nil, fmt.Errorf("device code expired before approval")
		default:
			return nil, fmt.Errorf("authorization failed: %s (%s)", tr.Error, tr.ErrorDescription)
		}
	}
}

// Refresh exchanges the refresh token for a new access token and saves it.
func (a *Authenticator) Refresh(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", a.ClientID)
	form.Set("refresh_token", creds.RefreshToken)

	var tr tokenResponse
	if err := a.postForm(ctx, "/oauth/token", form, &tr); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("refresh failed: %s (%s)", tr.Error, tr.ErrorDescription)
	}

	next := credsFromToken(tr)
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}
	a.Store.Save(next)
	return next, nil
}

// AccessToken implements api.TokenSource: it returns the stored token,
// refreshing it first when expired. Returns "" when logged out.
func (a *Authenticator) AccessToken() string {
	creds := a.Store.Load()
	if creds == nil {
		return ""
	}
	if creds.Expired() {
		refreshed, err := a.Refresh(context.Background(), creds)
		if err != nil {
			a.logger.Warn("token refresh failed", "err", err)
			return creds.AccessToken
		}
		return refreshed.AccessToken
	}
	return creds.AccessToken
}

// Logout drops the stored credentials and revokes the refresh token when the
// provider supports it. Revocation failures are logged only.
func (a *Authenticator) Logout(ctx context.Context) {
	creds := a.Store.Load()
	a.Store.Clear()
	if creds == nil || creds.RefreshToken == "" {
		return
	}

	form := url.Values{}
	form.Set("client_id", a.ClientID)
	form.Set("token", creds.RefreshToken)
	if err := a.postForm(ctx, "/oauth/revoke", form, nil); err != nil {
		a.logger.Warn("token revocation failed", "err", err)
	}
}

func (a *Authenticator) postForm(ctx context.Context, path string, form url.Values, out any) error {
	base := a.Domain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	endpoint := base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if out == nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
		}
		return nil
	}

	// Token endpoints report polling states with error bodies on 4xx, so
	// decode before checking status.
	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func credsFromToken(tr tokenResponse) *Credentials {
	creds := &Credentials{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		IDToken:      tr.IDToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return creds
}
