package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type wireUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		DisplayName string `json:"display_name"`
		FullName    string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u wireUser) toSessionUser() SessionUser {
	name := strings.TrimSpace(u.UserMetadata.DisplayName)
	if name == "" {
		name = strings.TrimSpace(u.UserMetadata.FullName)
	}
	return SessionUser{ID: u.ID, Email: strings.ToLower(strings.TrimSpace(u.Email)), DisplayName: name}
}

// SignInWithOTP asks the auth service to email a one-time code. No session
// exists until the code is verified.
func (c *Client) SignInWithOTP(ctx context.Context, email string) error {
	body := map[string]any{
		"email":       strings.ToLower(strings.TrimSpace(email)),
		"create_user": true,
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/auth/v1/otp", "", body, nil); err != nil {
		return fmt.Errorf("request sign-in code: %w", err)
	}
	return nil
}

// VerifyOTP exchanges an emailed code for a session and persists it.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	body := map[string]any{
		"type":  "email",
		"email": strings.ToLower(strings.TrimSpace(email)),
		"token": strings.TrimSpace(code),
	}
	payload, err := c.doJSON(ctx, http.MethodPost, "/auth/v1/verify", "", body, nil)
	if err != nil {
		return Session{}, fmt.Errorf("verify sign-in code: %w", err)
	}

	var wire struct {
		AccessToken  string   `json:"access_token"`
		RefreshToken string   `json:"refresh_token"`
		ExpiresIn    int      `json:"expires_in"`
		User         wireUser `json:"user"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Session{}, fmt.Errorf("decode verify response: %w", err)
	}
	if wire.AccessToken == "" {
		return Session{}, fmt.Errorf("verify response carried no access token")
	}

	session := Session{
		AccessToken:  wire.AccessToken,
		RefreshToken: wire.RefreshToken,
		User:         wire.User.toSessionUser(),
	}
	if wire.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(wire.ExpiresIn) * time.Second)
	}
	if c.sessions != nil {
		if err := c.sessions.Save(session); err != nil {
			return Session{}, err
		}
	}
	return session, nil
}

// GetUser fetches the profile behind the stored session.
func (c *Client) GetUser(ctx context.Context) (SessionUser, error) {
	if c.sessions == nil {
		return SessionUser{}, ErrNoSession
	}
	if _, err := c.sessions.Load(); err != nil {
		return SessionUser{}, err
	}
	payload, err := c.doJSON(ctx, http.MethodGet, "/auth/v1/user", "", nil, nil)
	if err != nil {
		return SessionUser{}, fmt.Errorf("fetch user: %w", err)
	}
	var wire wireUser
	if err := json.Unmarshal(payload, &wire); err != nil {
		return SessionUser{}, fmt.Errorf("decode user: %w", err)
	}
	return wire.toSessionUser(), nil
}

// UpdateDisplayName changes the signed-in user's pen name and refreshes the
// stored session copy so later commands see it without another round trip.
func (c *Client) UpdateDisplayName(ctx context.Context, displayName string) error {
	if c.sessions == nil {
		return ErrNoSession
	}
	session, err := c.sessions.Load()
	if err != nil {
		return err
	}
	body := map[string]any{
		"data": map[string]any{"display_name": strings.TrimSpace(displayName)},
	}
	if _, err := c.doJSON(ctx, http.MethodPut, "/auth/v1/user", "", body, nil); err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	session.User.DisplayName = strings.TrimSpace(displayName)
	return c.sessions.Save(session)
}

// SignOut revokes the session server-side when possible and always clears
// the local copy.
func (c *Client) SignOut(ctx context.Context) error {
	if c.sessions == nil {
		return nil
	}
	if _, err := c.sessions.Load(); err != nil {
		return c.sessions.Clear()
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", "", nil, nil); err != nil {
		c.logger.Warn("server-side sign-out failed, clearing local session anyway")
	}
	return c.sessions.Clear()
}
