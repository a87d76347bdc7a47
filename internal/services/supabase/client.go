package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"echopages/internal/config"
	"echopages/internal/fragment"
	"echopages/internal/logging"
	"echopages/internal/services"
)

const defaultTimeout = 15 * time.Second

// Client talks to the managed backend: PostgREST tables for fragments,
// GoTrue for authentication, and the realtime websocket for invalidation
// signals. It is the only component that knows the snake_case wire shape.
type Client struct {
	baseURL    string
	anonKey    string
	tables     map[fragment.Track]string
	httpClient *http.Client
	sessions   *SessionStore
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New constructs a backend client from application configuration.
func New(cfg *config.Config, sessions *SessionStore, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Supabase.URL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url required (set supabase.url or SUPABASE_URL)")
	}
	if strings.TrimSpace(cfg.Supabase.AnonKey) == "" {
		return nil, errors.New("supabase anon key required (set supabase.anon_key or SUPABASE_ANON_KEY)")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		baseURL: baseURL,
		anonKey: strings.TrimSpace(cfg.Supabase.AnonKey),
		tables: map[fragment.Track]string{
			fragment.TrackCurated:   cfg.Supabase.CuratedTable,
			fragment.TrackCommunity: cfg.Supabase.CommunityTable,
		},
		httpClient: &http.Client{Timeout: cfg.SupabaseTimeout()},
		sessions:   sessions,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// Table returns the storage table backing a visibility track.
func (c *Client) Table(track fragment.Track) (string, error) {
	table, ok := c.tables[track]
	if !ok || strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("no table configured for track %q", track)
	}
	return table, nil
}

// bearerToken prefers the stored session's access token and falls back to
// the anon key. The session file is read on every call so a sign-in or
// sign-out in another command is picked up immediately.
func (c *Client) bearerToken() string {
	if c.sessions != nil {
		if session, err := c.sessions.Load(); err == nil && session.AccessToken != "" {
			return session.AccessToken
		}
	}
	return c.anonKey
}

func (c *Client) doJSON(ctx context.Context, method, path string, query string, body any, extraHeaders map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	req.Header.Set("Accept", "application/json")
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-Id", requestID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, classifyRequestError(resp.StatusCode, payload)
	}
	return payload, nil
}
