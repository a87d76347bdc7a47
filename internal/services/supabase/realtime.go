package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"echopages/internal/logging"
)

const (
	realtimeHeartbeat = 25 * time.Second
	realtimeVersion   = "1.0.0"
)

// phoenixMessage is the realtime protocol envelope. Topics look like
// "realtime:public:<table>" and change events arrive as INSERT, UPDATE, or
// DELETE on a joined topic.
type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// RealtimeConn is a live subscription to change events on one or more
// tables. It pushes the affected table name to onChange; the caller decides
// what a change means.
type RealtimeConn struct {
	conn     *websocket.Conn
	tables   []string
	onChange func(table string)
	logger   *slog.Logger
}

// realtimeEndpoint derives the websocket URL from the REST base URL.
func (c *Client) realtimeEndpoint() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http":
		parsed.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/realtime/v1/websocket"
	query := url.Values{}
	query.Set("apikey", c.anonKey)
	query.Set("vsn", realtimeVersion)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Subscribe opens a realtime connection and joins one topic per table.
// The returned connection must be driven with Listen and closed by the
// caller.
func (c *Client) Subscribe(ctx context.Context, tables []string, onChange func(table string)) (*RealtimeConn, error) {
	endpoint, err := c.realtimeEndpoint()
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	rc := &RealtimeConn{conn: conn, tables: tables, onChange: onChange, logger: c.logger}
	for i, table := range tables {
		join := phoenixMessage{
			Topic:   "realtime:public:" + table,
			Event:   "phx_join",
			Payload: json.RawMessage(`{}`),
			Ref:     fmt.Sprintf("%d", i+1),
		}
		if err := conn.WriteJSON(join); err != nil {
			conn.Close()
			return nil, fmt.Errorf("join topic for %s: %w", table, err)
		}
	}
	return rc, nil
}

// Listen pumps heartbeat and change events until the context is canceled or
// the connection drops. It returns the terminating error so the caller can
// decide whether to reconnect.
func (rc *RealtimeConn) Listen(ctx context.Context) error {
	defer rc.conn.Close()

	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go rc.heartbeatLoop(ctx, heartbeatDone)

	go func() {
		select {
		case <-ctx.Done():
			rc.conn.Close()
		case <-heartbeatDone:
		}
	}()

	for {
		var msg phoenixMessage
		if err := rc.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("realtime read: %w", err)
		}
		switch msg.Event {
		case "INSERT", "UPDATE", "DELETE":
			table := strings.TrimPrefix(msg.Topic, "realtime:public:")
			rc.logger.Info("realtime change", logging.String("table", table), logging.String("event", msg.Event))
			if rc.onChange != nil {
				rc.onChange(table)
			}
		case "phx_reply", "phx_error", "heartbeat":
			// Control traffic; nothing to invalidate.
		}
	}
}

func (rc *RealtimeConn) heartbeatLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(realtimeHeartbeat)
	defer ticker.Stop()
	ref := 1000
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			ref++
			beat := phoenixMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: json.RawMessage(`{}`),
				Ref:     fmt.Sprintf("%d", ref),
			}
			if err := rc.conn.WriteJSON(beat); err != nil {
				rc.logger.Warn("realtime heartbeat failed", logging.Error(err))
				return
			}
		}
	}
}

// Close tears the connection down.
func (rc *RealtimeConn) Close() error {
	return rc.conn.Close()
}
