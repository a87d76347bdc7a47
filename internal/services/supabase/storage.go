package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"echopages/internal/fragment"
	"echopages/internal/logging"
)

// optionalColumns may legitimately be absent from older deployments of a
// table. Writes that fail on one of these are retried once without it;
// anything else escalates.
var optionalColumns = map[string]bool{
	"score":            true,
	"justification":    true,
	"emotion_tag":      true,
	"emotional_weight": true,
	"user_id":          true,
}

// List fetches every fragment on a track, newest first.
func (c *Client) List(ctx context.Context, track fragment.Track) ([]fragment.Fragment, error) {
	table, err := c.Table(track)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "timestamp.desc")

	payload, err := c.doJSON(ctx, http.MethodGet, "/rest/v1/"+table, query.Encode(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	var rows []wireFragment
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	fragments := make([]fragment.Fragment, 0, len(rows))
	for _, row := range rows {
		fragments = append(fragments, fromWire(row, track))
	}
	return fragments, nil
}

// Create inserts a fragment and returns the stored row. When the table is
// missing one of the optional analysis columns, the insert is retried exactly
// once with that column stripped; a second mismatch escalates.
func (c *Client) Create(ctx context.Context, track fragment.Track, f fragment.Fragment) (fragment.Fragment, error) {
	table, err := c.Table(track)
	if err != nil {
		return fragment.Fragment{}, err
	}
	payload := toWire(f)

	stored, err := c.insert(ctx, table, payload)
	if err != nil {
		var missing *MissingColumnError
		if errors.As(err, &missing) && optionalColumns[missing.Column] {
			c.logger.Warn("table missing optional column, retrying without it",
				logging.String("table", table),
				logging.String("column", missing.Column))
			delete(payload, missing.Column)
			stored, err = c.insert(ctx, table, payload)
		}
	}
	if err != nil {
		return fragment.Fragment{}, fmt.Errorf("create in %s: %w", table, err)
	}
	return fromWire(stored, track), nil
}

func (c *Client) insert(ctx context.Context, table string, payload map[string]any) (wireFragment, error) {
	headers := map[string]string{"Prefer": "return=representation"}
	body, err := c.doJSON(ctx, http.MethodPost, "/rest/v1/"+table, "", payload, headers)
	if err != nil {
		return wireFragment{}, err
	}
	var rows []wireFragment
	if err := json.Unmarshal(body, &rows); err != nil {
		return wireFragment{}, fmt.Errorf("decode inserted row: %w", err)
	}
	if len(rows) == 0 {
		return wireFragment{}, errors.New("insert returned no rows")
	}
	return rows[0], nil
}

// Update patches the named columns on a stored fragment. It is used for the
// post-publish refinement pass and is safe to repeat: the same patch applied
// twice leaves the row unchanged.
func (c *Client) Update(ctx context.Context, track fragment.Track, id string, fields map[string]any) error {
	table, err := c.Table(track)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	query := url.Values{}
	query.Set("id", "eq."+id)

	if _, err := c.doJSON(ctx, http.MethodPatch, "/rest/v1/"+table, query.Encode(), fields, nil); err != nil {
		return fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	return nil
}
