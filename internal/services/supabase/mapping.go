package supabase

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"echopages/internal/fragment"
)

// wireFragment mirrors a table row. The wire shape is snake_case; this file
// is the only place the mapping is defined, in both directions.
type wireFragment struct {
	ID              json.Number `json:"id"`
	Title           string      `json:"title"`
	Content         string      `json:"content"`
	Author          string      `json:"author"`
	UserID          string      `json:"user_id"`
	Timestamp       string      `json:"timestamp"`
	CreatedAt       string      `json:"created_at"`
	Genre           string      `json:"genre"`
	Score           *int        `json:"score"`
	Justification   string      `json:"justification"`
	EmotionTag      string      `json:"emotion_tag"`
	EmotionalWeight *int        `json:"emotional_weight"`
	BackgroundColor string      `json:"background_color"`
}

// toWire flattens a fragment into the snake_case insert payload. It returns
// a map so the schema-mismatch retry can strip an optional column without a
// second mapping definition.
func toWire(f fragment.Fragment) map[string]any {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		title = fragment.UntitledPlaceholder
	}
	author := strings.TrimSpace(f.Author)
	if author == "" {
		author = "Observer"
	}
	timestamp := f.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	genre := f.Genre
	if genre == "" {
		genre = fragment.DefaultGenre
	}
	background := strings.TrimSpace(f.BackgroundColor)
	if background == "" {
		background = fragment.DefaultGradient
	}

	wire := map[string]any{
		"title":            title,
		"content":          f.Content,
		"author":           author,
		"timestamp":        timestamp.UTC().Format(time.RFC3339),
		"genre":            string(genre),
		"score":            fragment.ClampScore(f.Score),
		"justification":    f.Justification,
		"emotion_tag":      f.EmotionTag,
		"emotional_weight": fragment.ClampScore(f.EmotionalWeight),
		"background_color": background,
	}
	if strings.TrimSpace(f.UserID) != "" {
		wire["user_id"] = f.UserID
	}
	return wire
}

// fromWire rebuilds a fragment from a row, defaulting absent optional
// columns instead of failing the whole read.
func fromWire(wire wireFragment, track fragment.Track) fragment.Fragment {
	f := fragment.Fragment{
		ID:              wire.ID.String(),
		Title:           strings.TrimSpace(wire.Title),
		Content:         wire.Content,
		Author:          strings.TrimSpace(wire.Author),
		UserID:          wire.UserID,
		Timestamp:       parseTimestamp(wire.Timestamp, wire.CreatedAt),
		Track:           track,
		Genre:           fragment.CoerceGenre(wire.Genre),
		Justification:   strings.TrimSpace(wire.Justification),
		EmotionTag:      strings.TrimSpace(wire.EmotionTag),
		BackgroundColor: strings.TrimSpace(wire.BackgroundColor),
	}
	if f.Title == "" {
		f.Title = fragment.UntitledPlaceholder
	}
	if f.Author == "" {
		f.Author = "Observer"
	}
	if wire.Score != nil {
		f.Score = fragment.ClampScore(*wire.Score)
	} else {
		f.Score = 50
	}
	if wire.EmotionalWeight != nil {
		f.EmotionalWeight = fragment.ClampScore(*wire.EmotionalWeight)
	} else {
		f.EmotionalWeight = 50
	}
	if f.EmotionTag == "" {
		f.EmotionTag = "Fragment"
	}
	if f.BackgroundColor == "" {
		// Rows from before the gradient column still get a stable per-id
		// backdrop.
		f.BackgroundColor = fragment.AtmosphericGradient(f.ID)
	}
	return f
}

// parseTimestamp tolerates the timestamp column holding either RFC 3339
// text or epoch milliseconds, falling back to created_at and finally to now.
func parseTimestamp(primary, fallback string) time.Time {
	for _, candidate := range []string{primary, fallback} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
			if parsed, err := time.Parse(layout, candidate); err == nil {
				return parsed
			}
		}
		if millis, err := strconv.ParseInt(candidate, 10, 64); err == nil && millis > 0 {
			return time.UnixMilli(millis)
		}
	}
	return time.Now()
}
