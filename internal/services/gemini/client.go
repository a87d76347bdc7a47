package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/genai"

	"echopages/internal/config"
	"echopages/internal/fragment"
	"echopages/internal/history"
	"echopages/internal/logging"
)

const defaultTimeout = 20 * time.Second

// Metadata is the structured judgment returned for a submitted fragment.
// Every field is coerced before it leaves this package: the genre is always
// a member of the closed enumeration and the scores are always in [0,100].
type Metadata struct {
	Genre              fragment.Genre
	Score              int
	Justification      string
	SuggestedTitle     string
	EmotionTag         string
	EmotionalWeight    int
	BackgroundGradient string
	IsSafe             bool
	ContainsRestricted bool
	ErrorReason        string
}

// generator is the transport seam between the client and the model. Tests
// substitute a fake; production uses the genai-backed implementation.
type generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client wraps the Gemini completion endpoint for classification and the
// daily inspirational line. Each call is a single round trip under a bounded
// timeout; there are no retries and no caching on the classification path.
type Client struct {
	gen     generator
	store   *history.Store
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a client from application configuration. The history store
// may be nil; only the daily-line cache needs it.
func New(ctx context.Context, cfg *config.Config, store *history.Store, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return nil, errors.New("gemini api key required (set gemini.api_key or GEMINI_API_KEY)")
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithGenerator(&genaiGenerator{client: genaiClient, model: cfg.Gemini.Model}, store, cfg.GeminiTimeout(), logger), nil
}

func newWithGenerator(gen generator, store *history.Store, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		gen:     gen,
		store:   store,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze classifies the fragment body in strict mode: transport and parse
// failures are returned to the caller so a publish can block on them. The
// returned Metadata is fully coerced even when the model wanders off-shape.
func (c *Client) Analyze(ctx context.Context, text, title string) (Metadata, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Metadata{}, errors.New("analyze: text required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.gen.GenerateJSON(ctx, buildAnalyzePrompt(text, title), analyzeSchema())
	if err != nil {
		return Metadata{}, fmt.Errorf("analyze: %w", err)
	}

	var wire analyzeResponse
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Metadata{}, fmt.Errorf("analyze: parse payload: %w", err)
	}
	return coerceMetadata(wire, title), nil
}

// AnalyzeOrDefault degrades to documented safe defaults instead of failing.
// Informational callers use this; the publish path never does.
func (c *Client) AnalyzeOrDefault(ctx context.Context, text, title string) Metadata {
	meta, err := c.Analyze(ctx, text, title)
	if err != nil {
		c.logger.Warn("classification degraded to defaults", logging.Error(err))
		return DefaultMetadata(title)
	}
	return meta
}

// DefaultMetadata is the safe fallback shape used when classification is
// unavailable outside the publish path.
func DefaultMetadata(title string) Metadata {
	return Metadata{
		Genre:              fragment.DefaultGenre,
		Score:              50,
		SuggestedTitle:     fallbackTitle(title),
		EmotionTag:         "Quiet",
		EmotionalWeight:    50,
		BackgroundGradient: fragment.DefaultGradient,
		IsSafe:             true,
	}
}

// analyzeResponse mirrors the JSON shape requested from the model.
type analyzeResponse struct {
	IsSafe             *bool   `json:"isSafe"`
	ContainsRestricted bool    `json:"containsRestricted"`
	Genre              string  `json:"genre"`
	Score              float64 `json:"score"`
	Justification      string  `json:"justification"`
	SuggestedTitle     string  `json:"suggestedTitle"`
	EmotionTag         string  `json:"emotionTag"`
	EmotionalWeight    float64 `json:"emotionalWeight"`
	BackgroundGradient string  `json:"backgroundGradient"`
	ErrorReason        string  `json:"errorReason"`
}

var titleCaser = cases.Title(language.English)

func coerceMetadata(wire analyzeResponse, userTitle string) Metadata {
	meta := Metadata{
		Genre:              fragment.CoerceGenre(wire.Genre),
		Score:              fragment.ClampScore(roundScore(wire.Score)),
		Justification:      strings.TrimSpace(wire.Justification),
		SuggestedTitle:     strings.TrimSpace(wire.SuggestedTitle),
		EmotionTag:         strings.TrimSpace(wire.EmotionTag),
		EmotionalWeight:    fragment.ClampScore(roundScore(wire.EmotionalWeight)),
		BackgroundGradient: strings.TrimSpace(wire.BackgroundGradient),
		ContainsRestricted: wire.ContainsRestricted,
		ErrorReason:        strings.TrimSpace(wire.ErrorReason),
	}
	// A missing verdict is treated as safe; an explicit false blocks.
	meta.IsSafe = wire.IsSafe == nil || *wire.IsSafe
	if meta.SuggestedTitle == "" {
		meta.SuggestedTitle = fallbackTitle(userTitle)
	}
	if meta.EmotionTag == "" {
		meta.EmotionTag = "Echo"
	} else {
		meta.EmotionTag = titleCaser.String(strings.ToLower(meta.EmotionTag))
	}
	if meta.BackgroundGradient == "" || !strings.Contains(meta.BackgroundGradient, "gradient") {
		meta.BackgroundGradient = fragment.DefaultGradient
	}
	return meta
}

func roundScore(value float64) int {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 50
	}
	return int(math.Round(value))
}

func fallbackTitle(title string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	return "Fragment"
}
