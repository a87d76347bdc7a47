package publish

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"echopages/internal/fragment"
	"echopages/internal/logging"
	"echopages/internal/services"
	"echopages/internal/services/gemini"
	"echopages/internal/session"
)

// Status is the publish pipeline state. Failures exit back to Idle so the
// draft can be edited or resubmitted.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusValidating  Status = "validating"
	StatusClassifying Status = "classifying"
	StatusPersisting  Status = "persisting"
	StatusSyncing     Status = "syncing"
	StatusDone        Status = "done"
)

// Classifier produces publication metadata for a draft.
type Classifier interface {
	Analyze(ctx context.Context, content, title string) (gemini.Metadata, error)
}

// Storage persists fragments.
type Storage interface {
	Create(ctx context.Context, track fragment.Track, f fragment.Fragment) (fragment.Fragment, error)
	Update(ctx context.Context, track fragment.Track, id string, fields map[string]any) error
}

// Moderator enforces the local content and rate rules.
type Moderator interface {
	ValidateContent(text string) error
	CheckRate(ctx context.Context, userID string) error
	RecordPost(ctx context.Context, userID string) error
}

// SessionResolver produces the publishing identity. It is consulted at the
// moment of publish, never earlier.
type SessionResolver interface {
	Resolve(ctx context.Context) (session.Session, error)
}

// FeedSink receives the stored fragment for optimistic display.
type FeedSink interface {
	InsertHead(track fragment.Track, f fragment.Fragment)
}

// Draft is a submission in progress. A draft that fails to persist keeps
// its classification, so resubmitting unchanged text skips the classifier.
type Draft struct {
	ID      string
	Title   string
	Content string

	meta           *gemini.Metadata
	classifiedText string
}

// Result is a completed publish.
type Result struct {
	Fragment fragment.Fragment
	Route    string
}

// Orchestrator runs the publish state machine:
// Idle → Validating → Classifying → Persisting → Syncing → Done.
type Orchestrator struct {
	moderator  Moderator
	classifier Classifier
	store      Storage
	resolver   SessionResolver
	feed       FeedSink
	logger     *slog.Logger
	now        func() time.Time
	onStatus   func(Status)

	mu       sync.Mutex
	inflight map[string]bool
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithStatusFunc registers an observer for state transitions.
func WithStatusFunc(fn func(Status)) Option {
	return func(o *Orchestrator) { o.onStatus = fn }
}

// WithFeedSink wires the optimistic feed update.
func WithFeedSink(feed FeedSink) Option {
	return func(o *Orchestrator) { o.feed = feed }
}

func withClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New assembles the orchestrator.
func New(moderator Moderator, classifier Classifier, store Storage, resolver SessionResolver, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		moderator:  moderator,
		classifier: classifier,
		store:      store,
		resolver:   resolver,
		logger:     logger,
		now:        time.Now,
		inflight:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) transition(status Status) {
	if o.onStatus != nil {
		o.onStatus(status)
	}
}

func (o *Orchestrator) acquire(draftID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[draftID] {
		return false
	}
	o.inflight[draftID] = true
	return true
}

func (o *Orchestrator) release(draftID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, draftID)
}

// Publish runs the draft through the full pipeline. On failure the pipeline
// returns to Idle and the draft remains resubmittable; a persistence failure
// additionally preserves the classification for the retry.
func (o *Orchestrator) Publish(ctx context.Context, draft *Draft) (Result, error) {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if !o.acquire(draft.ID) {
		return Result{}, &ValidationError{Reason: "this fragment is already being published"}
	}
	defer o.release(draft.ID)

	requestID := uuid.NewString()
	ctx = services.WithRequestID(services.WithOperation(ctx, "publish"), requestID)
	log := o.logger.With(logging.String("request_id", requestID), logging.String("draft_id", draft.ID))

	result, err := o.publish(ctx, draft, log)
	if err != nil {
		o.transition(StatusIdle)
		return Result{}, err
	}
	o.transition(StatusDone)
	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, draft *Draft, log *slog.Logger) (Result, error) {
	o.transition(StatusValidating)

	actor, err := o.resolver.Resolve(ctx)
	if err != nil {
		return Result{}, err
	}
	if actor.Identity == session.IdentityAnonymous {
		return Result{}, ErrSignInRequired
	}

	if err := o.moderator.ValidateContent(draft.Content); err != nil {
		return Result{}, &ValidationError{Reason: err.Error(), Err: err}
	}
	if err := o.moderator.CheckRate(ctx, actor.UserID); err != nil {
		return Result{}, &ValidationError{Reason: err.Error(), Err: err}
	}

	o.transition(StatusClassifying)
	meta, err := o.classify(ctx, draft, log)
	if err != nil {
		return Result{}, err
	}
	if !meta.IsSafe {
		draft.meta = nil
		return Result{}, &SafetyRejection{Reason: meta.ErrorReason}
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" || fragment.IsPlaceholderTitle(title) {
		title = meta.SuggestedTitle
	}

	candidate := fragment.Fragment{
		Title:           title,
		Content:         draft.Content,
		Author:          actor.PenName(),
		UserID:          actor.UserID,
		Timestamp:       o.now(),
		Track:           actor.Track(),
		Genre:           meta.Genre,
		Score:           meta.Score,
		Justification:   meta.Justification,
		EmotionTag:      meta.EmotionTag,
		EmotionalWeight: meta.EmotionalWeight,
		BackgroundColor: meta.BackgroundGradient,
	}

	o.transition(StatusPersisting)
	stored, err := o.store.Create(ctx, candidate.Track, candidate)
	if err != nil {
		// Keep the verdict so the retry skips the classifier.
		return Result{}, &PersistenceFailure{Err: err}
	}
	if !stored.Persisted() {
		// A row without an identifier cannot be displayed or refined.
		return Result{}, &PersistenceFailure{Err: errors.New("storage returned no identifier")}
	}

	if err := o.moderator.RecordPost(ctx, actor.UserID); err != nil {
		log.Warn("failed to record accepted submission", logging.Error(err))
	}

	o.transition(StatusSyncing)
	if o.feed != nil {
		o.feed.InsertHead(stored.Track, stored)
	}
	if stored.Justification == "" && meta.Justification != "" {
		go o.refineAsync(stored.Track, stored.ID, meta, log)
	}

	draft.meta = nil
	draft.classifiedText = ""

	log.Info("fragment published",
		logging.String("fragment_id", stored.ID),
		logging.String("track", string(stored.Track)),
		logging.String("genre", string(stored.Genre)))

	return Result{Fragment: stored, Route: routeFor(stored.Track)}, nil
}

func (o *Orchestrator) classify(ctx context.Context, draft *Draft, log *slog.Logger) (gemini.Metadata, error) {
	if draft.meta != nil && draft.classifiedText == draft.Content {
		log.Info("reusing prior classification for unchanged draft")
		return *draft.meta, nil
	}
	meta, err := o.classifier.Analyze(ctx, draft.Content, draft.Title)
	if err != nil {
		return gemini.Metadata{}, &TransportFailure{Err: err}
	}
	draft.meta = &meta
	draft.classifiedText = draft.Content
	return meta, nil
}

// Refine patches the analysis metadata onto a stored fragment. The patch is
// idempotent; applying it twice leaves the row unchanged.
func (o *Orchestrator) Refine(ctx context.Context, track fragment.Track, id string, meta gemini.Metadata) error {
	fields := map[string]any{
		"genre":            string(meta.Genre),
		"score":            fragment.ClampScore(meta.Score),
		"justification":    meta.Justification,
		"emotion_tag":      meta.EmotionTag,
		"emotional_weight": fragment.ClampScore(meta.EmotionalWeight),
		"background_color": meta.BackgroundGradient,
	}
	return o.store.Update(ctx, track, id, fields)
}

func (o *Orchestrator) refineAsync(track fragment.Track, id string, meta gemini.Metadata, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := o.Refine(ctx, track, id, meta); err != nil {
		log.Warn("metadata refinement failed", logging.String("fragment_id", id), logging.Error(err))
	}
}

func routeFor(track fragment.Track) string {
	if track == fragment.TrackCurated {
		return "#/read"
	}
	return "#/echoes"
}
