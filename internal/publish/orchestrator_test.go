package publish

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"echopages/internal/fragment"
	"echopages/internal/services/gemini"
	"echopages/internal/session"
)

type fakeModerator struct {
	validateErr error
	rateErr     error
	recorded    []string
}

func (f *fakeModerator) ValidateContent(string) error { return f.validateErr }

func (f *fakeModerator) CheckRate(context.Context, string) error { return f.rateErr }

func (f *fakeModerator) RecordPost(_ context.Context, userID string) error {
	f.recorded = append(f.recorded, userID)
	return nil
}

type fakeClassifier struct {
	meta  gemini.Metadata
	err   error
	calls int
}

func (f *fakeClassifier) Analyze(context.Context, string, string) (gemini.Metadata, error) {
	f.calls++
	if f.err != nil {
		return gemini.Metadata{}, f.err
	}
	return f.meta, nil
}

type fakeStore struct {
	created   []fragment.Fragment
	createErr error
	updates   []map[string]any
	nextID    string
	blankID   bool
}

func (f *fakeStore) Create(_ context.Context, track fragment.Track, frag fragment.Fragment) (fragment.Fragment, error) {
	if f.createErr != nil {
		return fragment.Fragment{}, f.createErr
	}
	frag.Track = track
	frag.ID = f.nextID
	if frag.ID == "" && !f.blankID {
		frag.ID = "101"
	}
	f.created = append(f.created, frag)
	return frag, nil
}

func (f *fakeStore) Update(_ context.Context, _ fragment.Track, _ string, fields map[string]any) error {
	f.updates = append(f.updates, fields)
	return nil
}

type fakeResolver struct {
	sess session.Session
}

func (f *fakeResolver) Resolve(context.Context) (session.Session, error) { return f.sess, nil }

type fakeFeed struct {
	heads []fragment.Fragment
}

func (f *fakeFeed) InsertHead(_ fragment.Track, frag fragment.Fragment) {
	f.heads = append([]fragment.Fragment{frag}, f.heads...)
}

func memberSession() session.Session {
	return session.Session{Identity: session.IdentityMember, UserID: "u-2", Email: "reader@example.com"}
}

func adminSession() session.Session {
	return session.Session{Identity: session.IdentityAdmin, UserID: "u-1", Email: "curator@example.com", DisplayName: "The Curator"}
}

func safeMeta() gemini.Metadata {
	return gemini.Metadata{
		IsSafe:             true,
		Genre:              fragment.GenreEthereal,
		Score:              82,
		Justification:      "Weightless imagery.",
		SuggestedTitle:     "Ceiling of Stars",
		EmotionTag:         "Wistful",
		EmotionalWeight:    74,
		BackgroundGradient: fragment.DefaultGradient,
	}
}

func TestPublishCommunityFragment(t *testing.T) {
	moderator := &fakeModerator{}
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{}
	feed := &fakeFeed{}
	var statuses []Status
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil,
		WithFeedSink(feed), WithStatusFunc(func(s Status) { statuses = append(statuses, s) }),
		withClock(func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }))

	draft := &Draft{Content: "The stars are just holes in the ceiling of a house we forgot we built."}
	result, err := o.Publish(context.Background(), draft)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Fragment.Title != "Ceiling of Stars" {
		t.Fatalf("expected suggested title, got %q", result.Fragment.Title)
	}
	if result.Fragment.Track != fragment.TrackCommunity || result.Route != "#/echoes" {
		t.Fatalf("expected community routing, got %q / %q", result.Fragment.Track, result.Route)
	}
	if len(feed.heads) != 1 || feed.heads[0].ID != result.Fragment.ID {
		t.Fatalf("expected optimistic head insert, got %+v", feed.heads)
	}
	if len(moderator.recorded) != 1 || moderator.recorded[0] != "u-2" {
		t.Fatalf("expected one recorded post, got %v", moderator.recorded)
	}
	want := []Status{StatusValidating, StatusClassifying, StatusPersisting, StatusSyncing, StatusDone}
	if !reflect.DeepEqual(statuses, want) {
		t.Fatalf("unexpected transitions: %v", statuses)
	}
}

func TestPublishAdminGoesToCuratedTrack(t *testing.T) {
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{}
	o := New(&fakeModerator{}, classifier, store, &fakeResolver{sess: adminSession()}, nil)

	result, err := o.Publish(context.Background(), &Draft{Content: "The stars are just holes in the ceiling of a house we forgot we built."})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Fragment.Track != fragment.TrackCurated || result.Route != "#/read" {
		t.Fatalf("expected curated routing, got %q / %q", result.Fragment.Track, result.Route)
	}
	if result.Fragment.Author != "The Curator" {
		t.Fatalf("expected display name author, got %q", result.Fragment.Author)
	}
}

func TestPublishValidationFailureSkipsNetwork(t *testing.T) {
	moderator := &fakeModerator{validateErr: errors.New("Fragment is too brief to echo.")}
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{}
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil)

	_, err := o.Publish(context.Background(), &Draft{Content: "hi!!!"})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if classifier.calls != 0 {
		t.Fatalf("classifier should not run, got %d calls", classifier.calls)
	}
	if len(store.created) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestPublishTransportFailureLeavesRateLimitUntouched(t *testing.T) {
	moderator := &fakeModerator{}
	classifier := &fakeClassifier{err: errors.New("connection reset")}
	store := &fakeStore{}
	var statuses []Status
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil,
		WithStatusFunc(func(s Status) { statuses = append(statuses, s) }))

	_, err := o.Publish(context.Background(), &Draft{Content: "a perfectly valid fragment of verse"})
	var transport *TransportFailure
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if len(store.created) != 0 || len(moderator.recorded) != 0 {
		t.Fatal("no fragment and no rate-limit record on transport failure")
	}
	if statuses[len(statuses)-1] != StatusIdle {
		t.Fatalf("expected exit to idle, got %v", statuses)
	}
}

func TestPublishUnsafeVerdictNeverPersists(t *testing.T) {
	moderator := &fakeModerator{}
	meta := safeMeta()
	meta.IsSafe = false
	meta.ErrorReason = "Contains a credible threat."
	classifier := &fakeClassifier{meta: meta}
	store := &fakeStore{}
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil)

	_, err := o.Publish(context.Background(), &Draft{Content: "a perfectly valid fragment of verse"})
	var rejection *SafetyRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected safety rejection, got %v", err)
	}
	if rejection.Reason != "Contains a credible threat." {
		t.Fatalf("expected classifier rationale, got %q", rejection.Reason)
	}
	if len(store.created) != 0 || len(moderator.recorded) != 0 {
		t.Fatal("unsafe content must not reach storage or the rate limiter")
	}
}

func TestPublishRetryAfterPersistFailureSkipsClassifier(t *testing.T) {
	moderator := &fakeModerator{}
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{createErr: errors.New("backend returned 503")}
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil)

	draft := &Draft{Content: "a perfectly valid fragment of verse"}
	_, err := o.Publish(context.Background(), draft)
	var persistence *PersistenceFailure
	if !errors.As(err, &persistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if len(moderator.recorded) != 0 {
		t.Fatal("rate limit must not be consumed on a failed persist")
	}

	store.createErr = nil
	result, err := o.Publish(context.Background(), draft)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if classifier.calls != 1 {
		t.Fatalf("retry of unchanged text should reuse the verdict, got %d calls", classifier.calls)
	}
	if result.Fragment.Genre != fragment.GenreEthereal {
		t.Fatalf("unexpected fragment: %+v", result.Fragment)
	}
	if len(moderator.recorded) != 1 {
		t.Fatalf("expected exactly one recorded post, got %v", moderator.recorded)
	}
}

func TestPublishTreatsIdentifierlessRowAsPersistFailure(t *testing.T) {
	moderator := &fakeModerator{}
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{blankID: true}
	feed := &fakeFeed{}
	var statuses []Status
	o := New(moderator, classifier, store, &fakeResolver{sess: memberSession()}, nil,
		WithFeedSink(feed), WithStatusFunc(func(s Status) { statuses = append(statuses, s) }))

	draft := &Draft{Content: "a perfectly valid fragment of verse"}
	_, err := o.Publish(context.Background(), draft)
	var persistence *PersistenceFailure
	if !errors.As(err, &persistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if len(moderator.recorded) != 0 {
		t.Fatalf("rate limit must not be consumed for an id-less row, got %v", moderator.recorded)
	}
	if len(feed.heads) != 0 {
		t.Fatalf("an id-less fragment must not reach the feed, got %+v", feed.heads)
	}
	if statuses[len(statuses)-1] != StatusIdle {
		t.Fatalf("expected exit to idle, got %v", statuses)
	}

	// The verdict survives, so the retry skips the classifier.
	store.blankID = false
	result, err := o.Publish(context.Background(), draft)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if classifier.calls != 1 {
		t.Fatalf("retry of unchanged text should reuse the verdict, got %d calls", classifier.calls)
	}
	if result.Fragment.ID == "" {
		t.Fatalf("retry should persist with an identifier, got %+v", result.Fragment)
	}
}

func TestPublishRetryWithEditedTextReclassifies(t *testing.T) {
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{createErr: errors.New("backend returned 503")}
	o := New(&fakeModerator{}, classifier, store, &fakeResolver{sess: memberSession()}, nil)

	draft := &Draft{Content: "first version of the fragment text"}
	if _, err := o.Publish(context.Background(), draft); err == nil {
		t.Fatal("expected persistence failure")
	}

	store.createErr = nil
	draft.Content = "second, heavily edited version of the fragment"
	if _, err := o.Publish(context.Background(), draft); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if classifier.calls != 2 {
		t.Fatalf("edited text must be reclassified, got %d calls", classifier.calls)
	}
}

func TestPublishRateLimitRejection(t *testing.T) {
	moderator := &fakeModerator{rateErr: errors.New("Frequency flooding detected. Re-tune in 55s.")}
	classifier := &fakeClassifier{meta: safeMeta()}
	o := New(moderator, classifier, &fakeStore{}, &fakeResolver{sess: memberSession()}, nil)

	_, err := o.Publish(context.Background(), &Draft{Content: "a perfectly valid fragment of verse"})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if classifier.calls != 0 {
		t.Fatal("rate rejection must short-circuit before classification")
	}
}

func TestPublishRequiresSession(t *testing.T) {
	o := New(&fakeModerator{}, &fakeClassifier{meta: safeMeta()}, &fakeStore{},
		&fakeResolver{sess: session.Session{Identity: session.IdentityAnonymous}}, nil)

	_, err := o.Publish(context.Background(), &Draft{Content: "a perfectly valid fragment of verse"})
	if !errors.Is(err, ErrSignInRequired) {
		t.Fatalf("expected sign-in requirement, got %v", err)
	}
}

func TestPublishKeepsUserTitle(t *testing.T) {
	classifier := &fakeClassifier{meta: safeMeta()}
	store := &fakeStore{}
	o := New(&fakeModerator{}, classifier, store, &fakeResolver{sess: memberSession()}, nil)

	result, err := o.Publish(context.Background(), &Draft{Title: "My Own Title", Content: "a perfectly valid fragment of verse"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Fragment.Title != "My Own Title" {
		t.Fatalf("user title must win over suggestion, got %q", result.Fragment.Title)
	}
}

func TestPublishInflightGuard(t *testing.T) {
	o := New(&fakeModerator{}, &fakeClassifier{meta: safeMeta()}, &fakeStore{}, &fakeResolver{sess: memberSession()}, nil)
	if !o.acquire("d-1") {
		t.Fatal("first acquire should succeed")
	}
	if o.acquire("d-1") {
		t.Fatal("second acquire of the same draft must fail")
	}
	o.release("d-1")
	if !o.acquire("d-1") {
		t.Fatal("acquire after release should succeed")
	}
}

func TestRefineIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	o := New(&fakeModerator{}, &fakeClassifier{}, store, &fakeResolver{sess: memberSession()}, nil)

	meta := safeMeta()
	if err := o.Refine(context.Background(), fragment.TrackCommunity, "7", meta); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if err := o.Refine(context.Background(), fragment.TrackCommunity, "7", meta); err != nil {
		t.Fatalf("Refine twice: %v", err)
	}
	if len(store.updates) != 2 || !reflect.DeepEqual(store.updates[0], store.updates[1]) {
		t.Fatalf("expected identical idempotent patches, got %v", store.updates)
	}
}
