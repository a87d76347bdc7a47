package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"echopages/internal/fragment"
	"echopages/internal/logging"
)

// Lister fetches a track's fragments, newest first.
type Lister interface {
	List(ctx context.Context, track fragment.Track) ([]fragment.Fragment, error)
}

// Listener drives a realtime subscription until it fails or the context
// ends.
type Listener interface {
	Listen(ctx context.Context) error
	Close() error
}

// Subscriber opens a realtime subscription on the given tables.
type Subscriber interface {
	Subscribe(ctx context.Context, tables []string, onChange func(table string)) (Listener, error)
}

const invalidateTimeout = 10 * time.Second

// Synchronizer keeps both fragment collections in memory, refreshed from
// storage and invalidated by realtime change events. Collections stay
// independently fresh: one track failing to refresh never blanks the other.
type Synchronizer struct {
	store          Lister
	curatedTable   string
	communityTable string
	logger         *slog.Logger

	mu          sync.RWMutex
	collections map[fragment.Track][]fragment.Fragment
}

// New builds a synchronizer over the given storage and table names.
func New(store Lister, curatedTable, communityTable string, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synchronizer{
		store:          store,
		curatedTable:   curatedTable,
		communityTable: communityTable,
		logger:         logger,
		collections:    make(map[fragment.Track][]fragment.Fragment),
	}
}

// Refresh fetches both collections concurrently. A single track failing is
// a partial success: the other track still updates and the failure is
// returned for the caller to report.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	tracks := []fragment.Track{fragment.TrackCurated, fragment.TrackCommunity}
	errs := make([]error, len(tracks))

	var wg sync.WaitGroup
	for i, track := range tracks {
		wg.Add(1)
		go func(i int, track fragment.Track) {
			defer wg.Done()
			errs[i] = s.refreshTrack(ctx, track)
		}(i, track)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *Synchronizer) refreshTrack(ctx context.Context, track fragment.Track) error {
	fresh, err := s.store.List(ctx, track)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", track, err)
	}
	s.mu.Lock()
	s.collections[track] = fresh
	s.mu.Unlock()
	return nil
}

// Collection returns a copy of a track's fragments, newest first.
func (s *Synchronizer) Collection(track fragment.Track) []fragment.Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.collections[track]
	out := make([]fragment.Fragment, len(stored))
	copy(out, stored)
	return out
}

// InsertHead places a freshly published fragment at the top of its
// collection without waiting for the next refresh. An existing entry with
// the same id is replaced rather than duplicated.
func (s *Synchronizer) InsertHead(track fragment.Track, f fragment.Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.collections[track]
	updated := make([]fragment.Fragment, 0, len(existing)+1)
	updated = append(updated, f)
	for _, candidate := range existing {
		if candidate.ID == f.ID {
			continue
		}
		updated = append(updated, candidate)
	}
	s.collections[track] = updated
}

// Lookup finds a fragment by id across both collections.
func (s *Synchronizer) Lookup(id string) (fragment.Fragment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, track := range []fragment.Track{fragment.TrackCurated, fragment.TrackCommunity} {
		for _, f := range s.collections[track] {
			if f.ID == id {
				return f, true
			}
		}
	}
	return fragment.Fragment{}, false
}

func (s *Synchronizer) trackFor(table string) (fragment.Track, bool) {
	switch table {
	case s.curatedTable:
		return fragment.TrackCurated, true
	case s.communityTable:
		return fragment.TrackCommunity, true
	default:
		return "", false
	}
}

func (s *Synchronizer) invalidate(table string) {
	track, ok := s.trackFor(table)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()
	if err := s.refreshTrack(ctx, track); err != nil {
		s.logger.Warn("invalidate refresh failed", logging.String("table", table), logging.Error(err))
	}
}

// Watch ties the realtime subscription to collection refreshes. Every
// change event triggers a refetch of the affected track. Dropped
// connections are retried with capped exponential backoff until the context
// ends.
func (s *Synchronizer) Watch(ctx context.Context, sub Subscriber) error {
	tables := []string{s.curatedTable, s.communityTable}
	backoff := time.Second

	for {
		listener, err := sub.Subscribe(ctx, tables, s.invalidate)
		if err != nil {
			s.logger.Warn("realtime subscribe failed", logging.Error(err))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = time.Second

		err = listener.Listen(ctx)
		_ = listener.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("realtime connection lost, reconnecting", logging.Error(err))
		if !sleepCtx(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		next = 30 * time.Second
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
