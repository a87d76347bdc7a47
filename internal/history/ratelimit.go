package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LastPostAt returns the time of the user's last accepted submission. The
// second return value is false when the user has never posted.
func (s *Store) LastPostAt(ctx context.Context, userID string) (time.Time, bool, error) {
	ctx = ensureContext(ctx)
	var unix int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_post_at FROM rate_limits WHERE user_id = ?", userID,
	).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last post: %w", err)
	}
	return time.Unix(unix, 0), true, nil
}

// CountSince returns how many accepted submissions the user has recorded at
// or after the given instant.
func (s *Store) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM submissions WHERE user_id = ? AND posted_at >= ?",
		userID, since.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// RecordPost stores an accepted submission: it updates the last-post marker
// and appends to the rolling history, pruning anything beyond the retained
// cap so local state stays bounded.
func (s *Store) RecordPost(ctx context.Context, userID string, at time.Time, retain int) error {
	ctx = ensureContext(ctx)
	if retain <= 0 {
		retain = 20
	}

	err := s.execWithRetry(ctx,
		`INSERT INTO rate_limits (user_id, last_post_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET last_post_at = excluded.last_post_at`,
		userID, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record last post: %w", err)
	}

	if err := s.execWithRetry(ctx,
		"INSERT INTO submissions (user_id, posted_at) VALUES (?, ?)",
		userID, at.Unix(),
	); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}

	if err := s.execWithRetry(ctx,
		`DELETE FROM submissions WHERE user_id = ? AND rowid NOT IN (
		    SELECT rowid FROM submissions WHERE user_id = ?
		    ORDER BY posted_at DESC, rowid DESC LIMIT ?
		 )`,
		userID, userID, retain,
	); err != nil {
		return fmt.Errorf("prune submission history: %w", err)
	}
	return nil
}
