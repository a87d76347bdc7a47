package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedDailyLine returns the stored inspirational line and when it was
// fetched. The second return value is false when no line is cached.
func (s *Store) CachedDailyLine(ctx context.Context) (string, time.Time, bool, error) {
	ctx = ensureContext(ctx)
	var (
		line string
		unix int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT line, fetched_at FROM daily_line WHERE id = 1").Scan(&line, &unix)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("read daily line: %w", err)
	}
	return line, time.Unix(unix, 0), true, nil
}

// SaveDailyLine replaces the cached inspirational line.
func (s *Store) SaveDailyLine(ctx context.Context, line string, fetchedAt time.Time) error {
	ctx = ensureContext(ctx)
	err := s.execWithRetry(ctx,
		`INSERT INTO daily_line (id, line, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET line = excluded.line, fetched_at = excluded.fetched_at`,
		line, fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save daily line: %w", err)
	}
	return nil
}
