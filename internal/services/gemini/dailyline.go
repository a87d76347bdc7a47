package gemini

import (
	"context"

	"echopages/internal/logging"
)

const (
	dailyLineMaxAge = 24 * 60 * 60 // seconds
	// dailyLineFallback is shown when no cache exists and the model is
	// unreachable.
	dailyLineFallback = "Silence is the only thing we truly own."
)

// DailyLine returns the inspirational line for the home view. A cached line
// younger than 24 hours is served without a network call; on fetch failure
// the stale cache (or a fixed line) is returned instead of an error. This
// path is informational and never blocks anything.
func (c *Client) DailyLine(ctx context.Context) string {
	var cached string
	if c.store != nil {
		line, fetchedAt, ok, err := c.store.CachedDailyLine(ctx)
		if err != nil {
			c.logger.Warn("daily line cache read failed", logging.Error(err))
		} else if ok {
			cached = line
			if c.now().Sub(fetchedAt).Seconds() < dailyLineMaxAge {
				return line
			}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	line, err := c.gen.GenerateText(fetchCtx, dailyLinePrompt)
	if err != nil {
		c.logger.Warn("daily line fetch failed", logging.Error(err))
		if cached != "" {
			return cached
		}
		return dailyLineFallback
	}

	if c.store != nil {
		if err := c.store.SaveDailyLine(ctx, line, c.now()); err != nil {
			c.logger.Warn("daily line cache write failed", logging.Error(err))
		}
	}
	return line
}
