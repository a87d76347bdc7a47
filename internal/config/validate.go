package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for internally inconsistent values.
// Missing credentials are not an error here: commands that need them fail
// with a targeted message instead of blocking unrelated commands.
func (c *Config) Validate() error {
	var problems []string

	if c.Moderation.MinLength >= c.Moderation.MaxLength {
		problems = append(problems, fmt.Sprintf(
			"moderation min_length (%d) must be below max_length (%d)",
			c.Moderation.MinLength, c.Moderation.MaxLength))
	}
	if c.Supabase.CuratedTable == c.Supabase.CommunityTable {
		problems = append(problems, "supabase curated_table and community_table must differ")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging format %q unsupported (console or json)", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
