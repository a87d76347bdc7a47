package config

import (
	"os"
	"strings"
)

// normalize expands path fields, applies environment fallbacks, and fills
// zero values with defaults so later validation can assume a complete config.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(valueOr(c.Paths.StateDir, defaultStateDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(valueOr(c.Paths.LogDir, defaultLogDir)); err != nil {
		return err
	}

	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")
	c.Supabase.AnonKey = strings.TrimSpace(c.Supabase.AnonKey)
	c.Supabase.CuratedTable = valueOr(c.Supabase.CuratedTable, defaultCuratedTable)
	c.Supabase.CommunityTable = valueOr(c.Supabase.CommunityTable, defaultCommunityTable)
	if c.Supabase.RequestTimeout <= 0 {
		c.Supabase.RequestTimeout = defaultSupabaseTimeout
	}
	if c.Supabase.AnonKey == "" {
		c.Supabase.AnonKey = strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY"))
	}
	if c.Supabase.URL == "" {
		c.Supabase.URL = strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/")
	}

	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	c.Gemini.Model = valueOr(c.Gemini.Model, defaultGeminiModel)
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}

	if c.Moderation.MinLength <= 0 {
		c.Moderation.MinLength = defaultMinLength
	}
	if c.Moderation.MaxLength <= 0 {
		c.Moderation.MaxLength = defaultMaxLength
	}
	if c.Moderation.MinIntervalSeconds <= 0 {
		c.Moderation.MinIntervalSeconds = defaultMinIntervalSeconds
	}
	if c.Moderation.DailyLimit <= 0 {
		c.Moderation.DailyLimit = defaultDailyLimit
	}
	if c.Moderation.HistoryLimit <= 0 {
		c.Moderation.HistoryLimit = defaultHistoryLimit
	}
	if c.Moderation.Blacklist == nil {
		c.Moderation.Blacklist = append([]string(nil), defaultBlacklist...)
	}
	for i, term := range c.Moderation.Blacklist {
		c.Moderation.Blacklist[i] = strings.ToLower(strings.TrimSpace(term))
	}

	for i, email := range c.Admin.Emails {
		c.Admin.Emails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	c.Logging.Format = strings.ToLower(valueOr(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(valueOr(c.Logging.Level, defaultLogLevel))

	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
