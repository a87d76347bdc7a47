package config

const (
	defaultStateDir             = "~/.local/share/echopages"
	defaultLogDir               = "~/.local/share/echopages/logs"
	defaultCuratedTable         = "admin_poems"
	defaultCommunityTable       = "echoes"
	defaultSupabaseTimeout      = 15
	defaultGeminiModel          = "gemini-3-flash-preview"
	defaultGeminiTimeoutSeconds = 20
	defaultMinLength            = 10
	defaultMaxLength            = 2000
	defaultMinIntervalSeconds   = 60
	defaultDailyLimit           = 10
	defaultHistoryLimit         = 20
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// defaultBlacklist is the short local pre-filter. The authoritative safety
// decision is delegated to the classifier.
var defaultBlacklist = []string{"nazi", "hitler", "porn", "nsfw", "f*ck", "sh*t"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Supabase: Supabase{
			CuratedTable:   defaultCuratedTable,
			CommunityTable: defaultCommunityTable,
			RequestTimeout: defaultSupabaseTimeout,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Moderation: Moderation{
			MinLength:          defaultMinLength,
			MaxLength:          defaultMaxLength,
			MinIntervalSeconds: defaultMinIntervalSeconds,
			DailyLimit:         defaultDailyLimit,
			HistoryLimit:       defaultHistoryLimit,
			Blacklist:          append([]string(nil), defaultBlacklist...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
