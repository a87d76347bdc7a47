package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Supabase contains connection settings for the managed backend.
type Supabase struct {
	URL            string `toml:"url"`
	AnonKey        string `toml:"anon_key"`
	CuratedTable   string `toml:"curated_table"`
	CommunityTable string `toml:"community_table"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Gemini contains settings for the generative classification endpoint.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Moderation contains the advisory client-side submission limits. These are
// a UX nicety, not a security boundary: any client can bypass local state,
// and the authoritative safety decision belongs to the classifier.
type Moderation struct {
	MinLength          int      `toml:"min_length"`
	MaxLength          int      `toml:"max_length"`
	MinIntervalSeconds int      `toml:"min_interval_seconds"`
	DailyLimit         int      `toml:"daily_limit"`
	HistoryLimit       int      `toml:"history_limit"`
	Blacklist          []string `toml:"blacklist"`
}

// Admin contains the administrator allow-list. Sessions whose email is a
// member publish to the curated track.
type Admin struct {
	Emails []string `toml:"emails"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Echo Pages.
//
// Configuration sections by subsystem:
//   - Paths: local state and log directories
//   - Supabase: backend URL, anon key, and table names
//   - Gemini: classification model and API key
//   - Moderation: advisory submission limits and local blacklist
//   - Admin: curated-track email allow-list
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Supabase   Supabase   `toml:"supabase"`
	Gemini     Gemini     `toml:"gemini"`
	Moderation Moderation `toml:"moderation"`
	Admin      Admin      `toml:"admin"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/echopages/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("echopages.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SupabaseTimeout returns the bounded request timeout for storage calls.
func (c *Config) SupabaseTimeout() time.Duration {
	if c.Supabase.RequestTimeout <= 0 {
		return time.Duration(defaultSupabaseTimeout) * time.Second
	}
	return time.Duration(c.Supabase.RequestTimeout) * time.Second
}

// GeminiTimeout returns the bounded timeout for classification calls. The
// classifier is the slowest and most failure-prone dependency, so it always
// runs under a deadline.
func (c *Config) GeminiTimeout() time.Duration {
	if c.Gemini.TimeoutSeconds <= 0 {
		return time.Duration(defaultGeminiTimeoutSeconds) * time.Second
	}
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// IsAdminEmail reports whether the email belongs to the administrator
// allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, candidate := range c.Admin.Emails {
		if strings.ToLower(strings.TrimSpace(candidate)) == email {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
