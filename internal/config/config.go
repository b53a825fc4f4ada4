package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database location configuration.
type Paths struct {
	// DatabasePath is the SQLite catalog database file.
	DatabasePath string `toml:"database_path"`
	// BaseDir is where broadcaster-supplied channel files are dropped.
	BaseDir string `toml:"base_dir"`
	// ChannelConfigDir optionally overrides the embedded per-channel
	// field-mapping tables.
	ChannelConfigDir string `toml:"channel_config_dir"`
	// ChannelListPath is the canonical channel seed CSV.
	ChannelListPath string `toml:"channel_list_path"`
	LogDir          string `toml:"log_dir"`
}

// EPG contains configuration for the live-schedule source.
type EPG struct {
	Enabled            bool   `toml:"enabled"`
	ChannelsURL        string `toml:"channels_url"`
	ShowsURL           string `toml:"shows_url"`
	MaxChannelsRequest int    `toml:"max_channels_request"`
	RequestTimeout     int    `toml:"request_timeout"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Language   string `toml:"language"`
	MaxPages   int    `toml:"max_pages"`
	RatePerSec float64 `toml:"rate_per_sec"`
}

// OMDB contains configuration for the optional poster enrichment source.
type OMDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Trakt carries the Trakt API key. Reserved for streaming-service refresh.
type Trakt struct {
	Key string `toml:"key"`
}

// Ingest contains pipeline windows and dedup tuning.
type Ingest struct {
	// SessionValidityDays bounds how far in the past a parsed session may be.
	SessionValidityDays int `toml:"session_validity_days"`
	// SameSessionMinutes is the dedup window around an existing session.
	SameSessionMinutes int `toml:"same_session_minutes"`
	// CacheValidityDays is the TMDB cache eviction window.
	CacheValidityDays int `toml:"cache_validity_days"`
	// Timezone is the zone source files express local times in.
	Timezone string `toml:"timezone"`
}

// Highlights contains weekly highlight list sizing.
type Highlights struct {
	ScoreCounter int `toml:"score_counter"`
	NewCounter   int `toml:"new_counter"`
}

// Email contains the SMTP account used for reminders and alarm notices.
// When Account is empty, a no-op sink is used.
type Email struct {
	Domain   string `toml:"domain"`
	Account  string `toml:"account"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
}

// Application carries presentation values injected into outbound mail.
type Application struct {
	Name string `toml:"name"`
	Link string `toml:"link"`
}

// Daemon contains scheduler cadence and inbox-watch settings.
type Daemon struct {
	// DailyHour is the local hour (0-23) the daily job starts at.
	DailyHour int `toml:"daily_hour"`
	// WatchInbox enables fsnotify ingestion of files dropped in BaseDir.
	WatchInbox bool `toml:"watch_inbox"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for aerial.
//
// Sections by subsystem:
//   - Paths: catalog database, broadcaster inbox, channel seed/config files
//   - EPG: live schedule source endpoints and batching
//   - TMDB / OMDB / Trakt: external metadata providers
//   - Ingest: validity windows, dedup window, source timezone
//   - Highlights: weekly list sizing
//   - Email: SMTP account for reminder and alarm mail
//   - Application: name/link rendered into notifications
//   - Daemon: scheduler cadence and inbox watching
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	EPG         EPG         `toml:"epg"`
	TMDB        TMDB        `toml:"tmdb"`
	OMDB        OMDB        `toml:"omdb"`
	Trakt       Trakt       `toml:"trakt"`
	Ingest      Ingest      `toml:"ingest"`
	Highlights  Highlights  `toml:"highlights"`
	Email       Email       `toml:"email"`
	Application Application `toml:"application"`
	Daemon      Daemon      `toml:"daemon"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aerial/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// variables override file values. The returned config has all path fields
// expanded and normalized.
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

	cfg.applyEnv(os.Getenv)

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

	projectPath, err := filepath.Abs("aerial.toml")
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

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.BaseDir, c.Paths.LogDir}
	if dbDir := filepath.Dir(c.Paths.DatabasePath); dbDir != "" && dbDir != "." {
		dirs = append(dirs, dbDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
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
