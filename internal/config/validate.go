package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable. Failures here are fatal:
// the process exits rather than running a pipeline with broken settings.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateEPG(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/aerial/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_KEY env var or edit %s (create with 'aerial config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateEPG() error {
	if !c.EPG.Enabled {
		return nil
	}
	if c.EPG.ChannelsURL == "" {
		return errors.New("epg.channels_url is required when the EPG source is enabled")
	}
	if c.EPG.ShowsURL == "" {
		return errors.New("epg.shows_url is required when the EPG source is enabled")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if _, err := time.LoadLocation(c.Ingest.Timezone); err != nil {
		return fmt.Errorf("ingest.timezone: %w", err)
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.DailyHour < 0 || c.Daemon.DailyHour > 23 {
		return errors.New("daemon.daily_hour must be between 0 and 23")
	}
	return nil
}
