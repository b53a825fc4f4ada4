package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeIngest()
	c.normalizeEmail()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return err
	}
	if c.Paths.BaseDir, err = expandPath(c.Paths.BaseDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.ChannelConfigDir) != "" {
		if c.Paths.ChannelConfigDir, err = expandPath(c.Paths.ChannelConfigDir); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Paths.ChannelListPath) != "" {
		if c.Paths.ChannelListPath, err = expandPath(c.Paths.ChannelListPath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) normalizeProviders() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if c.TMDB.MaxPages <= 0 {
		c.TMDB.MaxPages = defaultTMDBMaxPages
	}
	if c.TMDB.RatePerSec <= 0 {
		c.TMDB.RatePerSec = defaultTMDBRatePerSec
	}
	c.OMDB.APIKey = strings.TrimSpace(c.OMDB.APIKey)
	c.OMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.OMDB.BaseURL), "/")
	if c.OMDB.BaseURL == "" {
		c.OMDB.BaseURL = defaultOMDBBaseURL
	}
	c.EPG.ChannelsURL = strings.TrimSpace(c.EPG.ChannelsURL)
	c.EPG.ShowsURL = strings.TrimSpace(c.EPG.ShowsURL)
	if c.EPG.MaxChannelsRequest <= 0 {
		c.EPG.MaxChannelsRequest = defaultMaxChannelsRequest
	}
	if c.EPG.RequestTimeout <= 0 {
		c.EPG.RequestTimeout = defaultEPGTimeout
	}
}

func (c *Config) normalizeIngest() {
	if c.Ingest.SessionValidityDays <= 0 {
		c.Ingest.SessionValidityDays = defaultSessionValidityDays
	}
	if c.Ingest.SameSessionMinutes <= 0 {
		c.Ingest.SameSessionMinutes = defaultSameSessionMinutes
	}
	if c.Ingest.CacheValidityDays <= 0 {
		c.Ingest.CacheValidityDays = defaultCacheValidityDays
	}
	if strings.TrimSpace(c.Ingest.Timezone) == "" {
		c.Ingest.Timezone = defaultTimezone
	}
	if c.Highlights.ScoreCounter <= 0 {
		c.Highlights.ScoreCounter = defaultScoreCounter
	}
	if c.Highlights.NewCounter <= 0 {
		c.Highlights.NewCounter = defaultNewCounter
	}
}

func (c *Config) normalizeEmail() {
	c.Email.Domain = strings.TrimSpace(c.Email.Domain)
	c.Email.Account = strings.TrimSpace(c.Email.Account)
	c.Email.User = strings.TrimSpace(c.Email.User)
	if c.Email.Host == "" && c.Email.Domain != "" {
		c.Email.Host = fmt.Sprintf("smtp.%s", c.Email.Domain)
	}
	if c.Email.Port <= 0 {
		c.Email.Port = defaultSMTPPort
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
