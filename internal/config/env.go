package config

import (
	"strconv"
	"strings"
)

// applyEnv overlays environment variables onto file-sourced values. The
// variable names match the deployment surface the service has always used,
// so container setups keep working without a TOML file.
func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(name string, target *string) {
		if value := strings.TrimSpace(getenv(name)); value != "" {
			*target = value
		}
	}
	setInt := func(name string, target *int) {
		if value := strings.TrimSpace(getenv(name)); value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				*target = parsed
			}
		}
	}

	setString("DATABASE_URL", &c.Paths.DatabasePath)
	setString("BASE_DIR", &c.Paths.BaseDir)

	if value := strings.TrimSpace(getenv("EPG")); value != "" {
		c.EPG.Enabled = value != "0" && !strings.EqualFold(value, "false")
	}
	setString("CHANNELS_URL", &c.EPG.ChannelsURL)
	setString("SHOWS_URL", &c.EPG.ShowsURL)
	setInt("MAX_CHANNELS_REQUEST", &c.EPG.MaxChannelsRequest)

	setString("TMDB_KEY", &c.TMDB.APIKey)
	setInt("TMDB_MAX_NB_PAGES", &c.TMDB.MaxPages)
	setString("OMDB_KEY", &c.OMDB.APIKey)
	setString("TRAKT_KEY", &c.Trakt.Key)

	setInt("SHOW_SESSIONS_VALIDITY_DAYS", &c.Ingest.SessionValidityDays)
	setInt("SAME_SESSION_MINUTES", &c.Ingest.SameSessionMinutes)
	setInt("CACHE_VALIDITY", &c.Ingest.CacheValidityDays)

	setInt("SCORE_HIGHLIGHT_COUNTER", &c.Highlights.ScoreCounter)
	setInt("NEW_HIGHLIGHT_COUNTER", &c.Highlights.NewCounter)

	setString("EMAIL_DOMAIN", &c.Email.Domain)
	setString("EMAIL_ACCOUNT", &c.Email.Account)
	setString("EMAIL_USER", &c.Email.User)
	setString("EMAIL_PASSWORD", &c.Email.Password)

	setString("APPLICATION_NAME", &c.Application.Name)
	setString("APPLICATION_LINK", &c.Application.Link)
}
