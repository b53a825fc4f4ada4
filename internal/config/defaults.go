package config

const (
	defaultDatabasePath        = "~/.local/share/aerial/catalog.db"
	defaultBaseDir             = "~/.local/share/aerial/inbox"
	defaultChannelListPath     = "data/channels.csv"
	defaultLogDir              = "~/.local/share/aerial/logs"
	defaultEPGTimeout          = 30
	defaultMaxChannelsRequest  = 90
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "pt-PT"
	defaultTMDBMaxPages        = 5
	defaultTMDBRatePerSec      = 4.0
	defaultOMDBBaseURL         = "https://www.omdbapi.com"
	defaultSessionValidityDays = 7
	defaultSameSessionMinutes  = 30
	defaultCacheValidityDays   = 30
	defaultTimezone            = "Europe/Lisbon"
	defaultScoreCounter        = 5
	defaultNewCounter          = 50
	defaultSMTPPort            = 587
	defaultDailyHour           = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabasePath:    defaultDatabasePath,
			BaseDir:         defaultBaseDir,
			ChannelListPath: defaultChannelListPath,
			LogDir:          defaultLogDir,
		},
		EPG: EPG{
			MaxChannelsRequest: defaultMaxChannelsRequest,
			RequestTimeout:     defaultEPGTimeout,
		},
		TMDB: TMDB{
			BaseURL:    defaultTMDBBaseURL,
			Language:   defaultTMDBLanguage,
			MaxPages:   defaultTMDBMaxPages,
			RatePerSec: defaultTMDBRatePerSec,
		},
		OMDB: OMDB{
			BaseURL: defaultOMDBBaseURL,
		},
		Ingest: Ingest{
			SessionValidityDays: defaultSessionValidityDays,
			SameSessionMinutes:  defaultSameSessionMinutes,
			CacheValidityDays:   defaultCacheValidityDays,
			Timezone:            defaultTimezone,
		},
		Highlights: Highlights{
			ScoreCounter: defaultScoreCounter,
			NewCounter:   defaultNewCounter,
		},
		Email: Email{
			Port: defaultSMTPPort,
		},
		Application: Application{
			Name: "aerial",
		},
		Daemon: Daemon{
			DailyHour:  defaultDailyHour,
			WatchInbox: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
