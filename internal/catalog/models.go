package catalog

import "time"

// Channel is a broadcast channel sessions are scheduled on. Channels are
// seeded from the static channel list and refreshed from the EPG source;
// they are never auto-deleted while sessions reference them.
type Channel struct {
	ID        int64
	Acronym   string
	Name      string
	Adult     bool
	SearchEPG bool
}

// ShowData is the canonical work record a session points at. A row with
// every metadata field nil except SearchTitle and LocalizedTitle is a
// placeholder created when a parser only had a localized title to offer.
type ShowData struct {
	ID                int64
	SearchTitle       string
	TMDBID            *int64
	IsMovie           *bool
	OriginalTitle     *string
	LocalizedTitle    *string
	Synopsis          *string
	Year              *int
	Genre             *string
	Subgenre          *string
	AudioLanguages    *string
	Countries         *string
	AgeClassification *string
	DurationMinutes   *int
	Cast              *string
	Director          *string
	Creators          *string
	NumberSeasons     *int
	VoteAverage       *float64
	VoteCount         *int64
	Popularity        *float64
	PremiereDate      *time.Time
	SeasonPremiere    *time.Time
	PosterURL         *string
	UpdatedAt         time.Time
}

// IsPlaceholder reports whether the row carries no identifying metadata
// beyond its titles.
func (s *ShowData) IsPlaceholder() bool {
	return s.OriginalTitle == nil && s.Year == nil && s.TMDBID == nil
}

// ShowSession is one scheduled airing. A session is a movie airing iff
// Season and Episode are both nil.
type ShowSession struct {
	ID              int64
	ShowDataID      int64
	ChannelID       int64
	Season          *int
	Episode         *int
	DateTime        time.Time
	AudioLanguage   *string
	ExtendedCut     bool
	UpdateTimestamp time.Time
}

// Correction is a per-channel override mapping a channel's local title and
// metadata to a canonical ShowData. Nil fields act as wildcards when the
// matcher probes for one.
type Correction struct {
	ID             int64
	ChannelID      int64
	ShowDataID     int64
	IsMovie        *bool
	OriginalTitle  *string
	LocalizedTitle *string
	Year           *int
	Directors      *string
	Creators       *string
	Subgenre       *string
}

// StreamingService is a subscription catalog shows can be available on.
type StreamingService struct {
	ID   int64
	Name string
}

// StreamingServiceShow records a show's availability on a service over a
// season range. Prev* snapshots hold the previous range for change
// detection between refreshes.
type StreamingServiceShow struct {
	ID                   int64
	ShowDataID           int64
	StreamingServiceID   int64
	FirstSeasonAvailable *int
	LastSeasonAvailable  *int
	PrevFirstSeason      *int
	PrevLastSeason       *int
	UpdateTimestamp      time.Time
}

// CacheEntry is a stored provider response body addressed by its call key.
type CacheEntry struct {
	Key        string
	Result     []byte
	InsertedAt time.Time
}

// User carries the minimum identity the pipeline needs to notify someone.
type User struct {
	ID       int64
	Email    string
	Language string
}

// Reminder asks for a notification some minutes before a session airs.
// (SessionID, UserID) is unique; deleting the session cascades.
type Reminder struct {
	ID                  int64
	SessionID           int64
	UserID              int64
	AnticipationMinutes int
}

// ReminderDue pairs a reminder with its session and user for dispatch.
type ReminderDue struct {
	Reminder Reminder
	Session  ShowSession
	User     User
}

// AlarmType distinguishes alarms over the whole catalog from alarms over
// new listings only.
type AlarmType string

const (
	AlarmTypeDB       AlarmType = "DB"
	AlarmTypeListings AlarmType = "LISTINGS"
)

// Alarm is a standing query over future ingests.
type Alarm struct {
	ID       int64
	UserID   int64
	ShowName string
	TMDBID   *int64
	IsMovie  *bool
	Type     AlarmType
	Season   *int
	Episode  *int
}

// LastUpdate is the single-row watermark for incremental scans.
type LastUpdate struct {
	EPGDate           *time.Time
	AlarmsProcessedAt *time.Time
}

// HighlightKey names a weekly highlight list.
type HighlightKey string

const (
	HighlightScore HighlightKey = "SCORE"
	HighlightNew   HighlightKey = "NEW"
)

// Highlight is a precomputed weekly featured-show list, idempotent per
// (Key, Year, Week). Seasons aligns with ShowIDs; a nil entry means the
// show is a movie.
type Highlight struct {
	ID      int64
	Key     HighlightKey
	Year    int
	Week    int
	ShowIDs []int64
	Seasons []*int
}
