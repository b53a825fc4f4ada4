// Package highlights precomputes the weekly featured-show lists: SCORE
// ranks the week's airings by TMDB vote average, NEW previews premieres
// airing in the following week. Lists are stored idempotently per
// (key, year, week).
package highlights

import (
	"context"
	"log/slog"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/logging"
	"aerial/internal/tmdb"
)

const (
	// DefaultScoreCounter caps the SCORE list.
	DefaultScoreCounter = 5
	// DefaultNewCounter caps the NEW list.
	DefaultNewCounter = 50
	// minVoteCount is the floor below which a vote average is noise.
	minVoteCount = 25
)

// Calculator builds the weekly lists for the current and next ISO week.
type Calculator struct {
	store         *catalog.Store
	search        tmdb.Searcher
	scoreCounter  int
	newCounter    int
	cacheValidity time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithCounters overrides the list caps.
func WithCounters(score, newCounter int) Option {
	return func(c *Calculator) {
		if score > 0 {
			c.scoreCounter = score
		}
		if newCounter > 0 {
			c.newCounter = newCounter
		}
	}
}

// WithVoteRefresh enables refreshing stale TMDB vote fields through the
// given searcher before ranking.
func WithVoteRefresh(search tmdb.Searcher, validity time.Duration) Option {
	return func(c *Calculator) {
		c.search = search
		c.cacheValidity = validity
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "highlights")
		}
	}
}

// New builds a Calculator.
func New(store *catalog.Store, opts ...Option) *Calculator {
	c := &Calculator{
		store:        store,
		scoreCounter: DefaultScoreCounter,
		newCounter:   DefaultNewCounter,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStore returns a copy bound to another store.
func (c *Calculator) WithStore(store *catalog.Store) *Calculator {
	clone := *c
	clone.store = store
	return &clone
}

// Run computes and stores the lists for the current ISO week and the next.
func (c *Calculator) Run(ctx context.Context) error {
	if err := c.refreshVotes(ctx); err != nil {
		return err
	}

	now := c.now().UTC()
	for offset := 0; offset < 2; offset++ {
		weekStart := isoWeekStart(now).AddDate(0, 0, 7*offset)
		year, week := weekStart.ISOWeek()

		if err := c.computeScore(ctx, year, week, weekStart); err != nil {
			return err
		}
		if err := c.computeNew(ctx, year, week, weekStart); err != nil {
			return err
		}
	}
	return nil
}

// refreshVotes re-reads vote and popularity fields for attached shows the
// cache window has aged out. Providerless runs skip the refresh.
func (c *Calculator) refreshVotes(ctx context.Context) error {
	if c.search == nil || c.cacheValidity <= 0 {
		return nil
	}
	stale, err := c.store.ShowsNeedingVoteRefresh(ctx, c.now().UTC().Add(-c.cacheValidity))
	if err != nil {
		return err
	}
	for _, show := range stale {
		isMovie := show.IsMovie != nil && *show.IsMovie
		detail := c.search.GetShowByID(ctx, *show.TMDBID, isMovie)
		if detail == nil {
			continue
		}
		show.VoteAverage = &detail.VoteAverage
		show.VoteCount = &detail.VoteCount
		show.Popularity = &detail.Popularity
		if err := c.store.UpdateShowData(ctx, &show); err != nil {
			c.logger.Warn("vote refresh write failed",
				slog.Int64("show_id", show.ID), logging.Error(err))
		}
	}
	if len(stale) > 0 {
		c.logger.Info("vote fields refreshed", slog.Int("shows", len(stale)))
	}
	return nil
}

// computeScore stores the best-rated shows airing inside the week.
func (c *Calculator) computeScore(ctx context.Context, year, week int, weekStart time.Time) error {
	weekEnd := weekStart.AddDate(0, 0, 7)

	var showIDs []int64
	var seasons []*int
	for _, isMovie := range []bool{true, false} {
		candidates, err := c.store.ScoreCandidates(ctx, isMovie, weekStart, weekEnd, minVoteCount, c.scoreCounter)
		if err != nil {
			return err
		}
		for _, candidate := range candidates {
			showIDs = append(showIDs, candidate.Show.ID)
			seasons = append(seasons, candidate.Season)
		}
	}

	return c.store.UpsertHighlight(ctx, catalog.Highlight{
		Key: catalog.HighlightScore, Year: year, Week: week,
		ShowIDs: showIDs, Seasons: seasons,
	})
}

// computeNew stores premieres airing in the week after the keyed one, so
// the list previews what is coming.
func (c *Calculator) computeNew(ctx context.Context, year, week int, weekStart time.Time) error {
	nextStart := weekStart.AddDate(0, 0, 7)
	nextEnd := nextStart.AddDate(0, 0, 7)

	var showIDs []int64
	var seasons []*int
	for _, isMovie := range []bool{true, false} {
		candidates, err := c.store.NewCandidates(ctx, isMovie, nextStart, nextEnd, c.newCounter)
		if err != nil {
			return err
		}
		for _, candidate := range candidates {
			showIDs = append(showIDs, candidate.Show.ID)
			seasons = append(seasons, candidate.Season)
		}
	}

	return c.store.UpsertHighlight(ctx, catalog.Highlight{
		Key: catalog.HighlightNew, Year: year, Week: week,
		ShowIDs: showIDs, Seasons: seasons,
	})
}

// isoWeekStart is the Monday 00:00 UTC of the week containing t.
func isoWeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, 1-weekday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
