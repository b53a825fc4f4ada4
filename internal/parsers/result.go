package parsers

import (
	"context"
	"time"

	"aerial/internal/catalog"
)

// Row is one normalized schedule entry handed to the matcher. DateTime is
// UTC; IsMovie is true iff Season and Episode are both absent.
type Row struct {
	OriginalTitle     *string
	LocalizedTitle    string
	Year              *int
	Season            *int
	Episode           *int
	DateTime          time.Time
	DurationMinutes   *int
	Synopsis          *string
	EpisodeSynopsis   *string
	Cast              *string
	Directors         *string
	Creators          *string
	Countries         *string
	AgeClassification *string
	Subgenre          *string
	AudioLanguage     *string
	ExtendedCut       bool
	IsMovie           bool
	SourceRow         int
}

// RowOutcome reports what ingesting one row did.
type RowOutcome struct {
	Added   bool
	Updated bool
	NewShow bool
}

// RowSink receives normalized rows and owns matching, session dedup, and
// the end-of-file delete sweep. *sessions.Upserter satisfies it.
type RowSink interface {
	Ingest(ctx context.Context, channel *catalog.Channel, row Row) (RowOutcome, error)
	SweepStale(ctx context.Context, channelIDs []int64, from, to, ingestStart time.Time) (int, error)
}

// InsertionResult summarizes one file ingest. StartDateTime/EndDateTime
// bound the air times observed in the file.
type InsertionResult struct {
	StartDateTime time.Time
	EndDateTime   time.Time
	Total         int
	Updated       int
	Added         int
	Deleted       int
	NewShows      int
}

// Observe folds one accepted row's outcome into the result.
func (r *InsertionResult) Observe(row Row, outcome RowOutcome) {
	if r.Total == 0 || row.DateTime.Before(r.StartDateTime) {
		r.StartDateTime = row.DateTime
	}
	if r.Total == 0 || row.DateTime.After(r.EndDateTime) {
		r.EndDateTime = row.DateTime
	}
	r.Total++
	if outcome.Added {
		r.Added++
	}
	if outcome.Updated {
		r.Updated++
	}
	if outcome.NewShow {
		r.NewShows++
	}
}
