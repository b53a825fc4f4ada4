// Package sessions writes parsed schedule rows into the catalog: matching
// each row to a show, deduplicating airings inside the same-session
// window, and sweeping sessions the source dropped between file versions.
package sessions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/logging"
	"aerial/internal/matcher"
	"aerial/internal/parsers"
)

// DefaultSameSessionWindow is how far an airing may drift between file
// versions and still count as the same session.
const DefaultSameSessionWindow = 30 * time.Minute

// RemovalNotifier is told about sessions deleted while users held
// reminders on them. Dispatch failures must not fail the sweep.
type RemovalNotifier interface {
	NotifySessionRemoved(ctx context.Context, due catalog.ReminderDue) error
}

// Upserter implements parsers.RowSink on top of the catalog store and the
// matcher. Clone with WithStore to bind a job transaction.
type Upserter struct {
	store    *catalog.Store
	matcher  *matcher.Matcher
	window   time.Duration
	notifier RemovalNotifier
	logger   *slog.Logger
}

// Option configures an Upserter.
type Option func(*Upserter)

// WithWindow overrides the same-session dedup window.
func WithWindow(window time.Duration) Option {
	return func(u *Upserter) {
		if window > 0 {
			u.window = window
		}
	}
}

// WithNotifier enables "session removed" notices for swept sessions.
func WithNotifier(notifier RemovalNotifier) Option {
	return func(u *Upserter) { u.notifier = notifier }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Upserter) {
		if logger != nil {
			u.logger = logging.NewComponentLogger(logger, "sessions")
		}
	}
}

// New builds an Upserter.
func New(store *catalog.Store, m *matcher.Matcher, opts ...Option) *Upserter {
	u := &Upserter{
		store:   store,
		matcher: m,
		window:  DefaultSameSessionWindow,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// WithStore returns a copy bound to another store, rebinding the matcher
// with it.
func (u *Upserter) WithStore(store *catalog.Store) *Upserter {
	clone := *u
	clone.store = store
	clone.matcher = u.matcher.WithStore(store)
	return &clone
}

// Ingest matches the row to a show and registers its session. An existing
// session with the same identity within the dedup window is refreshed and
// counted updated; a uniqueness race on insert also counts updated.
func (u *Upserter) Ingest(ctx context.Context, channel *catalog.Channel, row parsers.Row) (parsers.RowOutcome, error) {
	show, newShow, err := u.matcher.Match(ctx, channel, row)
	if err != nil {
		return parsers.RowOutcome{}, err
	}
	outcome := parsers.RowOutcome{NewShow: newShow}

	existing, err := u.store.SessionWithin(ctx, channel.ID, show.ID, row.Season, row.Episode, row.DateTime, u.window)
	if err == nil {
		if err := u.store.RefreshSession(ctx, existing.ID, row.DateTime); err != nil {
			return outcome, err
		}
		outcome.Updated = true
		return outcome, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return outcome, err
	}

	session := &catalog.ShowSession{
		ShowDataID:    show.ID,
		ChannelID:     channel.ID,
		Season:        row.Season,
		Episode:       row.Episode,
		DateTime:      row.DateTime,
		AudioLanguage: row.AudioLanguage,
		ExtendedCut:   row.ExtendedCut,
	}
	if _, err := u.store.InsertSession(ctx, session); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			// Another ingest won the insert between our probe and now.
			outcome.Updated = true
			return outcome, nil
		}
		return outcome, err
	}
	outcome.Added = true
	return outcome, nil
}

// SweepStale deletes sessions on the given channels inside [from, to]
// whose update timestamp predates the ingest start, and notifies users who
// held reminders on them. Returns the number of sessions deleted.
func (u *Upserter) SweepStale(ctx context.Context, channelIDs []int64, from, to, ingestStart time.Time) (int, error) {
	stale, err := u.store.StaleSessions(ctx, channelIDs, from, to, ingestStart)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, session := range stale {
		var affected []catalog.ReminderDue
		if u.notifier != nil {
			affected, err = u.store.RemindersForSession(ctx, session.ID)
			if err != nil {
				return deleted, err
			}
		}
		if err := u.store.DeleteSession(ctx, session.ID); err != nil {
			return deleted, err
		}
		deleted++

		for _, due := range affected {
			if err := u.notifier.NotifySessionRemoved(ctx, due); err != nil {
				u.logger.Warn("session removed notice failed",
					slog.Int64("session_id", session.ID),
					slog.Int64("user_id", due.User.ID),
					logging.Error(err))
			}
		}
	}
	return deleted, nil
}
