// Package orchestrator runs the three batch jobs: Daily (catalog upkeep,
// channel refresh, EPG ingest, alarm processing), Hourly (reminder
// dispatch), and Weekly (highlight lists). Each job runs inside one
// catalog transaction: commit on success, rollback on error.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/config"
	"aerial/internal/epg"
	"aerial/internal/highlights"
	"aerial/internal/logging"
	"aerial/internal/parsers"
	"aerial/internal/reminders"
	"aerial/internal/sessions"
)

// EPGSource is the live-schedule provider the daily job ingests from.
// *epg.Client satisfies it.
type EPGSource interface {
	Channels(ctx context.Context) ([]epg.Channel, error)
	Guide(ctx context.Context, acronyms []string, dateStart, dateEnd string) ([]epg.ChannelPrograms, error)
}

// Orchestrator wires the pipeline components into the job entry points.
type Orchestrator struct {
	store      *catalog.Store
	cfg        *config.Config
	epg        EPGSource
	upserter   *sessions.Upserter
	dispatcher *reminders.Dispatcher
	calculator *highlights.Calculator
	sender     reminders.Sender
	registry   func(tx *catalog.Store) *parsers.Registry
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// Deps carries the components an Orchestrator schedules.
type Deps struct {
	Store      *catalog.Store
	Config     *config.Config
	EPG        EPGSource
	Upserter   *sessions.Upserter
	Dispatcher *reminders.Dispatcher
	Calculator *highlights.Calculator
	Sender     reminders.Sender
	// Registry builds a parser registry bound to the given transaction
	// store, so file ingests share the job transaction.
	Registry func(tx *catalog.Store) *parsers.Registry
	Location *time.Location
	Logger   *slog.Logger
}

// New builds an Orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		store:      deps.Store,
		cfg:        deps.Config,
		epg:        deps.EPG,
		upserter:   deps.Upserter,
		dispatcher: deps.Dispatcher,
		calculator: deps.Calculator,
		sender:     deps.Sender,
		registry:   deps.Registry,
		loc:        deps.Location,
		logger:     logging.NewComponentLogger(deps.Logger, "orchestrator"),
		now:        time.Now,
	}
}

// Daily runs catalog upkeep, the channel refresh, the week-ahead EPG
// ingest, and alarm processing inside one transaction.
func (o *Orchestrator) Daily(ctx context.Context) error {
	started := o.now().UTC()
	logger := o.logger.With(logging.FieldJob, "daily")

	err := o.store.WithTx(ctx, func(tx *catalog.Store) error {
		aged, err := tx.DeleteAgedSessions(ctx, started.AddDate(0, 0, -o.cfg.Ingest.SessionValidityDays))
		if err != nil {
			return err
		}
		swept, err := tx.CacheSweep(ctx, started.AddDate(0, 0, -o.cfg.Ingest.CacheValidityDays))
		if err != nil {
			return err
		}
		logger.Info("catalog upkeep", slog.Int64("aged_sessions", aged), slog.Int64("cache_entries", swept))

		if o.cfg.EPG.Enabled && o.epg != nil {
			if err := o.refreshChannels(ctx, tx, logger); err != nil {
				return err
			}
			if err := o.ingestEPG(ctx, tx, started, logger); err != nil {
				return err
			}
		}

		return o.processAlarms(ctx, tx, logger)
	})
	if err != nil {
		return fmt.Errorf("daily job: %w", err)
	}
	logger.Info("daily job finished", slog.Duration("elapsed", o.now().UTC().Sub(started)))
	return nil
}

// Hourly dispatches elapsed reminders.
func (o *Orchestrator) Hourly(ctx context.Context) error {
	logger := o.logger.With(logging.FieldJob, "hourly")
	err := o.store.WithTx(ctx, func(tx *catalog.Store) error {
		fired, err := o.dispatcher.WithStore(tx).Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("hourly job finished", slog.Int("reminders_fired", fired))
		return nil
	})
	if err != nil {
		return fmt.Errorf("hourly job: %w", err)
	}
	return nil
}

// Weekly recomputes the highlight lists.
func (o *Orchestrator) Weekly(ctx context.Context) error {
	logger := o.logger.With(logging.FieldJob, "weekly")
	err := o.store.WithTx(ctx, func(tx *catalog.Store) error {
		return o.calculator.WithStore(tx).Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("weekly job: %w", err)
	}
	logger.Info("weekly job finished")
	return nil
}

// IngestFile runs one broadcaster file through the parser pipeline inside
// its own transaction.
func (o *Orchestrator) IngestFile(ctx context.Context, path, channelName string) (*parsers.InsertionResult, error) {
	var result *parsers.InsertionResult
	err := o.store.WithTx(ctx, func(tx *catalog.Store) error {
		var err error
		result, err = o.registry(tx).AddFileData(ctx, path, channelName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return result, nil
}

// refreshChannels adds EPG channels the catalog has not seen. Seeded
// channels may hold the EPG name in either column (acronym "RTP1",
// display name "RTP 1"), so both must miss before a row is inserted;
// seeded channels keep their curated names and flags.
func (o *Orchestrator) refreshChannels(ctx context.Context, tx *catalog.Store, logger *slog.Logger) error {
	channels, err := o.epg.Channels(ctx)
	if err != nil {
		return fmt.Errorf("refresh channels: %w", err)
	}
	added := 0
	for _, channel := range channels {
		name := strings.TrimSpace(channel.Name)
		if name == "" {
			continue
		}
		known, err := channelKnown(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("look up channel %q: %w", name, err)
		}
		if known {
			continue
		}
		if _, err := tx.UpsertChannel(ctx, catalog.Channel{
			Acronym:   name,
			Name:      name,
			SearchEPG: true,
		}); err != nil {
			return fmt.Errorf("add channel %q: %w", name, err)
		}
		added++
	}
	if added > 0 {
		logger.Info("epg channels added", slog.Int("channels", added))
	}
	return nil
}

func channelKnown(ctx context.Context, tx *catalog.Store, name string) (bool, error) {
	if _, err := tx.ChannelByAcronym(ctx, name); err == nil {
		return true, nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return false, err
	}
	if _, err := tx.ChannelByName(ctx, name); err == nil {
		return true, nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// ingestEPG pulls the guide for [today, today+6] in acronym batches and
// feeds every program through the session pipeline, sweeping stale
// sessions per batch afterwards.
func (o *Orchestrator) ingestEPG(ctx context.Context, tx *catalog.Store, started time.Time, logger *slog.Logger) error {
	channels, err := tx.EPGChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return nil
	}

	batchSize := o.cfg.EPG.MaxChannelsRequest
	if batchSize <= 0 {
		batchSize = len(channels)
	}

	today := o.now().In(o.loc)
	dateStart := today.Format("02-01-2006")
	dateEnd := today.AddDate(0, 0, 6).Format("02-01-2006")

	sink := o.upserter.WithStore(tx)
	byAcronym := make(map[string]*catalog.Channel, len(channels))
	for i := range channels {
		byAcronym[channels[i].Acronym] = &channels[i]
	}

	for start := 0; start < len(channels); start += batchSize {
		end := start + batchSize
		if end > len(channels) {
			end = len(channels)
		}
		acronyms := make([]string, 0, end-start)
		for _, channel := range channels[start:end] {
			acronyms = append(acronyms, channel.Acronym)
		}

		guide, err := o.epg.Guide(ctx, acronyms, dateStart, dateEnd)
		if err != nil {
			return fmt.Errorf("epg guide batch: %w", err)
		}

		var batchIDs []int64
		var result parsers.InsertionResult
		for _, programs := range guide {
			channel, ok := byAcronym[programs.Acronym]
			if !ok {
				logger.Warn("guide returned unknown channel", slog.String("acronym", programs.Acronym))
				continue
			}
			batchIDs = append(batchIDs, channel.ID)

			for _, program := range programs.Programs {
				row, ok := o.programRow(program, logger)
				if !ok {
					continue
				}
				outcome, err := sink.Ingest(ctx, channel, row)
				if err != nil {
					return err
				}
				result.Observe(row, outcome)
			}
		}

		if result.Total > 0 {
			deleted, err := sink.SweepStale(ctx, batchIDs,
				result.StartDateTime.Add(-5*time.Minute),
				result.EndDateTime.Add(5*time.Minute),
				started)
			if err != nil {
				return err
			}
			logger.Info("epg batch ingested",
				slog.Int("channels", len(batchIDs)),
				slog.Int("total", result.Total),
				slog.Int("added", result.Added),
				slog.Int("updated", result.Updated),
				slog.Int("deleted", deleted))
		}
	}

	return tx.SetEPGDate(ctx, started)
}

// programRow converts one EPG program into a pipeline row.
func (o *Orchestrator) programRow(program epg.Program, logger *slog.Logger) (parsers.Row, bool) {
	airTime, err := program.AirTime(o.loc)
	if err != nil {
		logger.Debug("unparseable program time", logging.Error(err))
		return parsers.Row{}, false
	}
	title, season, episode := epg.SplitProgramName(program.Name)
	if title == "" {
		return parsers.Row{}, false
	}

	row := parsers.Row{
		LocalizedTitle: title,
		Season:         season,
		Episode:        episode,
		DateTime:       airTime.UTC(),
		IsMovie:        season == nil && episode == nil,
	}
	if program.Duration > 0 {
		minutes := program.Duration / 60
		row.DurationMinutes = &minutes
	}
	return row, true
}

// processAlarms mails users whose standing alarms match sessions ingested
// since the last watermark, then advances the watermark. The watermark is
// taken at scan time, after the EPG ingest has stamped its rows.
func (o *Orchestrator) processAlarms(ctx context.Context, tx *catalog.Store, logger *slog.Logger) error {
	scanTime := o.now().UTC()
	last, err := tx.GetLastUpdate(ctx)
	if err != nil {
		return err
	}
	watermark := time.Time{}
	if last.AlarmsProcessedAt != nil {
		watermark = *last.AlarmsProcessedAt
	}

	recent, err := tx.SessionsUpdatedSince(ctx, watermark)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		alarms, users, err := tx.ListAlarms(ctx)
		if err != nil {
			return err
		}

		matchesByUser := make(map[int64][]catalog.SessionWithShow)
		for _, alarm := range alarms {
			seenShows := make(map[int64]bool)
			for _, entry := range recent {
				if !alarmMatches(alarm, entry) {
					continue
				}
				// A DB alarm watches for the show itself, so it reports
				// each show once; a LISTINGS alarm reports every airing.
				if alarm.Type == catalog.AlarmTypeDB {
					if seenShows[entry.Show.ID] {
						continue
					}
					seenShows[entry.Show.ID] = true
				}
				matchesByUser[alarm.UserID] = append(matchesByUser[alarm.UserID], entry)
			}
		}
		for userID, matches := range matchesByUser {
			user, ok := users[userID]
			if !ok {
				continue
			}
			if err := o.sender.SendAlarmMatches(ctx, user, matches, user.Language); err != nil {
				logger.Warn("alarm mail failed", slog.Int64("user_id", userID), logging.Error(err))
			}
		}
		if len(matchesByUser) > 0 {
			logger.Info("alarms matched", slog.Int("users", len(matchesByUser)))
		}
	}

	return tx.SetAlarmsProcessedAt(ctx, scanTime)
}

// alarmMatches applies one standing alarm to one new session. A TMDB id
// pins the match exactly; otherwise the stored name must appear in one of
// the show's titles. Kind, season, and episode narrow further when set.
func alarmMatches(alarm catalog.Alarm, entry catalog.SessionWithShow) bool {
	if alarm.TMDBID != nil {
		if entry.Show.TMDBID == nil || *entry.Show.TMDBID != *alarm.TMDBID {
			return false
		}
	} else if !titleContains(entry.Show, alarm.ShowName) {
		return false
	}

	if alarm.IsMovie != nil {
		if entry.Show.IsMovie == nil || *entry.Show.IsMovie != *alarm.IsMovie {
			return false
		}
	}
	if alarm.Season != nil {
		if entry.Session.Season == nil || *entry.Session.Season != *alarm.Season {
			return false
		}
	}
	if alarm.Episode != nil {
		if entry.Session.Episode == nil || *entry.Session.Episode != *alarm.Episode {
			return false
		}
	}
	return true
}

func titleContains(show catalog.ShowData, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, title := range []*string{show.OriginalTitle, show.LocalizedTitle} {
		if title != nil && strings.Contains(strings.ToLower(*title), name) {
			return true
		}
	}
	return false
}
