package main

import (
	"fmt"
	"log/slog"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/config"
	"aerial/internal/epg"
	"aerial/internal/highlights"
	"aerial/internal/matcher"
	"aerial/internal/omdb"
	"aerial/internal/orchestrator"
	"aerial/internal/parsers"
	"aerial/internal/reminders"
	"aerial/internal/sessions"
	"aerial/internal/tmdb"
)

// buildPipeline wires the ingestion pipeline the daemon schedules.
func buildPipeline(cfg *config.Config, logger *slog.Logger, store *catalog.Store) (*orchestrator.Orchestrator, *time.Location, error) {
	cacheValidity := time.Duration(cfg.Ingest.CacheValidityDays) * 24 * time.Hour

	var search tmdb.Searcher
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
			tmdb.WithCache(store, cacheValidity),
			tmdb.WithRateLimit(cfg.TMDB.RatePerSec),
			tmdb.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("init tmdb client: %w", err)
		}
		search = client
	}

	matcherOpts := []matcher.Option{matcher.WithLogger(logger)}
	if cfg.OMDB.APIKey != "" {
		posters, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL,
			omdb.WithCache(store, cacheValidity),
			omdb.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("init omdb client: %w", err)
		}
		matcherOpts = append(matcherOpts, matcher.WithPosterSource(posters))
	}

	sender, err := reminders.NewSender(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init mail sender: %w", err)
	}

	upserter := sessions.New(store, matcher.New(store, search, matcherOpts...),
		sessions.WithWindow(time.Duration(cfg.Ingest.SameSessionMinutes)*time.Minute),
		sessions.WithNotifier(reminders.NewSessionRemovedNotifier(store, sender)),
		sessions.WithLogger(logger))

	calculatorOpts := []highlights.Option{
		highlights.WithCounters(cfg.Highlights.ScoreCounter, cfg.Highlights.NewCounter),
		highlights.WithLogger(logger),
	}
	if search != nil {
		calculatorOpts = append(calculatorOpts, highlights.WithVoteRefresh(search, cacheValidity))
	}

	var source orchestrator.EPGSource
	if cfg.EPG.Enabled {
		client, err := epg.New(cfg.EPG.ChannelsURL, cfg.EPG.ShowsURL,
			epg.WithTimeout(time.Duration(cfg.EPG.RequestTimeout)*time.Second))
		if err != nil {
			return nil, nil, fmt.Errorf("init epg client: %w", err)
		}
		source = client
	}

	loc, err := time.LoadLocation(cfg.Ingest.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Ingest.Timezone, err)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Store:      store,
		Config:     cfg,
		EPG:        source,
		Upserter:   upserter,
		Dispatcher: reminders.New(store, sender, reminders.WithLogger(logger)),
		Calculator: highlights.New(store, calculatorOpts...),
		Sender:     sender,
		Registry: func(tx *catalog.Store) *parsers.Registry {
			return parsers.NewRegistry(tx, upserter.WithStore(tx), loc, cfg.Ingest.SessionValidityDays,
				parsers.WithConfigDir(cfg.Paths.ChannelConfigDir),
				parsers.WithRegistryLogger(logger))
		},
		Location: loc,
		Logger:   logger,
	})
	return orch, loc, nil
}
