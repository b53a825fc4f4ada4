package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"aerial/internal/catalog"
	"aerial/internal/config"
	"aerial/internal/epg"
	"aerial/internal/highlights"
	"aerial/internal/logging"
	"aerial/internal/matcher"
	"aerial/internal/omdb"
	"aerial/internal/orchestrator"
	"aerial/internal/parsers"
	"aerial/internal/reminders"
	"aerial/internal/sessions"
	"aerial/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// environment bundles the wired pipeline for one command invocation.
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	matcher *matcher.Matcher
	orch    *orchestrator.Orchestrator
}

func (c *commandContext) openEnvironment(ctx context.Context) (*environment, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := catalog.Open(ctx, cfg.Paths.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	env, err := buildEnvironment(cfg, logger, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return env, func() { store.Close() }, nil
}

func buildEnvironment(cfg *config.Config, logger *slog.Logger, store *catalog.Store) (*environment, error) {
	cacheValidity := time.Duration(cfg.Ingest.CacheValidityDays) * 24 * time.Hour

	var search tmdb.Searcher
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
			tmdb.WithCache(store, cacheValidity),
			tmdb.WithRateLimit(cfg.TMDB.RatePerSec),
			tmdb.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("init tmdb client: %w", err)
		}
		search = client
	}

	matcherOpts := []matcher.Option{matcher.WithLogger(logger)}
	if cfg.OMDB.APIKey != "" {
		posters, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL,
			omdb.WithCache(store, cacheValidity),
			omdb.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("init omdb client: %w", err)
		}
		matcherOpts = append(matcherOpts, matcher.WithPosterSource(posters))
	}
	m := matcher.New(store, search, matcherOpts...)

	sender, err := reminders.NewSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("init mail sender: %w", err)
	}

	upserter := sessions.New(store, m,
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
			return nil, fmt.Errorf("init epg client: %w", err)
		}
		source = client
	}

	loc, err := time.LoadLocation(cfg.Ingest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Ingest.Timezone, err)
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

	return &environment{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		matcher: m,
		orch:    orch,
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
