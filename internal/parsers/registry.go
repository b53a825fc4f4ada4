package parsers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/logging"
	"aerial/internal/searchkey"
)

// Variant selects one of the file-format families.
type Variant string

const (
	VariantXMLGuide      Variant = "xml_guide"
	VariantPositional    Variant = "positional"
	VariantHeaderIndexed Variant = "header_indexed"
	VariantMergedCell    Variant = "merged_cell"
	VariantWeeklyGrid    Variant = "weekly_grid"
)

// Entry pairs a parser variant with its channel config descriptor.
type Entry struct {
	Variant    Variant
	ConfigFile string
}

// defaultEntries is the built-in channel registry. Channels not listed
// here are ingested through the EPG source only.
var defaultEntries = map[string]Entry{
	"Odisseia":        {VariantXMLGuide, "odisseia.csv"},
	"Hollywood":       {VariantPositional, "hollywood.csv"},
	"Nat Geo Wild":    {VariantHeaderIndexed, "nat_geo_wild.csv"},
	"História":        {VariantMergedCell, "historia.csv"},
	"SIC":             {VariantWeeklyGrid, "sic.csv"},
	"TVCine Top":      {VariantPositional, "tvcine.csv"},
	"TVCine Edition":  {VariantPositional, "tvcine.csv"},
	"TVCine Emotion":  {VariantPositional, "tvcine.csv"},
	"TVCine Action":   {VariantPositional, "tvcine.csv"},
	"Canal Panda":     {VariantHeaderIndexed, "generic_list.csv"},
	"Cinemundo":       {VariantHeaderIndexed, "generic_list.csv"},
}

// Registry maps channel names to parsers and runs file ingests end to end.
type Registry struct {
	entries      map[string]Entry
	overrideDir  string
	store        *catalog.Store
	sink         RowSink
	loc          *time.Location
	validityDays int
	logger       *slog.Logger
	now          func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConfigDir points descriptor loading at a disk directory that takes
// precedence over the embedded tables.
func WithConfigDir(dir string) RegistryOption {
	return func(r *Registry) { r.overrideDir = dir }
}

// WithRegistryLogger attaches a logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "parsers")
		}
	}
}

// NewRegistry builds the registry with the built-in channel table.
func NewRegistry(store *catalog.Store, sink RowSink, loc *time.Location, validityDays int, opts ...RegistryOption) *Registry {
	registry := &Registry{
		entries:      make(map[string]Entry, len(defaultEntries)),
		store:        store,
		sink:         sink,
		loc:          loc,
		validityDays: validityDays,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for name, entry := range defaultEntries {
		registry.entries[name] = entry
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// Register adds or replaces a channel mapping.
func (r *Registry) Register(channelName string, entry Entry) {
	r.entries[channelName] = entry
}

// Supports reports whether a parser is registered for the channel.
func (r *Registry) Supports(channelName string) bool {
	_, ok := r.entries[channelName]
	return ok
}

// InferChannel guesses which registered channel a dropped file belongs to
// from its name. Matching is accent and case insensitive; when several
// channel names occur in the filename the longest one wins.
func (r *Registry) InferChannel(filename string) (string, bool) {
	// Search keys preserve case, so fold both sides before comparing.
	key := strings.ToLower(searchkey.MakeSearchable(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))))

	best, bestLen := "", 0
	for name := range r.entries {
		needle := strings.ToLower(searchkey.MakeSearchable(name))
		if !strings.Contains(key, needle) {
			continue
		}
		if len(needle) > bestLen || (len(needle) == bestLen && name < best) {
			best, bestLen = name, len(needle)
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// AddFileData ingests one broadcaster file for a channel. It returns nil
// when the file held no usable data. An unknown channel or parser variant
// is a configuration fault and fails the call.
func (r *Registry) AddFileData(ctx context.Context, path, channelName string) (*InsertionResult, error) {
	entry, ok := r.entries[channelName]
	if !ok {
		return nil, fmt.Errorf("no parser registered for channel %q", channelName)
	}
	cfg, err := LoadConfig(entry.ConfigFile, r.overrideDir)
	if err != nil {
		return nil, err
	}
	channel, err := r.store.ChannelByName(ctx, channelName)
	if err != nil {
		return nil, fmt.Errorf("resolve channel %q: %w", channelName, err)
	}

	ingestStart := r.now().UTC()
	records, err := r.extract(path, entry.Variant, cfg)
	if err != nil {
		return nil, err
	}

	logger := r.logger.With(logging.FieldChannel, channelName)
	builder := newRowBuilder(cfg, r.loc, r.validityDays)

	var result InsertionResult
	for _, record := range records {
		row, err := builder.Build(record.Fields, record.SourceRow)
		if err != nil {
			if errors.Is(err, errRowRejected) {
				logger.Debug("row skipped",
					slog.Int(logging.FieldSourceRow, record.SourceRow), logging.Error(err))
				continue
			}
			return nil, err
		}
		outcome, err := r.sink.Ingest(ctx, channel, *row)
		if err != nil {
			logger.Warn("row ingest failed",
				slog.Int(logging.FieldSourceRow, record.SourceRow), logging.Error(err))
			continue
		}
		result.Observe(*row, outcome)
	}

	if result.Total == 0 {
		logger.Info("file held no usable sessions", slog.String("path", path))
		return nil, nil
	}

	deleted, err := r.sink.SweepStale(ctx, []int64{channel.ID},
		result.StartDateTime.Add(-5*time.Minute),
		result.EndDateTime.Add(5*time.Minute),
		ingestStart)
	if err != nil {
		return nil, fmt.Errorf("end-of-file sweep: %w", err)
	}
	result.Deleted = deleted

	logger.Info("file ingested",
		slog.String("path", path),
		slog.Int("total", result.Total),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("deleted", result.Deleted),
		slog.Int("new_shows", result.NewShows))
	return &result, nil
}

func (r *Registry) extract(path string, variant Variant, cfg *Config) ([]rawRecord, error) {
	switch variant {
	case VariantXMLGuide:
		return extractXMLGuide(path, cfg)
	case VariantPositional:
		rows, err := readSheetRows(path)
		if err != nil {
			return nil, err
		}
		return extractPositional(rows, cfg)
	case VariantHeaderIndexed:
		rows, err := readSheetRows(path)
		if err != nil {
			return nil, err
		}
		return extractHeaderIndexed(rows, cfg)
	case VariantMergedCell:
		rows, err := readSheetRows(path)
		if err != nil {
			return nil, err
		}
		return extractMergedCell(rows, cfg)
	case VariantWeeklyGrid:
		grid, err := readGridCells(path)
		if err != nil {
			return nil, err
		}
		return extractWeeklyGrid(grid, cfg, r.now().Year())
	default:
		return nil, fmt.Errorf("unknown parser variant %q", variant)
	}
}
