package parsers

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed channel_config/*.csv
var embeddedConfigs embed.FS

// FieldSpec is one descriptor line: where a logical field comes from in the
// source file and an opaque format hint the variant interprets.
type FieldSpec struct {
	// Source is a column name, a 0-based position, or a regex depending
	// on the variant.
	Source string
	Format string
}

// Position returns Source as a 0-based column index.
func (f FieldSpec) Position() (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(f.Source))
	if err != nil {
		return 0, fmt.Errorf("field position %q: %w", f.Source, err)
	}
	return pos, nil
}

// Config is a parsed per-channel descriptor. Fields maps logical field
// names (date, time, original_title, ...) to their specs; Settings carries
// the underscore-prefixed parser-wide keys with the prefix stripped.
type Config struct {
	Fields   map[string]FieldSpec
	Settings map[string]string
	// Order preserves field declaration order; the merged-cell variant
	// assigns cells to fields in this sequence.
	Order []string
}

// Field returns the spec for a logical field and whether it is declared.
func (c *Config) Field(name string) (FieldSpec, bool) {
	spec, ok := c.Fields[name]
	return spec, ok
}

// Setting returns a parser-wide value ("" when absent).
func (c *Config) Setting(name string) string {
	return c.Settings[name]
}

// HasSetting reports whether a parser-wide key is declared at all.
func (c *Config) HasSetting(name string) bool {
	_, ok := c.Settings[name]
	return ok
}

// IntSetting returns a numeric parser-wide value, or fallback.
func (c *Config) IntSetting(name string, fallback int) int {
	value, ok := c.Settings[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// StringsToIgnore returns the '|'-separated ignore list.
func (c *Config) StringsToIgnore() []string {
	raw := c.Settings["strings_to_ignore"]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseConfig reads a descriptor table: field_name;source;format with an
// optional header row. Keys beginning with '_' become Settings.
func ParseConfig(r io.Reader) (*Config, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse config descriptor: %w", err)
	}

	cfg := &Config{
		Fields:   make(map[string]FieldSpec),
		Settings: make(map[string]string),
	}
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" || (i == 0 && strings.EqualFold(name, "field_name")) {
			continue
		}
		source, format := "", ""
		if len(record) > 1 {
			source = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			format = strings.TrimSpace(record[2])
		}
		if strings.HasPrefix(name, "_") {
			cfg.Settings[strings.TrimPrefix(name, "_")] = source
			continue
		}
		cfg.Fields[name] = FieldSpec{Source: source, Format: format}
		cfg.Order = append(cfg.Order, name)
	}
	return cfg, nil
}

// LoadConfig reads the named descriptor, preferring overrideDir when it
// holds a file of that name and falling back to the embedded copy.
func LoadConfig(name, overrideDir string) (*Config, error) {
	if overrideDir != "" {
		path := filepath.Join(overrideDir, name)
		if file, err := os.Open(path); err == nil {
			defer file.Close()
			return ParseConfig(file)
		}
	}
	file, err := embeddedConfigs.Open("channel_config/" + name)
	if err != nil {
		return nil, fmt.Errorf("open config descriptor %q: %w", name, err)
	}
	defer file.Close()
	return ParseConfig(file)
}
