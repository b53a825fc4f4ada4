package catalog

import (
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed channels.csv
var embeddedChannelList string

// ParseChannelList reads a semicolon-separated channel seed table with a
// header row of name;adult;acronym;search_epg.
func ParseChannelList(r io.Reader) ([]Channel, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse channel list: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse channel list: empty file")
	}

	var channels []Channel
	for i, record := range records {
		if i == 0 && strings.EqualFold(record[0], "name") {
			continue
		}
		adult, err := parseSeedBool(record[1])
		if err != nil {
			return nil, fmt.Errorf("channel list line %d: %w", i+1, err)
		}
		searchEPG, err := parseSeedBool(record[3])
		if err != nil {
			return nil, fmt.Errorf("channel list line %d: %w", i+1, err)
		}
		name := strings.TrimSpace(record[0])
		acronym := strings.TrimSpace(record[2])
		if name == "" || acronym == "" {
			return nil, fmt.Errorf("channel list line %d: empty name or acronym", i+1)
		}
		channels = append(channels, Channel{
			Name:      name,
			Acronym:   acronym,
			Adult:     adult,
			SearchEPG: searchEPG,
		})
	}
	return channels, nil
}

func parseSeedBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

// SeedChannelsFromFile upserts the channel list at path, falling back to the
// embedded list when path is empty.
func (s *Store) SeedChannelsFromFile(ctx context.Context, path string) (int, error) {
	var channels []Channel
	var err error
	if path == "" {
		channels, err = ParseChannelList(strings.NewReader(embeddedChannelList))
	} else {
		var file *os.File
		file, err = os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("open channel list: %w", err)
		}
		defer file.Close()
		channels, err = ParseChannelList(file)
	}
	if err != nil {
		return 0, err
	}
	if err := s.SeedChannels(ctx, channels); err != nil {
		return 0, err
	}
	return len(channels), nil
}
