package parsers

import (
	"strconv"
	"strings"
)

// rawRecord is one source row reduced to logical-field text values.
type rawRecord struct {
	Fields    map[string]string
	SourceRow int
}

// extractPositional maps fixed column indices from the descriptor onto
// each row. Rows whose year column does not hold an integer are headers or
// filler and are skipped.
func extractPositional(rows [][]string, cfg *Config) ([]rawRecord, error) {
	yearSpec, hasYear := cfg.Field("year")
	yearPos := -1
	if hasYear {
		pos, err := yearSpec.Position()
		if err != nil {
			return nil, err
		}
		yearPos = pos
	}

	ignore := cfg.StringsToIgnore()
	var records []rawRecord
	for i, row := range rows {
		if yearPos >= 0 {
			if yearPos >= len(row) {
				continue
			}
			if _, err := strconv.Atoi(strings.TrimSpace(row[yearPos])); err != nil {
				continue
			}
		}

		fields := make(map[string]string, len(cfg.Fields))
		usable := false
		for name, spec := range cfg.Fields {
			pos, err := spec.Position()
			if err != nil || pos < 0 || pos >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[pos])
			if value == "" || containsAny(value, ignore) {
				continue
			}
			fields[name] = value
			usable = true
		}
		if !usable {
			continue
		}
		records = append(records, rawRecord{Fields: fields, SourceRow: i + 1})
	}
	return records, nil
}

func containsAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
