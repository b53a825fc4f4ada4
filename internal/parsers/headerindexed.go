package parsers

import (
	"fmt"
	"strings"
)

const defaultMinHeaderFields = 4

// extractHeaderIndexed locates the header row (the first with enough
// non-empty cells), maps declared column names to positions, and reads the
// remaining rows through that mapping. Columns the header does not explain
// are kept under "Unknown <n>" keys so channel-specific descriptors can
// still address them.
func extractHeaderIndexed(rows [][]string, cfg *Config) ([]rawRecord, error) {
	minFields := cfg.IntSetting("min_num_fields", defaultMinHeaderFields)

	headerIdx := -1
	var header []string
	for i, row := range rows {
		if countNonEmpty(row) >= minFields {
			headerIdx = i
			header = row
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row with %d fields", minFields)
	}

	// column position -> logical field name
	columns := make(map[int]string)
	unknown := 0
	for pos, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		field, ok := fieldForColumn(cfg, name)
		if !ok {
			unknown++
			field = fmt.Sprintf("Unknown %d", unknown)
		}
		columns[pos] = field
	}

	ignore := cfg.StringsToIgnore()
	var records []rawRecord
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		fields := make(map[string]string)
		for pos, field := range columns {
			if pos >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[pos])
			if value == "" || containsAny(value, ignore) {
				continue
			}
			fields[field] = value
		}
		if len(fields) == 0 {
			continue
		}
		records = append(records, rawRecord{Fields: fields, SourceRow: i + 1})
	}
	return records, nil
}

// fieldForColumn finds the logical field whose declared source name equals
// the header cell, case-insensitive and trimmed.
func fieldForColumn(cfg *Config, columnName string) (string, bool) {
	for name, spec := range cfg.Fields {
		if strings.EqualFold(strings.TrimSpace(spec.Source), columnName) {
			return name, true
		}
	}
	return "", false
}

func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
