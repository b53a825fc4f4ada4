package parsers

import (
	"fmt"
	"regexp"
	"strings"
)

// extractMergedCell handles spreadsheets where fields are positional
// within a row but column boundaries drift because of merged cells. Each
// descriptor field declares a validating regex; per data row the cells are
// walked left to right and each is greedily assigned to the next field
// whose regex matches. A row missing a mandatory field is dropped.
//
// With the date_separate_line setting, a row holding only a date becomes
// the date for the entry rows that follow it.
func extractMergedCell(rows [][]string, cfg *Config) ([]rawRecord, error) {
	type compiledField struct {
		name      string
		pattern   *regexp.Regexp
		mandatory bool
	}

	var fields []compiledField
	var datePattern *regexp.Regexp
	for _, name := range cfg.Order {
		spec := cfg.Fields[name]
		if spec.Source == "" {
			continue
		}
		pattern, err := regexp.Compile("^(?:" + spec.Source + ")$")
		if err != nil {
			return nil, fmt.Errorf("field %q regex: %w", name, err)
		}
		if name == "date" {
			datePattern = pattern
			if cfg.HasSetting("date_separate_line") {
				continue
			}
		}
		fields = append(fields, compiledField{
			name:      name,
			pattern:   pattern,
			mandatory: strings.EqualFold(spec.Format, "mandatory"),
		})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("merged-cell descriptor declares no fields")
	}

	dateOnSeparateLine := cfg.HasSetting("date_separate_line")
	currentDate := ""

	var records []rawRecord
	for i, row := range rows {
		cells := nonEmptyCells(row)
		if len(cells) == 0 {
			continue
		}

		if dateOnSeparateLine && len(cells) == 1 && datePattern != nil && datePattern.MatchString(cells[0]) {
			currentDate = cells[0]
			continue
		}

		values := make(map[string]string, len(fields))
		cellIdx := 0
		ok := true
		for _, field := range fields {
			if cellIdx < len(cells) && field.pattern.MatchString(cells[cellIdx]) {
				values[field.name] = cells[cellIdx]
				cellIdx++
				continue
			}
			// An absent optional field leaves its cell for the next
			// field to claim.
			if field.mandatory {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if dateOnSeparateLine {
			if currentDate == "" {
				continue
			}
			values["date"] = currentDate
		}
		records = append(records, rawRecord{Fields: values, SourceRow: i + 1})
	}
	return records, nil
}

func nonEmptyCells(row []string) []string {
	var cells []string
	for _, cell := range row {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			cells = append(cells, trimmed)
		}
	}
	return cells
}
