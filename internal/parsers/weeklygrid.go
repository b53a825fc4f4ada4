package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// weekdayColumns maps header cell names to day offsets from Monday.
var weekdayColumns = map[string]int{
	"segunda":       0,
	"segunda-feira": 0,
	"terça":         1,
	"terça-feira":   1,
	"terca":         1,
	"quarta":        2,
	"quarta-feira":  2,
	"quinta":        3,
	"quinta-feira":  3,
	"sexta":         4,
	"sexta-feira":   4,
	"sábado":        5,
	"sabado":        5,
	"domingo":       6,
}

var defaultWeekPattern = regexp.MustCompile(`(?i)semana\s*(?:n[º°.]?\s*)?(\d{1,2})`)

// gridCellKind classifies a weekly-grid cell by its font attributes.
type gridCellKind int

const (
	gridCellEmpty gridCellKind = iota
	// gridCellTitle is bold text: the show title, optionally carrying a
	// trailing "- Ep. <n>".
	gridCellTitle
	// gridCellTranslation is italic text: the original-language title.
	gridCellTranslation
	// gridCellEpisodeNumber is plain "Ep. <n>" text.
	gridCellEpisodeNumber
	// gridCellEpisodeTitle is any other plain text: a localized episode
	// title.
	gridCellEpisodeTitle
)

var episodeNumberPattern = regexp.MustCompile(`^Ep\.?\s*(\d{1,4})$`)

// classifyGridCell decides what a cell contributes to the session it
// belongs to.
func classifyGridCell(cell gridCell) gridCellKind {
	if cell.Text == "" {
		return gridCellEmpty
	}
	if cell.Bold {
		return gridCellTitle
	}
	if cell.Italic {
		return gridCellTranslation
	}
	if episodeNumberPattern.MatchString(cell.Text) {
		return gridCellEpisodeNumber
	}
	return gridCellEpisodeTitle
}

// gridSession is a run of adjacent cells in one weekday column, delimited
// by cell borders.
type gridSession struct {
	dayOffset int
	timeText  string
	cells     []gridCell
}

// extractWeeklyGrid reads the SIC-style planning grid: weekday columns, a
// time column, the ISO week number in the sheet header, and sessions
// delimited by cell bottom borders. Font attributes carry the field roles.
func extractWeeklyGrid(grid [][]gridCell, cfg *Config, refYear int) ([]rawRecord, error) {
	weekPattern := defaultWeekPattern
	if raw := cfg.Setting("week_from_header"); raw != "" {
		compiled, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("week_from_header regex: %w", err)
		}
		weekPattern = compiled
	}

	week, headerRow := findWeekNumber(grid, weekPattern)
	if week == 0 {
		return nil, fmt.Errorf("no week number in sheet header")
	}
	weekStart := isoWeekStart(refYear, week)

	dayCols, dayHeaderRow := findWeekdayColumns(grid, headerRow)
	if len(dayCols) == 0 {
		return nil, fmt.Errorf("no weekday columns found")
	}

	timePos := cfg.IntSetting("time_pos", 0)

	var records []rawRecord
	for col, offset := range dayCols {
		for _, session := range collectSessions(grid, dayHeaderRow+1, col, offset, timePos) {
			record, ok := sessionToRecord(session, weekStart, cfg)
			if ok {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func findWeekNumber(grid [][]gridCell, pattern *regexp.Regexp) (week, row int) {
	for r, cells := range grid {
		for _, cell := range cells {
			if m := pattern.FindStringSubmatch(cell.Text); m != nil {
				n, _ := strconv.Atoi(m[1])
				return n, r
			}
		}
	}
	return 0, 0
}

func findWeekdayColumns(grid [][]gridCell, fromRow int) (map[int]int, int) {
	for r := fromRow; r < len(grid); r++ {
		cols := make(map[int]int)
		for c, cell := range grid[r] {
			name := strings.ToLower(strings.TrimSpace(cell.Text))
			if offset, ok := weekdayColumns[name]; ok {
				cols[c] = offset
			}
		}
		if len(cols) >= 2 {
			return cols, r
		}
	}
	return nil, 0
}

// collectSessions groups adjacent cells of one weekday column. A bottom
// border closes the running session; a top border on a non-empty cell
// opens a new one.
func collectSessions(grid [][]gridCell, fromRow, col, dayOffset, timePos int) []gridSession {
	var sessions []gridSession
	var current *gridSession

	flush := func() {
		if current != nil && len(current.cells) > 0 {
			sessions = append(sessions, *current)
		}
		current = nil
	}

	for r := fromRow; r < len(grid); r++ {
		row := grid[r]
		if col >= len(row) {
			flush()
			continue
		}
		cell := row[col]
		if cell.Text == "" && current == nil {
			continue
		}
		if cell.TopBorder && current != nil && len(current.cells) > 0 {
			flush()
		}
		if current == nil {
			timeText := ""
			if timePos < len(row) {
				timeText = row[timePos].Text
			}
			current = &gridSession{dayOffset: dayOffset, timeText: timeText}
		}
		if cell.Text != "" {
			current.cells = append(current.cells, cell)
		}
		if cell.BottomBorder {
			flush()
		}
	}
	flush()
	return sessions
}

func sessionToRecord(session gridSession, weekStart time.Time, cfg *Config) (rawRecord, bool) {
	fields := make(map[string]string)

	translationItalic := cfg.Setting("translation") == "italic"
	for _, cell := range session.cells {
		switch classifyGridCell(cell) {
		case gridCellTitle:
			title, episode := StripEpisodeSuffix(cell.Text)
			if _, exists := fields["localized_title"]; !exists {
				fields["localized_title"] = title
				if episode != nil {
					fields["episode"] = strconv.Itoa(*episode)
				}
			}
		case gridCellTranslation:
			if translationItalic {
				if _, exists := fields["original_title"]; !exists {
					fields["original_title"] = cell.Text
				}
			}
		case gridCellEpisodeNumber:
			if _, exists := fields["episode"]; !exists {
				m := episodeNumberPattern.FindStringSubmatch(cell.Text)
				fields["episode"] = m[1]
			}
		case gridCellEpisodeTitle:
			if _, exists := fields["localized_episode_synopsis"]; !exists {
				fields["localized_episode_synopsis"] = cell.Text
			}
		}
	}

	if fields["localized_title"] == "" || session.timeText == "" {
		return rawRecord{}, false
	}

	day := weekStart.AddDate(0, 0, session.dayOffset)
	fields["date"] = day.Format("02/01/2006")
	fields["time"] = session.timeText

	return rawRecord{Fields: fields, SourceRow: 0}, true
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (week-1)*7)
}
