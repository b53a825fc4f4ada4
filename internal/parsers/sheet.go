package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readSheetRows loads the first worksheet of an xlsx or legacy xls file as
// a row-major string matrix. Cell values are the displayed text; date and
// time cells that render as serial numbers are handled downstream.
func readSheetRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSXRows(path)
	case ".xls":
		return readXLSRows(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet %q", filepath.Base(path))
	}
}

func readXLSXRows(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %q has no sheets", filepath.Base(path))
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

func readXLSRows(path string) ([][]string, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls %q has no sheets", filepath.Base(path))
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		width := row.LastCol()
		cells := make([]string, width)
		for j := row.FirstCol(); j < width; j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// gridCell is one weekly-grid cell with the style attributes the grid
// variant classifies on.
type gridCell struct {
	Text         string
	Bold         bool
	Italic       bool
	TopBorder    bool
	BottomBorder bool
}

// readGridCells loads the first worksheet of an xlsx file with per-cell
// font and border attributes. The weekly grid format encodes structure in
// styling, so only xlsx sources are supported.
func readGridCells(path string) ([][]gridCell, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" && ext != ".xlsm" {
		return nil, fmt.Errorf("weekly grid requires xlsx, got %q", filepath.Base(path))
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %q has no sheets", filepath.Base(path))
	}
	sheet := sheets[0]
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	grid := make([][]gridCell, len(rows))
	for r, row := range rows {
		grid[r] = make([]gridCell, len(row))
		for c, text := range row {
			cell := gridCell{Text: strings.TrimSpace(text)}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("cell name %d,%d: %w", c, r, err)
			}
			styleID, err := file.GetCellStyle(sheet, axis)
			if err == nil && styleID != 0 {
				if style, err := file.GetStyle(styleID); err == nil && style != nil {
					if style.Font != nil {
						cell.Bold = style.Font.Bold
						cell.Italic = style.Font.Italic
					}
					for _, border := range style.Border {
						if border.Style == 0 {
							continue
						}
						switch border.Type {
						case "top":
							cell.TopBorder = true
						case "bottom":
							cell.BottomBorder = true
						}
					}
				}
			}
			grid[r][c] = cell
		}
	}
	return grid, nil
}
