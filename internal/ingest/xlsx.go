package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"immoeliza/server/internal/models"
)

// ReadXLSX loads a raw listings table from the first sheet of an Excel
// workbook. Cells are read as displayed text, so numeric formatting
// artifacts reach the pipeline the same way they would from a CSV export.
func ReadXLSX(path string) (*models.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}

	// GetRows trims trailing empty cells per row; buildTable pads the
	// missing columns back with empty values.
	return buildTable(rows[0], rows[1:])
}
