package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"immoeliza/server/internal/models"
)

// WriteCSV writes a cleaned table to path as comma-separated values. The
// header comes straight from the table's column order and null values are
// rendered as empty cells. Parent directories are created as needed.
func WriteCSV(path string, table *models.CleanTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		f.Close()
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = renderValue(row, col)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func renderValue(row *models.Listing, column string) string {
	switch column {
	case models.ColumnPropertyID:
		return renderText(row.PropertyID)
	case models.ColumnPrice:
		return renderFloat(row.Price)
	case models.ColumnLivingArea:
		return renderFloat(row.LivingArea)
	case models.ColumnNumberRooms:
		return renderFloat(row.NumberRooms)
	case models.ColumnFacades:
		return renderFloat(row.Facades)
	case models.ColumnPostalCode:
		return renderText(row.PostalCode)
	case models.ColumnProvince:
		return renderText(row.Province)
	case models.ColumnPricePerM2:
		return renderFloat(row.PricePerM2)
	default:
		return renderText(row.Extra[column])
	}
}

func renderText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func renderFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
