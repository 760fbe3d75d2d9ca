package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"immoeliza/server/internal/models"
)

// ReadTable loads a raw listings table from path, dispatching on the file
// extension. Excel workbooks are read through their first sheet, anything
// else is treated as CSV.
func ReadTable(path string) (*models.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		return ReadCSV(path)
	}
}

// buildTable turns a header plus data records into a raw table, verifying
// that every required column is present.
func buildTable(header []string, records [][]string) (*models.RawTable, error) {
	columns := normalizeHeader(header)
	if err := checkRequiredColumns(columns); err != nil {
		return nil, err
	}

	table := &models.RawTable{
		Columns: columns,
		Rows:    make([]models.RawListing, 0, len(records)),
	}
	for _, record := range records {
		table.Rows = append(table.Rows, rowFromRecord(columns, record))
	}
	return table, nil
}

// normalizeHeader trims header cells and strips a UTF-8 BOM from the first
// one, which spreadsheet exports frequently carry.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "﻿")
		}
		columns[i] = strings.TrimSpace(name)
	}
	return columns
}

func checkRequiredColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, name := range columns {
		present[name] = true
	}
	var missing []string
	for _, name := range models.RequiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("input is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func rowFromRecord(columns []string, record []string) models.RawListing {
	var row models.RawListing
	for i, name := range columns {
		var value string
		if i < len(record) {
			value = record[i]
		}
		switch name {
		case models.ColumnPropertyID:
			row.PropertyID = value
		case models.ColumnPrice:
			row.Price = value
		case models.ColumnLivingArea:
			row.LivingArea = value
		case models.ColumnNumberRooms:
			row.NumberRooms = value
		case models.ColumnFacades:
			row.Facades = value
		case models.ColumnPostalCode:
			row.PostalCode = value
		case models.ColumnProvince:
			row.Province = value
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[name] = value
		}
	}
	return row
}
