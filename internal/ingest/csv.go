package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"immoeliza/server/internal/models"
)

// ReadCSV loads a raw listings table from a comma-separated file. The first
// record is the header. Structural problems (missing file, no header,
// ragged rows, missing required columns) are fatal errors; value-level
// problems are left for the cleaning pipeline to deal with.
func ReadCSV(path string) (*models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already names the offending line
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records = append(records, record)
	}
	return buildTable(header, records)
}
