package cleaner

import (
	"immoeliza/server/internal/models"
)

// DefaultIQRMultiplier is the classic Tukey fence factor.
const DefaultIQRMultiplier = 1.5

// Cleaner runs the full cleaning pipeline over an in-memory listings table.
// It is a pure transformation: the input table is never mutated and every
// run produces a fresh output table.
type Cleaner struct {
	iqrMultiplier float64
}

// Summary counts what each stage of a cleaning run did.
type Summary struct {
	RowsIn  int
	RowsOut int

	DuplicatesDropped      int
	MissingProvinceDropped int
	IncompleteRowsDropped  int

	PriceOutliers      int
	LivingAreaOutliers int

	PriceBounds      Bounds
	LivingAreaBounds Bounds
}

// NewCleaner creates a cleaner with the given IQR multiplier. Values <= 0
// fall back to the default of 1.5.
func NewCleaner(iqrMultiplier float64) *Cleaner {
	if iqrMultiplier <= 0 {
		iqrMultiplier = DefaultIQRMultiplier
	}
	return &Cleaner{iqrMultiplier: iqrMultiplier}
}

// Clean applies the pipeline stages in order:
//  1. trim whitespace on every value, empty values become null
//  2. drop duplicate property_id rows, keeping the first occurrence
//  3. coerce numeric fields, normalize postal codes to text
//  4. drop rows without a province
//  5. derive price_per_m2
//  6. null out price/living_area values outside their IQR fences
//  7. drop rows whose price or living_area is now null
func (c *Cleaner) Clean(table *models.RawTable) (*models.CleanTable, Summary) {
	var summary Summary
	if table == nil {
		return &models.CleanTable{}, summary
	}
	summary.RowsIn = len(table.Rows)

	rows := normalizeStrings(table.Rows)
	rows, summary.DuplicatesDropped = deduplicate(rows)
	listings := coerceTypes(rows)
	listings, summary.MissingProvinceDropped = dropMissingProvince(listings)
	derivePricePerM2(listings)

	summary.PriceBounds = computeBounds(collectPrices(listings), c.iqrMultiplier)
	summary.LivingAreaBounds = computeBounds(collectLivingAreas(listings), c.iqrMultiplier)
	summary.PriceOutliers = nullPriceOutliers(listings, summary.PriceBounds)
	summary.LivingAreaOutliers = nullLivingAreaOutliers(listings, summary.LivingAreaBounds)

	listings, summary.IncompleteRowsDropped = dropIncomplete(listings)
	summary.RowsOut = len(listings)

	return &models.CleanTable{
		Columns: outputColumns(table.Columns),
		Rows:    listings,
	}, summary
}

// outputColumns preserves the input column order and appends the derived
// price_per_m2 column unless the input already carried one.
func outputColumns(input []string) []string {
	columns := make([]string, 0, len(input)+1)
	hasDerived := false
	for _, col := range input {
		if col == models.ColumnPricePerM2 {
			hasDerived = true
		}
		columns = append(columns, col)
	}
	if !hasDerived {
		columns = append(columns, models.ColumnPricePerM2)
	}
	return columns
}
