package cleaner

import (
	"math"
	"strconv"
	"strings"

	"immoeliza/server/internal/models"
)

// normalizeStrings trims surrounding whitespace from every value of every
// row. The input rows are copied, not mutated.
func normalizeStrings(rows []models.RawListing) []models.RawListing {
	out := make([]models.RawListing, 0, len(rows))
	for _, row := range rows {
		clean := models.RawListing{
			PropertyID:  strings.TrimSpace(row.PropertyID),
			Price:       strings.TrimSpace(row.Price),
			LivingArea:  strings.TrimSpace(row.LivingArea),
			NumberRooms: strings.TrimSpace(row.NumberRooms),
			Facades:     strings.TrimSpace(row.Facades),
			PostalCode:  strings.TrimSpace(row.PostalCode),
			Province:    strings.TrimSpace(row.Province),
		}
		if len(row.Extra) > 0 {
			clean.Extra = make(map[string]string, len(row.Extra))
			for col, value := range row.Extra {
				clean.Extra[col] = strings.TrimSpace(value)
			}
		}
		out = append(out, clean)
	}
	return out
}

// deduplicate keeps the first row for each non-empty property_id. Rows
// without an identifier are never considered duplicates of each other.
func deduplicate(rows []models.RawListing) ([]models.RawListing, int) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.RawListing, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if row.PropertyID != "" {
			if _, dup := seen[row.PropertyID]; dup {
				dropped++
				continue
			}
			seen[row.PropertyID] = struct{}{}
		}
		out = append(out, row)
	}
	return out, dropped
}

// coerceTypes converts raw string rows into typed listings. Numeric fields
// that fail to parse become null rather than aborting the run, matching the
// tolerant coercion the rest of the pipeline expects.
func coerceTypes(rows []models.RawListing) []*models.Listing {
	out := make([]*models.Listing, 0, len(rows))
	for _, row := range rows {
		listing := &models.Listing{
			PropertyID:  textOrNil(row.PropertyID),
			Price:       parseNumeric(row.Price),
			LivingArea:  parseNumeric(row.LivingArea),
			NumberRooms: parseNumeric(row.NumberRooms),
			Facades:     parseNumeric(row.Facades),
			PostalCode:  normalizePostalCode(row.PostalCode),
			Province:    textOrNil(row.Province),
		}
		if len(row.Extra) > 0 {
			listing.Extra = make(map[string]*string, len(row.Extra))
			for col, value := range row.Extra {
				listing.Extra[col] = textOrNil(value)
			}
		}
		out = append(out, listing)
	}
	return out
}

func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseNumeric parses a trimmed string as a float. Empty strings,
// unparseable values, NaN and infinities all map to null so that missing
// data stays a single, unambiguous marker.
func parseNumeric(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// normalizePostalCode renders a postal code as integer text. Source files
// frequently carry codes as floats ("1000.0"), so the value is parsed
// numerically, truncated and re-rendered without a fractional part.
func normalizePostalCode(s string) *string {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	code := strconv.FormatFloat(math.Trunc(v), 'f', -1, 64)
	return &code
}

func dropMissingProvince(listings []*models.Listing) ([]*models.Listing, int) {
	out := make([]*models.Listing, 0, len(listings))
	dropped := 0
	for _, listing := range listings {
		if listing.Province == nil {
			dropped++
			continue
		}
		out = append(out, listing)
	}
	return out, dropped
}

// derivePricePerM2 computes price divided by living area. The result is
// null when either operand is null or the living area is zero.
func derivePricePerM2(listings []*models.Listing) {
	for _, listing := range listings {
		if listing.Price == nil || listing.LivingArea == nil || *listing.LivingArea == 0 {
			listing.PricePerM2 = nil
			continue
		}
		ratio := *listing.Price / *listing.LivingArea
		listing.PricePerM2 = &ratio
	}
}

// dropIncomplete removes rows missing either of the two fields every
// downstream consumer depends on.
func dropIncomplete(listings []*models.Listing) ([]*models.Listing, int) {
	out := make([]*models.Listing, 0, len(listings))
	dropped := 0
	for _, listing := range listings {
		if listing.Price == nil || listing.LivingArea == nil {
			dropped++
			continue
		}
		out = append(out, listing)
	}
	return out, dropped
}
