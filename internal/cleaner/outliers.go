package cleaner

import (
	"math"
	"sort"

	"immoeliza/server/internal/models"
)

// Bounds holds the inclusive IQR fence for one column. Valid is false when
// the column had no non-null values and no fence could be computed.
type Bounds struct {
	Lower float64
	Upper float64
	Valid bool
}

// Contains reports whether v sits inside the fence. Values exactly on a
// bound are kept.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// computeBounds derives the [Q1 - k*IQR, Q3 + k*IQR] fence from the
// non-null values of a column. Both fences are always computed from the
// column as it stands before any outlier is removed.
func computeBounds(values []float64, multiplier float64) Bounds {
	if len(values) == 0 {
		return Bounds{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Lower: q1 - multiplier*iqr,
		Upper: q3 + multiplier*iqr,
		Valid: true,
	}
}

// quantile returns the p-th quantile of an ascending slice using linear
// interpolation between the two nearest ranks.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	idx := p * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func collectPrices(listings []*models.Listing) []float64 {
	values := make([]float64, 0, len(listings))
	for _, listing := range listings {
		if listing.Price != nil {
			values = append(values, *listing.Price)
		}
	}
	return values
}

func collectLivingAreas(listings []*models.Listing) []float64 {
	values := make([]float64, 0, len(listings))
	for _, listing := range listings {
		if listing.LivingArea != nil {
			values = append(values, *listing.LivingArea)
		}
	}
	return values
}

// nullPriceOutliers nulls prices outside the fence and reports how many
// values it cleared. Derived price_per_m2 values are cleared alongside so
// no ratio survives its numerator.
func nullPriceOutliers(listings []*models.Listing, bounds Bounds) int {
	if !bounds.Valid {
		return 0
	}
	nulled := 0
	for _, listing := range listings {
		if listing.Price == nil || bounds.Contains(*listing.Price) {
			continue
		}
		listing.Price = nil
		listing.PricePerM2 = nil
		nulled++
	}
	return nulled
}

// nullLivingAreaOutliers is the living_area counterpart of
// nullPriceOutliers.
func nullLivingAreaOutliers(listings []*models.Listing, bounds Bounds) int {
	if !bounds.Valid {
		return 0
	}
	nulled := 0
	for _, listing := range listings {
		if listing.LivingArea == nil || bounds.Contains(*listing.LivingArea) {
			continue
		}
		listing.LivingArea = nil
		listing.PricePerM2 = nil
		nulled++
	}
	return nulled
}
