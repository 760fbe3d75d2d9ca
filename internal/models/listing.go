package models

// Column names the cleaning pipeline operates on. Any other input column is
// carried through untouched apart from whitespace trimming.
const (
	ColumnPropertyID  = "property_id"
	ColumnPrice       = "price"
	ColumnLivingArea  = "living_area"
	ColumnNumberRooms = "number_rooms"
	ColumnFacades     = "facades"
	ColumnPostalCode  = "postal_code"
	ColumnProvince    = "province"
	ColumnPricePerM2  = "price_per_m2"
)

// RequiredColumns lists the header fields the input file must carry.
var RequiredColumns = []string{
	ColumnPropertyID,
	ColumnPrice,
	ColumnLivingArea,
	ColumnNumberRooms,
	ColumnFacades,
	ColumnPostalCode,
	ColumnProvince,
}

// RawListing is a single input row exactly as read from disk. The known
// fields stay untyped text until the pipeline coerces them; Extra holds any
// additional input columns keyed by header name.
type RawListing struct {
	PropertyID  string
	Price       string
	LivingArea  string
	NumberRooms string
	Facades     string
	PostalCode  string
	Province    string
	Extra       map[string]string
}

// RawTable is the parsed input file: the header in input order plus one raw
// row per data line.
type RawTable struct {
	Columns []string
	Rows    []RawListing
}

// Listing is a cleaned, typed listing. Nil marks a value that was missing in
// the input or invalidated during cleaning.
type Listing struct {
	PropertyID  *string            `json:"property_id"`
	Price       *float64           `json:"price"`
	LivingArea  *float64           `json:"living_area"`
	NumberRooms *float64           `json:"number_rooms"`
	Facades     *float64           `json:"facades"`
	PostalCode  *string            `json:"postal_code"`
	Province    *string            `json:"province"`
	PricePerM2  *float64           `json:"price_per_m2"`
	Extra       map[string]*string `json:"-"`
}

// CleanTable is the pipeline output: the export column order (input columns
// followed by the derived price_per_m2) and the surviving listings.
type CleanTable struct {
	Columns []string
	Rows    []*Listing
}

// ListingStats aggregates the stored cleaned listings.
type ListingStats struct {
	TotalListings     int     `json:"total_listings"`
	AveragePrice      float64 `json:"average_price"`
	AveragePricePerM2 float64 `json:"average_price_per_m2"`
	MinPrice          float64 `json:"min_price"`
	MaxPrice          float64 `json:"max_price"`
}

// ProvinceStats aggregates stored listings for a single province.
type ProvinceStats struct {
	Province          string  `json:"province"`
	ListingCount      int     `json:"listing_count"`
	AveragePrice      float64 `json:"average_price"`
	AveragePricePerM2 float64 `json:"average_price_per_m2"`
}
