package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"immoeliza/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// GetListings returns cleaned listings, optionally filtered by province
// and price range. Empty filter values mean "no constraint"; limit <= 0
// falls back to 100 rows.
func (d *Database) GetListings(province, minPrice, maxPrice string, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
        SELECT
            property_id,
            price,
            living_area,
            number_rooms,
            facades,
            postal_code,
            province,
            price_per_m2
        FROM listings
        WHERE (? = '' OR LOWER(province) = LOWER(?))
        AND (? = '' OR price >= CAST(? AS REAL))
        AND (? = '' OR price <= CAST(? AS REAL))
        ORDER BY property_id
        LIMIT ?
    `
	var args []interface{}
	args = append(args,
		province, province, // For province filter
		minPrice, minPrice, // For lower price bound
		maxPrice, maxPrice, // For upper price bound
		limit,
	)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		var propertyID, postalCode, provinceVal sql.NullString
		var price, livingArea, numberRooms, facades, pricePerM2 sql.NullFloat64

		err := rows.Scan(
			&propertyID,
			&price,
			&livingArea,
			&numberRooms,
			&facades,
			&postalCode,
			&provinceVal,
			&pricePerM2,
		)
		if err != nil {
			return nil, err
		}

		// Handle nullable string fields
		if propertyID.Valid {
			v := propertyID.String
			l.PropertyID = &v
		}
		if postalCode.Valid {
			v := postalCode.String
			l.PostalCode = &v
		}
		if provinceVal.Valid {
			v := provinceVal.String
			l.Province = &v
		}

		// Handle nullable numeric fields
		if price.Valid {
			v := price.Float64
			l.Price = &v
		}
		if livingArea.Valid {
			v := livingArea.Float64
			l.LivingArea = &v
		}
		if numberRooms.Valid {
			v := numberRooms.Float64
			l.NumberRooms = &v
		}
		if facades.Valid {
			v := facades.Float64
			l.Facades = &v
		}
		if pricePerM2.Valid {
			v := pricePerM2.Float64
			l.PricePerM2 = &v
		}

		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (d *Database) GetListingStats(province string) (models.ListingStats, error) {
	query := `
        WITH listing_data AS (
            SELECT
                price,
                living_area
            FROM listings
            WHERE price IS NOT NULL
            AND (? = '' OR LOWER(province) = LOWER(?))
        )
        SELECT
            COUNT(*) as total_listings,
            COALESCE(AVG(price), 0) as average_price,
            COALESCE(AVG(CAST(price AS FLOAT) / NULLIF(living_area, 0)), 0) as average_price_per_m2,
            COALESCE(MIN(price), 0) as min_price,
            COALESCE(MAX(price), 0) as max_price
        FROM listing_data
    `
	var stats models.ListingStats
	err := d.db.QueryRow(query, province, province).Scan(
		&stats.TotalListings,
		&stats.AveragePrice,
		&stats.AveragePricePerM2,
		&stats.MinPrice,
		&stats.MaxPrice,
	)
	return stats, err
}

func (d *Database) GetProvinceStats() ([]models.ProvinceStats, error) {
	query := `
        SELECT
            province,
            COUNT(*) as listing_count,
            COALESCE(AVG(price), 0) as average_price,
            COALESCE(AVG(CAST(price AS FLOAT) / NULLIF(living_area, 0)), 0) as average_price_per_m2
        FROM listings
        WHERE province IS NOT NULL
        GROUP BY province
        ORDER BY listing_count DESC, province
    `
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ProvinceStats
	for rows.Next() {
		var s models.ProvinceStats
		if err := rows.Scan(&s.Province, &s.ListingCount, &s.AveragePrice, &s.AveragePricePerM2); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// ProvinceExists reports whether any stored listing carries the province
func (d *Database) ProvinceExists(province string) (bool, error) {
	var exists bool
	err := d.db.QueryRow("SELECT EXISTS(SELECT 1 FROM listings WHERE LOWER(province) = LOWER(?) LIMIT 1)", province).Scan(&exists)
	return exists, err
}

// InsertRun persists the report of one cleaning run
func (d *Database) InsertRun(report *models.RunReport) error {
	_, err := d.db.Exec(`
        INSERT INTO runs
        (id, input_path, output_path, started_at, finished_at, rows_in, rows_out,
         duplicates_dropped, missing_province_dropped, incomplete_rows_dropped,
         price_outliers, living_area_outliers)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		report.ID,
		report.InputPath,
		report.OutputPath,
		report.StartedAt.Format(time.RFC3339Nano),
		report.FinishedAt.Format(time.RFC3339Nano),
		report.RowsIn,
		report.RowsOut,
		report.DuplicatesDropped,
		report.MissingProvinceDropped,
		report.IncompleteRowsDropped,
		report.PriceOutliers,
		report.LivingAreaOutliers,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %v", err)
	}
	return nil
}

// GetRuns returns the most recent cleaning runs, newest first
func (d *Database) GetRuns(limit int) ([]models.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
        SELECT id, input_path, output_path, started_at, finished_at, rows_in, rows_out,
               duplicates_dropped, missing_province_dropped, incomplete_rows_dropped,
               price_outliers, living_area_outliers
        FROM runs
        ORDER BY started_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.RunReport
	for rows.Next() {
		var r models.RunReport
		var startedAt, finishedAt string
		err := rows.Scan(
			&r.ID,
			&r.InputPath,
			&r.OutputPath,
			&startedAt,
			&finishedAt,
			&r.RowsIn,
			&r.RowsOut,
			&r.DuplicatesDropped,
			&r.MissingProvinceDropped,
			&r.IncompleteRowsDropped,
			&r.PriceOutliers,
			&r.LivingAreaOutliers,
		)
		if err != nil {
			return nil, err
		}

		// Parse timestamps if they're valid
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
			r.FinishedAt = t
		}

		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}
