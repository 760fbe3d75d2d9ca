package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Create listings table
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id TEXT UNIQUE NOT NULL,
			price REAL,
			living_area REAL,
			number_rooms REAL,
			facades REAL,
			postal_code TEXT,
			province TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %v", err)
	}

	// Create runs table
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			rows_in INTEGER NOT NULL,
			rows_out INTEGER NOT NULL,
			duplicates_dropped INTEGER NOT NULL,
			missing_province_dropped INTEGER NOT NULL,
			incomplete_rows_dropped INTEGER NOT NULL,
			price_outliers INTEGER NOT NULL,
			living_area_outliers INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %v", err)
	}

	// Add the derived price_per_m2 column if it doesn't exist
	_, err = d.db.Exec(`
		ALTER TABLE listings
		ADD COLUMN price_per_m2 REAL;
	`)
	if err != nil && err.Error() != "duplicate column name: price_per_m2" {
		return err
	}

	// Create lookup indexes
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_province
		ON listings(province);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_price
		ON listings(price);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_started_at
		ON runs(started_at);
	`)
	if err != nil {
		return err
	}

	return nil
}
