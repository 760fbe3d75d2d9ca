package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"immoeliza/server/internal/models"
)

// ListingRecord is the persisted shape of a cleaned listing
type ListingRecord struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	PropertyID  string    `gorm:"column:property_id"`
	Price       *float64  `gorm:"column:price"`
	LivingArea  *float64  `gorm:"column:living_area"`
	NumberRooms *float64  `gorm:"column:number_rooms"`
	Facades     *float64  `gorm:"column:facades"`
	PostalCode  *string   `gorm:"column:postal_code"`
	Province    *string   `gorm:"column:province"`
	PricePerM2  *float64  `gorm:"column:price_per_m2"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ListingRecord) TableName() string {
	return "listings"
}

// OpenGorm opens the write-side handle used for batch upserts. Schema
// management stays with RunMigrations; gorm only maps the tables. Its own
// logging is silenced so logrus remains the single log stream.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database for writing: %v", err)
	}
	return db, nil
}

// UpsertListings writes a batch of cleaned listings, updating existing
// rows in place by property_id. Listings without an identifier cannot be
// keyed and are skipped.
func UpsertListings(tx *gorm.DB, batch []*models.Listing) error {
	records := make([]ListingRecord, 0, len(batch))
	for _, listing := range batch {
		if listing == nil || listing.PropertyID == nil {
			continue
		}
		records = append(records, ListingRecord{
			PropertyID:  *listing.PropertyID,
			Price:       listing.Price,
			LivingArea:  listing.LivingArea,
			NumberRooms: listing.NumberRooms,
			Facades:     listing.Facades,
			PostalCode:  listing.PostalCode,
			Province:    listing.Province,
			PricePerM2:  listing.PricePerM2,
		})
	}
	if len(records) == 0 {
		return nil
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price",
			"living_area",
			"number_rooms",
			"facades",
			"postal_code",
			"province",
			"price_per_m2",
			"updated_at",
		}),
	}).Create(&records).Error
}
