package processor

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"immoeliza/server/config"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/models"
	"immoeliza/server/internal/queue"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Schema is owned by the raw layer, gorm only maps it
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.Close())

	gdb, err := database.OpenGorm(dbPath)
	require.NoError(t, err)
	return gdb
}

func testListing(id string, price, area float64) *models.Listing {
	ratio := price / area
	province := "Antwerp"
	return &models.Listing{
		PropertyID: &id,
		Price:      &price,
		LivingArea: &area,
		Province:   &province,
		PricePerM2: &ratio,
	}
}

func TestBatchProcessingIntegration(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.MaxBatchSize = 100
	logger := logrus.New()

	// Create components
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, cfg.BatchProcessing.ProcessorCount, logger)
	proc := NewBatchProcessor(db, listingQueue, cfg, logger)

	// Start processing
	proc.Start()
	defer proc.Stop()
	listingQueue.Start()

	// Push two batches
	first := []*models.Listing{
		testListing("A1", 350000, 140),
		testListing("A2", 199000, 95),
	}
	second := []*models.Listing{
		testListing("B1", 420000, 160),
	}
	require.NoError(t, listingQueue.Push(first))
	require.NoError(t, listingQueue.Push(second))

	// Wait until everything is persisted
	listingQueue.Wait()
	require.NoError(t, listingQueue.Close())

	// Verify listings were stored
	for _, expected := range append(first, second...) {
		var stored database.ListingRecord
		result := db.Where("property_id = ?", *expected.PropertyID).First(&stored)
		assert.NoError(t, result.Error)
		require.NotNil(t, stored.Price)
		assert.Equal(t, *expected.Price, *stored.Price)
		require.NotNil(t, stored.Province)
		assert.Equal(t, "Antwerp", *stored.Province)
	}
}

func TestBatchProcessingWithConcurrency(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 4
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.MaxBatchSize = 50
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	// Create components
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, cfg.BatchProcessing.ProcessorCount, logger)
	proc := NewBatchProcessor(db, listingQueue, cfg, logger)

	// Start processing
	proc.Start()
	defer proc.Stop()
	listingQueue.Start()

	// Push batches concurrently
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			batch := make([]*models.Listing, 0, 20)
			for j := 0; j < 20; j++ {
				id := fmt.Sprintf("P%d-%d", n, j)
				batch = append(batch, testListing(id, float64(200000+n*10000+j*100), 100))
			}
			assert.NoError(t, listingQueue.Push(batch))
		}(i)
	}
	wg.Wait()

	// Wait until everything is persisted
	listingQueue.Wait()
	require.NoError(t, listingQueue.Close())

	var count int64
	require.NoError(t, db.Model(&database.ListingRecord{}).Count(&count).Error)
	assert.Equal(t, int64(100), count)
}

func TestBatchProcessingUpsertsExistingListings(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 1
	cfg.BatchProcessing.MaxRetries = 1
	logger := logrus.New()

	listingQueue := queue.NewListingQueue(10, 1, logger)
	proc := NewBatchProcessor(db, listingQueue, cfg, logger)
	proc.Start()
	defer proc.Stop()
	listingQueue.Start()

	require.NoError(t, listingQueue.Push([]*models.Listing{testListing("A1", 300000, 120)}))
	listingQueue.Wait()
	require.NoError(t, listingQueue.Push([]*models.Listing{testListing("A1", 280000, 120)}))
	listingQueue.Wait()
	require.NoError(t, listingQueue.Close())

	// Same property updated, not duplicated
	var count int64
	require.NoError(t, db.Model(&database.ListingRecord{}).Where("property_id = ?", "A1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored database.ListingRecord
	require.NoError(t, db.Where("property_id = ?", "A1").First(&stored).Error)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 280000.0, *stored.Price)
}
