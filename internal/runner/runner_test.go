package runner

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoeliza/server/config"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/models"
	"immoeliza/server/internal/processor"
	"immoeliza/server/internal/queue"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(inputPath, outputPath string) *config.Config {
	cfg := &config.Config{}
	cfg.Cleaning.InputPath = inputPath
	cfg.Cleaning.OutputPath = outputPath
	cfg.Cleaning.IQRMultiplier = 1.5
	cfg.BatchProcessing.MaxBatchSize = 2
	cfg.BatchProcessing.MaxBatchWaitTime = 1
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 2
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func writeRawCSV(t *testing.T, dir string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, "raw_listings.csv")
	content := "property_id,price,living_area,number_rooms,facades,postal_code,province\n"
	for _, row := range rows {
		content += row + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Test a full run: ingest, clean, export, persist listings and the run report
func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeRawCSV(t, dir, []string{
		"A1,100000,50,3,2,1000.0,Brussels",
		"A1,999000,50,3,2,1000.0,Brussels",
		"A2,105000,50,2,2,2000,Antwerp",
		"A3,110000,50,4,3,4000,Liège",
		"A4,999999,50,2,2,1000,",
		"A5,abc,50,2,2,1000,Antwerp",
		"A9,1000000,50,2,2,1000,Brussels",
	})
	outputPath := filepath.Join(dir, "cleaned_listings.csv")
	cfg := testConfig(inputPath, outputPath)

	dbPath := filepath.Join(dir, "test.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations())

	gormDB, err := database.OpenGorm(dbPath)
	require.NoError(t, err)

	q := queue.NewListingQueue(10, cfg.BatchProcessing.ProcessorCount, testLogger())
	defer q.Close()
	proc := processor.NewBatchProcessor(gormDB, q, cfg, testLogger())
	proc.Start()
	q.Start()

	runner := NewRunner(cfg, db, q, nil, testLogger())
	report, err := runner.Run()
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, inputPath, report.InputPath)
	assert.Equal(t, outputPath, report.OutputPath)
	assert.Equal(t, 7, report.RowsIn)
	assert.Equal(t, 3, report.RowsOut)
	assert.Equal(t, 1, report.DuplicatesDropped)
	assert.Equal(t, 1, report.MissingProvinceDropped)
	assert.Equal(t, 1, report.PriceOutliers)
	assert.Equal(t, 0, report.LivingAreaOutliers)
	assert.Equal(t, 2, report.IncompleteRowsDropped)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	expected := "property_id,price,living_area,number_rooms,facades,postal_code,province,price_per_m2\n" +
		"A1,100000,50,3,2,1000,Brussels,2000\n" +
		"A2,105000,50,2,2,2000,Antwerp,2100\n" +
		"A3,110000,50,4,3,4000,Liège,2200\n"
	assert.Equal(t, expected, string(content))

	listings, err := db.GetListings("", "", "", 0)
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "A1", *listings[0].PropertyID)
	assert.Equal(t, 2000.0, *listings[0].PricePerM2)

	runs, err := db.GetRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.ID, runs[0].ID)
	assert.Equal(t, report.RowsOut, runs[0].RowsOut)
	assert.Equal(t, report.IncompleteRowsDropped, runs[0].IncompleteRowsDropped)
}

// Test that the runner works with no queue, database or notifier wired
func TestRunner_RunWithoutPersistence(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeRawCSV(t, dir, []string{
		"A1,100000,50,3,2,1000,Brussels",
		"A2,105000,50,2,2,2000,Antwerp",
	})
	outputPath := filepath.Join(dir, "cleaned_listings.csv")
	cfg := testConfig(inputPath, outputPath)

	runner := NewRunner(cfg, nil, nil, nil, testLogger())
	report, err := runner.Run()
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsIn)
	assert.Equal(t, 2, report.RowsOut)

	_, err = os.Stat(outputPath)
	assert.NoError(t, err)
}

func TestRunner_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "does_not_exist.csv"), filepath.Join(dir, "out.csv"))

	runner := NewRunner(cfg, nil, nil, nil, testLogger())
	report, err := runner.Run()
	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "failed to read input")
}

// Test that a full queue makes the runner wait and retry instead of dropping rows
func TestRunner_EnqueueRetriesWhenFull(t *testing.T) {
	dir := t.TempDir()
	rows := []string{
		"B1,200000,100,3,2,1000,Brussels",
		"B2,200000,100,3,2,1000,Brussels",
		"B3,200000,100,3,2,1000,Brussels",
		"B4,200000,100,3,2,1000,Brussels",
		"B5,200000,100,3,2,1000,Brussels",
		"B6,200000,100,3,2,1000,Brussels",
	}
	inputPath := writeRawCSV(t, dir, rows)
	cfg := testConfig(inputPath, filepath.Join(dir, "out.csv"))
	cfg.BatchProcessing.MaxBatchSize = 1

	q := queue.NewListingQueue(1, 1, testLogger())
	defer q.Close()

	var mu sync.Mutex
	seen := make(map[string]bool)
	q.Subscribe(func(batch []*models.Listing) error {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		for _, listing := range batch {
			seen[*listing.PropertyID] = true
		}
		return nil
	})
	q.Start()

	runner := NewRunner(cfg, nil, q, nil, testLogger())
	report, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 6, report.RowsOut)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 6)
}
