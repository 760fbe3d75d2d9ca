package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"immoeliza/server/config"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/processor"
	"immoeliza/server/internal/queue"
	"immoeliza/server/internal/runner"
	"immoeliza/server/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Flags default to the environment configuration and override it when set
	inputPath := flag.String("input", cfg.Cleaning.InputPath, "Path of the raw listings file (CSV or XLSX)")
	outputPath := flag.String("output", cfg.Cleaning.OutputPath, "Path the cleaned CSV is written to")
	iqrMultiplier := flag.Float64("iqr", cfg.Cleaning.IQRMultiplier, "IQR multiplier used to fence outliers")
	dbPath := flag.String("db", cfg.Database.Path, "Location of the SQLite database file")
	skipDB := flag.Bool("no-db", !cfg.Database.Enabled, "Skip persisting cleaned listings to the database")
	logLevel := flag.String("log-level", cfg.LogLevel, "Logging level: debug, info, warn or error")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	cfg.Cleaning.InputPath = *inputPath
	cfg.Cleaning.OutputPath = *outputPath
	cfg.Cleaning.IQRMultiplier = *iqrMultiplier
	cfg.Database.Path = *dbPath
	cfg.Database.Enabled = !*skipDB

	var db *database.Database
	var listingQueue *queue.ListingQueue

	if cfg.Database.Enabled {
		db, err = database.NewDatabase(cfg.Database.Path)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			logger.WithError(err).Fatal("Failed to run database migrations")
		}

		gormDB, err := database.OpenGorm(cfg.Database.Path)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open database for batch processing")
		}

		listingQueue = queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, cfg.BatchProcessing.ProcessorCount, logger)
		batchProcessor := processor.NewBatchProcessor(gormDB, listingQueue, cfg, logger)
		batchProcessor.Start()
		listingQueue.Start()
		defer listingQueue.Close()
	}

	notifier := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Enabled, logger)
	cleaningRunner := runner.NewRunner(cfg, db, listingQueue, notifier, logger)

	report, err := cleaningRunner.Run()
	if err != nil {
		logger.WithError(err).Fatal("Cleaning run failed")
	}

	logger.WithFields(logrus.Fields{
		"run_id":   report.ID,
		"rows_in":  report.RowsIn,
		"rows_out": report.RowsOut,
		"output":   report.OutputPath,
	}).Info("Cleaning run finished")
}
