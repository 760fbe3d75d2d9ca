package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immoeliza/server/config"
	"immoeliza/server/internal/api"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/processor"
	"immoeliza/server/internal/queue"
	"immoeliza/server/internal/runner"
	"immoeliza/server/internal/scheduler"
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

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if !cfg.Database.Enabled {
		logger.Fatal("The API server requires the database, set DATABASE_ENABLED=true")
	}

	// Initialize database
	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gormDB, err := database.OpenGorm(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database for batch processing")
	}

	// Start the batch persistence pipeline
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, cfg.BatchProcessing.ProcessorCount, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, listingQueue, cfg, logger)
	batchProcessor.Start()
	listingQueue.Start()
	defer listingQueue.Close()

	notifier := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Enabled, logger)
	cleaningRunner := runner.NewRunner(cfg, db, listingQueue, notifier, logger)

	// Schedule periodic cleaning runs
	sched := scheduler.NewScheduler(cleaningRunner, cfg, logger)
	sched.Start()
	defer sched.Stop()

	// Initialize router
	router := gin.Default()
	api.SetupRoutes(router, db, cleaningRunner, logger)

	logger.Infof("Starting server on port %d", cfg.HTTP.Port)
	if err := router.Run(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
