package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"immoeliza/server/config"
	"immoeliza/server/internal/cleaner"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/export"
	"immoeliza/server/internal/ingest"
	"immoeliza/server/internal/models"
	"immoeliza/server/internal/queue"
	"immoeliza/server/internal/telegram"
)

// Runner drives a full cleaning run from raw input file to cleaned output
type Runner struct {
	logger   *logrus.Logger
	config   *config.Config
	cleaner  *cleaner.Cleaner
	queue    *queue.ListingQueue
	db       *database.Database
	notifier *telegram.Service
}

// NewRunner creates a runner. Queue, database and notifier are optional;
// passing nil skips persistence or notification for the run.
func NewRunner(cfg *config.Config, db *database.Database, q *queue.ListingQueue, notifier *telegram.Service, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Runner{
		logger:   logger,
		config:   cfg,
		cleaner:  cleaner.NewCleaner(cfg.Cleaning.IQRMultiplier),
		queue:    q,
		db:       db,
		notifier: notifier,
	}
}

// Run executes one cleaning pass over the configured input file
func (r *Runner) Run() (*models.RunReport, error) {
	report := &models.RunReport{
		ID:         uuid.New().String(),
		InputPath:  r.config.Cleaning.InputPath,
		OutputPath: r.config.Cleaning.OutputPath,
		StartedAt:  time.Now(),
	}

	r.logger.WithFields(logrus.Fields{
		"run_id": report.ID,
		"input":  report.InputPath,
		"output": report.OutputPath,
	}).Info("Starting cleaning run")

	table, err := ingest.ReadTable(report.InputPath)
	if err != nil {
		return nil, r.fail(report, fmt.Errorf("failed to read input: %w", err))
	}

	clean, summary := r.cleaner.Clean(table)
	if summary.RowsOut == 0 {
		r.logger.WithField("run_id", report.ID).Warn("Cleaning produced no rows, writing a header-only file")
	}

	if err := export.WriteCSV(report.OutputPath, clean); err != nil {
		return nil, r.fail(report, fmt.Errorf("failed to write output: %w", err))
	}

	if r.queue != nil {
		r.enqueueListings(clean.Rows)
		// Block until every pushed batch has been handed to the processors
		// so the run report never races the database writes.
		r.queue.Wait()
	}

	report.FinishedAt = time.Now()
	report.RowsIn = summary.RowsIn
	report.RowsOut = summary.RowsOut
	report.DuplicatesDropped = summary.DuplicatesDropped
	report.MissingProvinceDropped = summary.MissingProvinceDropped
	report.IncompleteRowsDropped = summary.IncompleteRowsDropped
	report.PriceOutliers = summary.PriceOutliers
	report.LivingAreaOutliers = summary.LivingAreaOutliers

	if r.db != nil {
		if err := r.db.InsertRun(report); err != nil {
			r.logger.WithError(err).Error("Failed to record cleaning run")
		}
	}

	r.logger.WithFields(logrus.Fields{
		"run_id":   report.ID,
		"rows_in":  report.RowsIn,
		"rows_out": report.RowsOut,
		"duration": report.Duration().String(),
	}).Info("Cleaning run completed")

	if r.notifier != nil {
		if err := r.notifier.NotifyRunCompleted(report); err != nil {
			r.logger.WithError(err).Error("Failed to send run notification")
		}
	}

	return report, nil
}

func (r *Runner) fail(report *models.RunReport, err error) error {
	r.logger.WithFields(logrus.Fields{
		"run_id": report.ID,
		"input":  report.InputPath,
	}).WithError(err).Error("Cleaning run failed")

	if r.notifier != nil {
		if notifyErr := r.notifier.NotifyRunFailed(report.InputPath, err); notifyErr != nil {
			r.logger.WithError(notifyErr).Error("Failed to send failure notification")
		}
	}

	return err
}

// enqueueListings hands cleaned rows to the batch queue in MaxBatchSize chunks.
// When the queue is full it waits MaxBatchWaitTime seconds between retries.
func (r *Runner) enqueueListings(rows []*models.Listing) {
	batchSize := r.config.BatchProcessing.MaxBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	wait := time.Duration(r.config.BatchProcessing.MaxBatchWaitTime) * time.Second

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var err error
		for attempt := 0; attempt <= r.config.BatchProcessing.MaxRetries; attempt++ {
			err = r.queue.Push(batch)
			if err == nil || !errors.Is(err, queue.ErrQueueFull) {
				break
			}
			r.logger.WithFields(logrus.Fields{
				"batch_size": len(batch),
				"attempt":    attempt + 1,
			}).Warn("Queue is full, waiting for capacity")
			time.Sleep(wait)
		}

		if err != nil {
			if errors.Is(err, queue.ErrQueueClosed) {
				r.logger.WithError(err).Error("Queue closed, stopping batch persistence")
				return
			}
			r.logger.WithError(err).WithField("batch_size", len(batch)).Error("Failed to enqueue batch")
		}
	}
}
