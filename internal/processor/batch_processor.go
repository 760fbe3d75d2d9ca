package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"immoeliza/server/config"
	"immoeliza/server/internal/database"
	"immoeliza/server/internal/models"
	"immoeliza/server/internal/queue"
)

// TxRunner is the slice of *gorm.DB the processor depends on, kept
// narrow so tests can substitute a mock.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor persists batches of cleaned listings from the queue
type BatchProcessor struct {
	db     TxRunner
	logger *logrus.Logger
	config *config.Config
	queue  *queue.ListingQueue
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db TxRunner, queue *queue.ListingQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the processor as a handler on the queue
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
}

// Stop aborts the retry waits of any in-flight batches
func (p *BatchProcessor) Stop() {
	p.cancel()
}

// processBatch handles a single batch of listings with transaction and retry logic
func (p *BatchProcessor) processBatch(batch []*models.Listing) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertListings(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert listings batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d listings", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries+1, err)
}
