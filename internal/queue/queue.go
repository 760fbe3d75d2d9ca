package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"immoeliza/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// ListingQueue is an in-memory queue of cleaned listing batches on their
// way to persistence
type ListingQueue struct {
	items    chan []*models.Listing
	done     chan struct{}
	maxSize  int
	workers  int
	closed   bool
	mu       sync.RWMutex
	pending  sync.WaitGroup
	logger   *logrus.Logger
	handlers []func([]*models.Listing) error
}

// NewListingQueue creates a queue with the specified buffer size and
// number of dispatch workers
func NewListingQueue(bufferSize, workers int, logger *logrus.Logger) *ListingQueue {
	if workers <= 0 {
		workers = 1
	}
	return &ListingQueue{
		items:    make(chan []*models.Listing, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		workers:  workers,
		logger:   logger,
		handlers: make([]func([]*models.Listing) error, 0),
	}
}

// Push adds a batch of listings to the queue
func (q *ListingQueue) Push(listings []*models.Listing) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send so a full queue surfaces as backpressure
	q.pending.Add(1)
	select {
	case q.items <- listings:
		q.logger.WithField("batch_size", len(listings)).Debug("Pushed batch to queue")
		return nil
	default:
		q.pending.Done()
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *ListingQueue) Subscribe(handler func([]*models.Listing) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *ListingQueue) Start() {
	for i := 0; i < q.workers; i++ {
		go q.process()
	}
}

// process handles one queue processing loop
func (q *ListingQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *ListingQueue) processBatch(batch []*models.Listing) {
	defer q.pending.Done()

	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Wait blocks until every accepted batch has been handed to all handlers.
// Call it before Close when no batch may be lost.
func (q *ListingQueue) Wait() {
	q.pending.Wait()
}

// Close stops the queue and prevents new items from being added. Batches
// still buffered at that point are dropped.
func (q *ListingQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *ListingQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *ListingQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
