package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// IngestHandler processes one queued ingest job.
type IngestHandler func(ctx context.Context, msg *IngestMessage) error

// Consumer runs a pool of workers over the ingest queue.
type Consumer struct {
	mq         *RabbitMQ
	logger     *logrus.Logger
	handler    IngestHandler
	workerPool int

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	workerWg sync.WaitGroup
}

func NewConsumer(mq *RabbitMQ, handler IngestHandler, workerPool int, logger *logrus.Logger) *Consumer {
	if workerPool <= 0 {
		workerPool = 1
	}
	return &Consumer{
		mq:         mq,
		logger:     logger,
		handler:    handler,
		workerPool: workerPool,
	}
}

// Start launches the worker pool.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Warn("Consumer already running, skipping start")
		return nil
	}
	c.running = true
	c.mu.Unlock()

	msgs, err := c.mq.Consume()
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for i := 0; i < c.workerPool; i++ {
		c.workerWg.Add(1)
		go c.worker(workerCtx, i, msgs)
	}

	c.logger.Infof("Consumer started with %d workers", c.workerPool)
	return nil
}

// Stop cancels the workers and waits for in-flight jobs.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.workerWg.Wait()
	c.logger.Info("Consumer stopped")
}

func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.workerWg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-msgs:
			if !ok {
				c.logger.Warnf("Worker %d: message channel closed", id)
				return
			}
			c.processMessage(ctx, id, delivery)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, workerID int, delivery amqp.Delivery) {
	var msg IngestMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.logger.WithError(err).Error("Failed to unmarshal ingest message")
		delivery.Nack(false, false)
		return
	}

	log := c.logger.WithFields(logrus.Fields{
		"worker_id":  workerID,
		"message_id": msg.MessageID,
		"sha256":     msg.SHA256,
	})
	log.Info("Processing ingest job")

	if err := c.handler(ctx, &msg); err != nil {
		log.WithError(err).Error("Ingest job failed")
		// Not requeued: a broken report stays broken, and the drop-dir
		// scan on restart re-covers transient cases.
		delivery.Nack(false, false)
		return
	}

	if err := delivery.Ack(false); err != nil {
		log.WithError(err).Warn("Failed to ack message")
	}
}
