// Package queue carries ingest jobs over RabbitMQ, decoupling the
// drop-dir watcher from the database writers.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RabbitMQConfig holds broker connection settings.
type RabbitMQConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	VHost     string
	Heartbeat time.Duration
}

// RabbitMQ is a single-queue client with a durable queue declaration.
type RabbitMQ struct {
	config    *RabbitMQConfig
	queueName string
	logger    *logrus.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewRabbitMQ connects to the broker and declares the queue.
func NewRabbitMQ(config *RabbitMQConfig, queueName string, prefetchCount int, logger *logrus.Logger) (*RabbitMQ, error) {
	if config.Heartbeat == 0 {
		config.Heartbeat = 10 * time.Second
	}
	if prefetchCount <= 0 {
		prefetchCount = 1
	}

	mq := &RabbitMQ{
		config:    config,
		queueName: queueName,
		logger:    logger,
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		config.User, config.Password, config.Host, config.Port, config.VHost)

	conn, err := amqp.DialConfig(url, amqp.Config{Heartbeat: config.Heartbeat})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.Qos(prefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	mq.conn = conn
	mq.channel = channel

	logger.WithFields(logrus.Fields{
		"host":  config.Host,
		"queue": queueName,
	}).Info("Connected to RabbitMQ")

	return mq, nil
}

// Publish sends a persistent message to the queue.
func (mq *RabbitMQ) Publish(ctx context.Context, body []byte) error {
	mq.mu.RLock()
	defer mq.mu.RUnlock()

	if mq.closed {
		return fmt.Errorf("rabbitmq client is closed")
	}

	return mq.channel.PublishWithContext(ctx, "", mq.queueName, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

// Consume opens the delivery channel with manual acks.
func (mq *RabbitMQ) Consume() (<-chan amqp.Delivery, error) {
	mq.mu.RLock()
	defer mq.mu.RUnlock()

	if mq.closed {
		return nil, fmt.Errorf("rabbitmq client is closed")
	}

	return mq.channel.Consume(mq.queueName, "", false, false, false, false, nil)
}

// Close shuts down the channel and connection.
func (mq *RabbitMQ) Close() error {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return nil
	}
	mq.closed = true

	if mq.channel != nil {
		mq.channel.Close()
	}
	if mq.conn != nil {
		return mq.conn.Close()
	}
	return nil
}
