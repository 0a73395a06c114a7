package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IngestMessage queues one report file for ingestion.
type IngestMessage struct {
	MessageID  string `json:"message_id"`
	SHA256     string `json:"sha256"`
	ReportPath string `json:"report_path"`
}

// Producer publishes ingest jobs.
type Producer struct {
	mq     *RabbitMQ
	logger *logrus.Logger
}

func NewProducer(mq *RabbitMQ, logger *logrus.Logger) *Producer {
	return &Producer{mq: mq, logger: logger}
}

// PublishIngest queues a report for ingestion. The message ID is only a
// log correlation aid.
func (p *Producer) PublishIngest(ctx context.Context, sha256, reportPath string) error {
	msg := &IngestMessage{
		MessageID:  uuid.NewString(),
		SHA256:     sha256,
		ReportPath: reportPath,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := p.mq.Publish(ctx, body); err != nil {
		p.logger.WithError(err).WithField("sha256", sha256).Error("Failed to publish ingest job")
		return fmt.Errorf("failed to publish: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"message_id": msg.MessageID,
		"sha256":     sha256,
	}).Info("Ingest job published")

	return nil
}
