// Package events publishes assessment lifecycle events to Kafka for
// downstream consumers (dashboards, alerting pipelines).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"floodroute/internal/config"
	"floodroute/internal/types"
)

// messageWriter is the slice of kafka-go's Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// AssessmentPublisher produces AssessmentEvent messages to the assessments
// topic. It is safe for concurrent use; kafka-go's Writer serializes batches
// internally.
type AssessmentPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewAssessmentPublisher creates a Kafka producer for the configured
// assessments topic.
func NewAssessmentPublisher(cfg config.KafkaConfig, logger *slog.Logger) *AssessmentPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.AssessmentTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AssessmentPublisher{writer: w, logger: logger}
}

// newAssessmentPublisherWithWriter is used by tests to substitute the writer.
func newAssessmentPublisherWithWriter(w messageWriter, logger *slog.Logger) *AssessmentPublisher {
	return &AssessmentPublisher{writer: w, logger: logger}
}

// Publish serializes and sends one assessment event. The message is keyed by
// district so per-district ordering is preserved for consumers.
func (p *AssessmentPublisher) Publish(ctx context.Context, event types.AssessmentEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to publish assessment event",
			err,
		)
	}

	p.logger.InfoContext(ctx, "assessment event published",
		"event_id", event.EventID,
		"assessment_id", event.AssessmentID,
		"district", event.District,
		"risk_level", string(event.RiskLevel),
	)
	return nil
}

func (p *AssessmentPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an AssessmentEvent into a Kafka message.
func serializeToMessage(event types.AssessmentEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.District),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(event.RiskLevel)},
			{Key: "calculated_at", Value: []byte(event.CalculatedAt.Format(time.RFC3339))},
		},
	}, nil
}
