package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes delay reports to a Kafka topic.
// It implements predictor.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// Save publishes one report, keyed by airport so an airport's reports stay ordered.
func (w *Writer) Save(ctx context.Context, report domain.DelayReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	w.logger.Debug("delay report published", "id", report.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DelayReport into a Kafka message.
func serializeToMessage(report domain.DelayReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize delay report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Airport.Code),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_id", Value: []byte(report.ID)},
			{Key: "risk_level", Value: []byte(report.Assessment.Level)},
			{Key: "checked_at", Value: []byte(report.CheckedAt.Format(time.RFC3339))},
		},
	}, nil
}
