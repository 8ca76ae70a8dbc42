// Package kafka publishes exported records to a Kafka topic.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces one message per record to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadBatch serializes every record and publishes them in a single
// WriteMessages call. Records from the same meter share a partition.
func (w *Writer) LoadBatch(ctx context.Context, batch domain.Batch) error {
	if len(batch.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Records))
	for i := range batch.Records {
		msg, err := serializeToMessage(batch.Records[i], batch.RunID, batch.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", w.writer.Topic, err)
	}
	w.logger.Info("records published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

// Close flushes pending messages and releases the broker connections.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EmissionRecord into a Kafka message.
func serializeToMessage(record domain.EmissionRecord, runID string, generatedAt time.Time) (kafkago.Message, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // "R&D" is written as-is
	if err := enc.Encode(record); err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize emission record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.SensorID),
		Value: bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "department", Value: []byte(record.Department)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
