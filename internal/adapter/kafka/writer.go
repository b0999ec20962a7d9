package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cyclist-scatter/internal/config"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes normalized records to a Kafka topic, one message per
// record. It implements pipeline.Publisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the dataset and writes it in a single WriteMessages
// call. Message order matches record order.
func (p *Publisher) Publish(ctx context.Context, datasetID string, builtAt time.Time, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(datasetID, builtAt, i, records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish dataset %s: %w", datasetID, err)
	}
	p.logger.Debug("dataset published", "dataset_id", datasetID, "records", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// recordMessage is the JSON value of a published record.
type recordMessage struct {
	DatasetID string `json:"datasetId"`
	Index     int    `json:"index"`
	domain.Record
}

// serializeToMessage marshals a Record into a Kafka message keyed by its
// dataset and position.
func serializeToMessage(datasetID string, builtAt time.Time, index int, rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(recordMessage{DatasetID: datasetID, Index: index, Record: rec})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %d: %w", index, err)
	}
	return kafkago.Message{
		Key:   []byte(datasetID + "-" + strconv.Itoa(index)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset_id", Value: []byte(datasetID)},
			{Key: "built_at", Value: []byte(builtAt.UTC().Format(time.RFC3339))},
			{Key: "duplicate_year", Value: []byte(strconv.FormatBool(rec.IsDuplicateYear))},
		},
	}, nil
}
