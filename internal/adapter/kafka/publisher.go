package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/eurolife-dashboard/internal/config"
	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher exports installed datasets to a Kafka topic.
// It implements dashboard.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured export topic.
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

// Publish writes one message per observation in a single WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, ds *dashboard.Dataset) error {
	msgs, err := datasetMessages(ds)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write observations: %w", err)
	}
	p.logger.Info("dataset exported", "version", ds.Version, "messages", len(msgs), "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func datasetMessages(ds *dashboard.Dataset) ([]kafkago.Message, error) {
	obs := ds.Combined.Observations
	msgs := make([]kafkago.Message, len(obs))
	for i := range obs {
		msg, err := serializeToMessage(obs[i], ds.Version, ds.LoadedAt)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// serializeToMessage marshals an Observation into a Kafka message keyed by
// country and year.
func serializeToMessage(o domain.Observation, version string, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.Country + "|" + strconv.Itoa(o.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset_version", Value: []byte(version)},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
