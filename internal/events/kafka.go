package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes status events to a Kafka topic keyed by entity id,
// so every change of one order lands on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(w messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		logger: logger.With().Str("publisher", "kafka").Logger(),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event StatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "entity", Value: []byte(event.Entity)},
		},
	})
	if err != nil {
		p.logger.Error().Err(err).
			Str("entity", event.Entity).
			Str("entity_id", event.EntityID.String()).
			Msg("failed to write status event")
		return fmt.Errorf("failed to write status event: %w", err)
	}

	p.logger.Debug().
		Str("entity", event.Entity).
		Str("entity_id", event.EntityID.String()).
		Str("to", event.To).
		Msg("status event published")

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
