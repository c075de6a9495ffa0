package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaEmitter publishes events to a Kafka topic keyed by recipient, so a
// consumer partition sees one user's notifications in order. Produce is
// asynchronous; delivery failures are logged, never surfaced to the caller.
type KafkaEmitter struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaEmitter connects to the given brokers. Close the emitter to flush
// pending records on shutdown.
func NewKafkaEmitter(brokers []string, topic string, logger *slog.Logger) (*KafkaEmitter, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaEmitter{client: client, topic: topic, logger: logger}, nil
}

func (e *KafkaEmitter) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("marshal notification event", "type", event.Type, "error", err)
		return
	}
	record := &kgo.Record{
		Key:   []byte(event.Recipient.String()),
		Value: payload,
	}
	e.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			e.logger.Error("produce notification event",
				"type", event.Type,
				"recipient", event.Recipient,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (e *KafkaEmitter) Close() {
	e.client.Close()
}
