package events

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"smartstock/internal/shared/config"
	"smartstock/pkg/logger"
)

// Producer publishes order lifecycle events. Publishing is best-effort
// from the caller's point of view: HTTP handlers log failures and carry on.
type Producer interface {
	Publish(ctx context.Context, event *OrderEvent) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer builds a synchronous, idempotent producer against the
// configured brokers.
func NewKafkaProducer(cfg config.KafkaConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		topic:    cfg.OrderEventTopic,
	}, nil
}

// NewProducerWithClient wraps an existing sarama producer; used by tests.
func NewProducerWithClient(producer sarama.SyncProducer, topic string) Producer {
	return &kafkaProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *kafkaProducer) Publish(ctx context.Context, event *OrderEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.EventID.String())},
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send order event: %w", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "order event published", map[string]interface{}{
		"topic":     p.topic,
		"type":      string(event.Type),
		"order_id":  event.OrderID,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

func (p *kafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
