package events

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"smartstock/internal/shared/config"
	"smartstock/pkg/logger"
)

// Handler processes a consumed order event. A returned error is logged,
// never redelivered: the event stream is advisory, stock integrity is
// enforced transactionally on the write path.
type Handler interface {
	HandleOrderEvent(ctx context.Context, event *OrderEvent) error
}

// Consumer runs a Kafka consumer group over the order-events topic.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	handler       Handler
	cancel        context.CancelFunc
}

func NewKafkaConsumer(cfg config.KafkaConfig, handler Handler) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		topic:         cfg.OrderEventTopic,
		handler:       handler,
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors()

	go func() {
		handler := &groupHandler{handler: c.handler}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, []string{c.topic}, handler); err != nil {
					logger.GetDefault().ErrorWithContext(ctx, "consumer group session failed", err, nil)
					time.Sleep(time.Second)
				}
			}
		}
	}()

	return nil
}

func (c *kafkaConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		logger.GetDefault().ErrorWithContext(context.Background(), "consumer group error", err, nil)
	}
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	handler Handler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		event, err := FromJSON(message.Value)
		if err != nil {
			logger.GetDefault().ErrorWithContext(session.Context(), "dropping undecodable order event", err, map[string]interface{}{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			})
			session.MarkMessage(message, "")
			continue
		}

		if err := h.handler.HandleOrderEvent(session.Context(), event); err != nil {
			logger.GetDefault().ErrorWithContext(session.Context(), "order event handler failed", err, map[string]interface{}{
				"order_id": event.OrderID,
				"type":     string(event.Type),
			})
		}

		session.MarkMessage(message, "")
	}
	return nil
}
