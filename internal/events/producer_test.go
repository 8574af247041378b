package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestPublish(t *testing.T) {
	t.Run("publishes order created with the order id as partition key", func(t *testing.T) {
		config := sarama.NewConfig()
		config.Producer.Return.Successes = true
		mockProducer := mocks.NewSyncProducer(t, config)
		defer mockProducer.Close()

		event := NewOrderEvent(OrderCreated, "order-123", "ACME Corp", []OrderEventItem{
			{ProductID: "p-1", SKU: "WID-001", Quantity: 2, UnitPrice: 19.99},
		}, 39.98)

		mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			if msg.Topic != "order-events" {
				return errors.New("unexpected topic " + msg.Topic)
			}

			key, err := msg.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != "order-123" {
				return errors.New("unexpected partition key " + string(key))
			}

			value, err := msg.Value.Encode()
			if err != nil {
				return err
			}
			var decoded OrderEvent
			if err := json.Unmarshal(value, &decoded); err != nil {
				return err
			}
			if decoded.Type != OrderCreated || decoded.OrderID != "order-123" {
				return errors.New("payload does not round-trip")
			}
			if len(decoded.Items) != 1 || decoded.Items[0].Quantity != 2 {
				return errors.New("items do not round-trip")
			}
			return nil
		})

		producer := NewProducerWithClient(mockProducer, "order-events")
		if err := producer.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	})

	t.Run("broker failure surfaces as an error", func(t *testing.T) {
		config := sarama.NewConfig()
		config.Producer.Return.Successes = true
		mockProducer := mocks.NewSyncProducer(t, config)
		defer mockProducer.Close()

		mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		producer := NewProducerWithClient(mockProducer, "order-events")
		event := NewOrderEvent(OrderCancelled, "order-456", "ACME Corp", nil, 0)

		if err := producer.Publish(context.Background(), event); err == nil {
			t.Fatal("Publish() error = nil, want broker failure")
		}
	})
}

func TestOrderEventJSON(t *testing.T) {
	t.Parallel()

	event := NewOrderEvent(OrderCancelled, "order-789", "Globex", []OrderEventItem{
		{ProductID: "p-2", Quantity: 1, UnitPrice: 5},
	}, 5)

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.EventID != event.EventID || decoded.Type != OrderCancelled {
		t.Errorf("decoded = %+v, want original event", decoded)
	}
	if decoded.PartitionKey() != "order-789" {
		t.Errorf("PartitionKey() = %q, want order-789", decoded.PartitionKey())
	}
}
