package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies an order lifecycle event on the wire.
type EventType string

const (
	OrderCreated   EventType = "order.created"
	OrderCancelled EventType = "order.cancelled"
)

// OrderEventItem is one line of an order as carried in an event payload.
type OrderEventItem struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderEvent is the JSON message published to the order-events topic.
// Messages for the same order share a partition key so consumers see them
// in order.
type OrderEvent struct {
	EventID      uuid.UUID        `json:"event_id"`
	Type         EventType        `json:"type"`
	OrderID      string           `json:"order_id"`
	CustomerName string           `json:"customer_name"`
	Items        []OrderEventItem `json:"items"`
	Total        float64          `json:"total"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

func NewOrderEvent(eventType EventType, orderID, customerName string, items []OrderEventItem, total float64) *OrderEvent {
	return &OrderEvent{
		EventID:      uuid.New(),
		Type:         eventType,
		OrderID:      orderID,
		CustomerName: customerName,
		Items:        items,
		Total:        total,
		OccurredAt:   time.Now().UTC(),
	}
}

func (e *OrderEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// PartitionKey routes all events of one order to the same partition.
func (e *OrderEvent) PartitionKey() string {
	return e.OrderID
}
