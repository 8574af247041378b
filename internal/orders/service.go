package orders

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"smartstock/internal/events"
	"smartstock/pkg/logger"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateProduct  = errors.New("duplicate product in order items")
)

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error)
	ListOrders(ctx context.Context, query OrderListQuery) (*PaginatedOrders, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderResponse, error)
}

type service struct {
	repo     Repository
	producer events.Producer
}

// NewService builds the order service. A nil producer disables event
// publishing; order placement itself never depends on Kafka being up.
func NewService(repo Repository, producer events.Producer) Service {
	return &service{
		repo:     repo,
		producer: producer,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error) {
	seen := make(map[string]bool, len(req.Items))
	items := make([]OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if seen[item.ProductID] {
			return nil, ErrDuplicateProduct
		}
		seen[item.ProductID] = true

		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %s: %w", item.ProductID, err)
		}
		items = append(items, OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	order := &Order{
		CustomerName: req.CustomerName,
		Status:       StatusPending,
		Items:        items,
		CreatedBy:    userID,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, order)

	resp := order.ToResponse()
	return &resp, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := order.ToResponse()
	return &resp, nil
}

func (s *service) ListOrders(ctx context.Context, query OrderListQuery) (*PaginatedOrders, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	orders, totalCount, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = orders[i].ToResponse()
	}

	return &PaginatedOrders{
		Orders:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, statusStr string) (*OrderResponse, error) {
	status := Status(statusStr)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	if status == StatusCancelled {
		cancelled, err := s.repo.CancelOrder(ctx, order)
		if err != nil {
			return nil, err
		}

		s.publish(ctx, events.OrderCancelled, cancelled)

		resp := cancelled.ToResponse()
		return &resp, nil
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	resp := updated.ToResponse()
	return &resp, nil
}

// publish sends an order lifecycle event; failures are logged, never
// surfaced to the caller.
func (s *service) publish(ctx context.Context, eventType events.EventType, order *Order) {
	if s.producer == nil {
		return
	}

	eventItems := make([]events.OrderEventItem, len(order.Items))
	for i, item := range order.Items {
		eventItems[i] = events.OrderEventItem{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	event := events.NewOrderEvent(eventType, order.ID.String(), order.CustomerName, eventItems, order.Total)
	if err := s.producer.Publish(ctx, event); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish order event", err, map[string]interface{}{
			"order_id": order.ID.String(),
			"type":     string(eventType),
		})
	}
}
