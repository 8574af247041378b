package inventory

import (
	"context"

	"smartstock/internal/events"
	"smartstock/pkg/cache"
	"smartstock/pkg/logger"
)

// OrderEventHandler reacts to consumed order events. Stock itself is
// adjusted transactionally by the order service; this side drops stale
// caches and surfaces low-stock conditions in the logs.
type OrderEventHandler struct {
	repo         Repository
	cacheService cache.Service
}

func NewOrderEventHandler(repo Repository, cacheService cache.Service) *OrderEventHandler {
	return &OrderEventHandler{
		repo:         repo,
		cacheService: cacheService,
	}
}

func (h *OrderEventHandler) HandleOrderEvent(ctx context.Context, event *events.OrderEvent) error {
	log := logger.GetDefault()

	log.InfoWithContext(ctx, "order event consumed", map[string]interface{}{
		"type":     string(event.Type),
		"order_id": event.OrderID,
		"items":    len(event.Items),
	})

	if h.cacheService != nil {
		for _, pattern := range []string{cacheKeyProductList + "*", cacheKeyLowStock} {
			if err := h.cacheService.DeletePattern(ctx, pattern); err != nil {
				log.ErrorWithContext(ctx, "failed to invalidate inventory cache", err, map[string]interface{}{"pattern": pattern})
			}
		}
		for _, item := range event.Items {
			if err := h.cacheService.Delete(ctx, cacheKeyProductDetail+item.ProductID); err != nil {
				log.ErrorWithContext(ctx, "failed to invalidate product cache", err, map[string]interface{}{"product_id": item.ProductID})
			}
		}
	}

	if event.Type != events.OrderCreated {
		return nil
	}

	products, err := h.repo.ListLowStock(ctx)
	if err != nil {
		return err
	}
	for _, product := range products {
		log.InfoWithContext(ctx, "product at or below reorder level", map[string]interface{}{
			"product_id":    product.ID.String(),
			"sku":           product.SKU,
			"quantity":      product.Quantity,
			"reorder_level": product.ReorderLevel,
		})
	}

	return nil
}
