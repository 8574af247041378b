package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstock/internal/inventory"
)

type Repository interface {
	// CreateOrder persists the order and decrements product stock in one
	// transaction. Item SKU, unit price and the order total are filled
	// from the locked product rows.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, query OrderListQuery) ([]Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
	// CancelOrder restores the order's stock and marks it cancelled, again
	// in one transaction.
	CancelOrder(ctx context.Context, order *Order) (*Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	// Lock product rows in a stable order so concurrent orders over the
	// same products cannot deadlock.
	items := make([]*OrderItem, len(order.Items))
	for i := range order.Items {
		items[i] = &order.Items[i]
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64

		for _, item := range items {
			var product inventory.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", item.ProductID).
				First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return inventory.ErrProductNotFound
				}
				return err
			}

			newQuantity := product.Quantity - item.Quantity
			if newQuantity < 0 {
				return inventory.ErrInsufficientStock
			}

			if err := tx.Model(&product).Update("quantity", newQuantity).Error; err != nil {
				return err
			}

			item.SKU = product.SKU
			item.UnitPrice = product.Price
			total += float64(item.Quantity) * product.Price
		}

		order.Total = total
		if order.Status == "" {
			order.Status = StatusPending
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range items {
			movement := inventory.StockMovement{
				ProductID: item.ProductID,
				Delta:     -item.Quantity,
				Reason:    "order placed",
				Source:    inventory.SourceOrder,
				OrderID:   &order.ID,
				CreatedBy: order.CreatedBy,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, query OrderListQuery) ([]Order, int64, error) {
	var orders []Order
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Order{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&orders).Error

	return orders, totalCount, err
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	result := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetOrderByID(ctx, id)
}

func (r *repository) CancelOrder(ctx context.Context, order *Order) (*Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product inventory.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", item.ProductID).
				First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Product deleted since the order was placed, nothing
					// to restore.
					continue
				}
				return err
			}

			if err := tx.Model(&product).Update("quantity", product.Quantity+item.Quantity).Error; err != nil {
				return err
			}

			movement := inventory.StockMovement{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Reason:    "order cancelled",
				Source:    inventory.SourceOrder,
				OrderID:   &order.ID,
				CreatedBy: order.CreatedBy,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		return tx.Model(&Order{}).Where("id = ?", order.ID).Update("status", StatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, order.ID)
}
