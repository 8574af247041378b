package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, query ProductListQuery) ([]Product, int64, error)
	ListLowStock(ctx context.Context) ([]Product, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, movement *StockMovement) (*Product, error)
	ListMovements(ctx context.Context, query MovementListQuery) ([]StockMovement, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Product, error) {
	result := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.GetProductByID(ctx, id)
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) ListProducts(ctx context.Context, query ProductListQuery) ([]Product, int64, error) {
	var products []Product
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Product{})

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
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

	err := db.Order("name ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&products).Error

	return products, totalCount, err
}

func (r *repository) ListLowStock(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *repository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Product{}).Where("sku = ?", sku).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdjustStock applies a signed delta under a row lock and records the
// movement in the same transaction. Stock never goes below zero.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int, movement *StockMovement) (*Product, error) {
	var product Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		newQuantity := product.Quantity + delta
		if newQuantity < 0 {
			return ErrInsufficientStock
		}

		if err := tx.Model(&product).Update("quantity", newQuantity).Error; err != nil {
			return err
		}
		product.Quantity = newQuantity

		movement.ProductID = product.ID
		movement.Delta = delta
		return tx.Create(movement).Error
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *repository) ListMovements(ctx context.Context, query MovementListQuery) ([]StockMovement, int64, error) {
	var movements []StockMovement
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&StockMovement{})

	if query.ProductID != "" {
		db = db.Where("product_id = ?", query.ProductID)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&movements).Error

	return movements, totalCount, err
}
