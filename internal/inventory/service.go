package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"smartstock/pkg/cache"
	"smartstock/pkg/logger"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrZeroDelta            = errors.New("stock delta must be non-zero")
)

// Cache keys and TTLs for the hot read paths.
const (
	cacheKeyProductDetail = "smartstock:products:detail:"
	cacheKeyProductList   = "smartstock:products:list:"
	cacheKeyLowStock      = "smartstock:products:lowstock"

	ttlProductDetail = 5 * time.Minute
	ttlProductList   = 2 * time.Minute
	ttlLowStock      = 1 * time.Minute
)

type Service interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, req *CreateProductRequest) (*ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error)
	ListProducts(ctx context.Context, query ProductListQuery) (*PaginatedProducts, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, userID uuid.UUID, req *AdjustStockRequest) (*ProductResponse, error)
	ListLowStock(ctx context.Context) ([]ProductResponse, error)
	ListMovements(ctx context.Context, query MovementListQuery) (*PaginatedMovements, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

// NewService builds the inventory service. A nil cache service disables
// read-through caching without changing behavior.
func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:         repo,
		cacheService: cacheService,
	}
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to cache inventory data", err, map[string]interface{}{"key": key})
	}
}

// invalidateProductCache drops list and low-stock caches, plus the detail
// entry when a specific product changed.
func (s *service) invalidateProductCache(ctx context.Context, id *uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	patterns := []string{cacheKeyProductList + "*", cacheKeyLowStock}
	if id != nil {
		patterns = append(patterns, cacheKeyProductDetail+id.String())
	}

	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate inventory cache", err, map[string]interface{}{"pattern": pattern})
		}
	}
}

func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, req *CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.repo.SKUExists(ctx, req.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to check sku: %w", err)
	}
	if exists {
		return nil, ErrProductAlreadyExists
	}

	product := &Product{
		Name:         req.Name,
		SKU:          req.SKU,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		CreatedBy:    userID,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateProductCache(ctx, nil)

	resp := product.ToResponse()
	return &resp, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	cacheKey := cacheKeyProductDetail + id.String()

	var cached ProductResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := product.ToResponse()
	s.setCache(ctx, cacheKey, resp, ttlProductDetail)
	return &resp, nil
}

func (s *service) ListProducts(ctx context.Context, query ProductListQuery) (*PaginatedProducts, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	cacheKey := fmt.Sprintf("%sp%d:l%d:s%s:c%s",
		cacheKeyProductList, query.Page, query.Limit, query.Search, query.Category)

	var cached PaginatedProducts
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	products, totalCount, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = products[i].ToResponse()
	}

	result := &PaginatedProducts{
		Products:   responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}

	s.setCache(ctx, cacheKey, result, ttlProductList)
	return result, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*ProductResponse, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ReorderLevel != nil {
		updates["reorder_level"] = *req.ReorderLevel
	}
	if len(updates) == 0 {
		return s.GetProduct(ctx, id)
	}
	updates["updated_at"] = time.Now()

	product, err := s.repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.invalidateProductCache(ctx, &id)

	resp := product.ToResponse()
	return &resp, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidateProductCache(ctx, &id)
	return nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, userID uuid.UUID, req *AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, ErrZeroDelta
	}

	movement := &StockMovement{
		Reason:    req.Reason,
		Source:    SourceManual,
		CreatedBy: userID,
	}

	product, err := s.repo.AdjustStock(ctx, id, req.Delta, movement)
	if err != nil {
		return nil, err
	}

	s.invalidateProductCache(ctx, &id)

	resp := product.ToResponse()
	return &resp, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	var cached []ProductResponse
	if err := s.getCache(ctx, cacheKeyLowStock, &cached); err == nil {
		return cached, nil
	}

	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = products[i].ToResponse()
	}

	s.setCache(ctx, cacheKeyLowStock, responses, ttlLowStock)
	return responses, nil
}

func (s *service) ListMovements(ctx context.Context, query MovementListQuery) (*PaginatedMovements, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	movements, totalCount, err := s.repo.ListMovements(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = movements[i].ToResponse()
	}

	return &PaginatedMovements{
		Movements:  responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}
