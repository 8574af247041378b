package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memoryRepository backs service tests without a database.
type memoryRepository struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*Product
	movements []StockMovement
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{products: make(map[uuid.UUID]*Product)}
}

func (m *memoryRepository) CreateProduct(_ context.Context, product *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memoryRepository) GetProductByID(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, ErrProductNotFound
}

func (m *memoryRepository) GetProductBySKU(_ context.Context, sku string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *memoryRepository) UpdateProduct(_ context.Context, id uuid.UUID, updates map[string]interface{}) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["description"].(string); ok {
		p.Description = v
	}
	if v, ok := updates["category"].(string); ok {
		p.Category = v
	}
	if v, ok := updates["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := updates["reorder_level"].(int); ok {
		p.ReorderLevel = v
	}
	copied := *p
	return &copied, nil
}

func (m *memoryRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepository) ListProducts(_ context.Context, query ProductListQuery) ([]Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Product
	for _, p := range m.products {
		if query.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Search)) {
			continue
		}
		if query.Category != "" && p.Category != query.Category {
			continue
		}
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, int64(len(list)), nil
}

func (m *memoryRepository) ListLowStock(_ context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Product
	for _, p := range m.products {
		if p.Quantity <= p.ReorderLevel {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Quantity < list[j].Quantity })
	return list, nil
}

func (m *memoryRepository) SKUExists(_ context.Context, sku string) (bool, error) {
	_, err := m.GetProductBySKU(context.Background(), sku)
	return err == nil, nil
}

func (m *memoryRepository) AdjustStock(_ context.Context, id uuid.UUID, delta int, movement *StockMovement) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	newQuantity := p.Quantity + delta
	if newQuantity < 0 {
		return nil, ErrInsufficientStock
	}
	p.Quantity = newQuantity

	movement.ID = uuid.New()
	movement.ProductID = id
	movement.Delta = delta
	movement.CreatedAt = time.Now()
	m.movements = append(m.movements, *movement)

	copied := *p
	return &copied, nil
}

func (m *memoryRepository) ListMovements(_ context.Context, query MovementListQuery) ([]StockMovement, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []StockMovement
	for _, mv := range m.movements {
		if query.ProductID != "" && mv.ProductID.String() != query.ProductID {
			continue
		}
		list = append(list, mv)
	}
	return list, int64(len(list)), nil
}

func seedProduct(t *testing.T, repo *memoryRepository, name, sku string, quantity, reorderLevel int) *Product {
	t.Helper()

	product := &Product{
		Name:         name,
		SKU:          sku,
		Price:        9.99,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
		CreatedBy:    uuid.New(),
	}
	if err := repo.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	return product
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	t.Run("creates and returns the product", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)

		resp, err := svc.CreateProduct(context.Background(), uuid.New(), &CreateProductRequest{
			Name:         "Widget",
			SKU:          "WID-001",
			Price:        19.99,
			Quantity:     10,
			ReorderLevel: 3,
		})
		if err != nil {
			t.Fatalf("CreateProduct() error = %v", err)
		}
		if resp.SKU != "WID-001" || resp.Quantity != 10 {
			t.Errorf("CreateProduct() = %+v, want sku WID-001 / quantity 10", resp)
		}
		if resp.LowStock {
			t.Error("LowStock = true for quantity above reorder level")
		}
	})

	t.Run("duplicate sku is rejected", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		seedProduct(t, repo, "Widget", "WID-001", 10, 3)

		_, err := svc.CreateProduct(context.Background(), uuid.New(), &CreateProductRequest{
			Name:  "Other widget",
			SKU:   "WID-001",
			Price: 5,
		})
		if err != ErrProductAlreadyExists {
			t.Errorf("CreateProduct() error = %v, want ErrProductAlreadyExists", err)
		}
	})
}

func TestAdjustStock(t *testing.T) {
	t.Parallel()

	t.Run("positive delta increases quantity and records a movement", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		product := seedProduct(t, repo, "Widget", "WID-001", 10, 3)

		resp, err := svc.AdjustStock(context.Background(), product.ID, uuid.New(), &AdjustStockRequest{
			Delta:  5,
			Reason: "restock delivery",
		})
		if err != nil {
			t.Fatalf("AdjustStock() error = %v", err)
		}
		if resp.Quantity != 15 {
			t.Errorf("Quantity = %d, want 15", resp.Quantity)
		}

		movements, err := svc.ListMovements(context.Background(), MovementListQuery{ProductID: product.ID.String()})
		if err != nil {
			t.Fatalf("ListMovements() error = %v", err)
		}
		if movements.TotalCount != 1 || len(movements.Movements) != 1 {
			t.Fatalf("movement count = %d, want 1", movements.TotalCount)
		}
		if movements.Movements[0].Delta != 5 || movements.Movements[0].Source != SourceManual {
			t.Errorf("movement = %+v, want delta 5 / manual source", movements.Movements[0])
		}
	})

	t.Run("delta past zero is rejected and stock is unchanged", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		product := seedProduct(t, repo, "Widget", "WID-001", 4, 1)

		_, err := svc.AdjustStock(context.Background(), product.ID, uuid.New(), &AdjustStockRequest{
			Delta:  -5,
			Reason: "shrinkage",
		})
		if err != ErrInsufficientStock {
			t.Fatalf("AdjustStock() error = %v, want ErrInsufficientStock", err)
		}

		current, err := svc.GetProduct(context.Background(), product.ID)
		if err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if current.Quantity != 4 {
			t.Errorf("Quantity after failed adjust = %d, want 4", current.Quantity)
		}
	})

	t.Run("draining to exactly zero is allowed", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		product := seedProduct(t, repo, "Widget", "WID-001", 4, 1)

		resp, err := svc.AdjustStock(context.Background(), product.ID, uuid.New(), &AdjustStockRequest{
			Delta:  -4,
			Reason: "damaged batch",
		})
		if err != nil {
			t.Fatalf("AdjustStock() error = %v", err)
		}
		if resp.Quantity != 0 {
			t.Errorf("Quantity = %d, want 0", resp.Quantity)
		}
		if !resp.LowStock {
			t.Error("LowStock = false at zero quantity")
		}
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		product := seedProduct(t, repo, "Widget", "WID-001", 4, 1)

		if _, err := svc.AdjustStock(context.Background(), product.ID, uuid.New(), &AdjustStockRequest{Delta: 0, Reason: "noop"}); err != ErrZeroDelta {
			t.Errorf("AdjustStock() error = %v, want ErrZeroDelta", err)
		}
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)

		if _, err := svc.AdjustStock(context.Background(), uuid.New(), uuid.New(), &AdjustStockRequest{Delta: 1, Reason: "restock"}); err != ErrProductNotFound {
			t.Errorf("AdjustStock() error = %v, want ErrProductNotFound", err)
		}
	})
}

func TestListLowStock(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	svc := NewService(repo, nil)

	seedProduct(t, repo, "Plenty", "SKU-A", 50, 5)
	seedProduct(t, repo, "At threshold", "SKU-B", 5, 5)
	seedProduct(t, repo, "Below threshold", "SKU-C", 1, 5)

	list, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("ListLowStock() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("low-stock count = %d, want 2", len(list))
	}
	for _, p := range list {
		if p.Quantity > p.ReorderLevel {
			t.Errorf("product %s quantity %d above reorder level %d", p.SKU, p.Quantity, p.ReorderLevel)
		}
		if !p.LowStock {
			t.Errorf("product %s LowStock = false", p.SKU)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)
		product := seedProduct(t, repo, "Widget", "WID-001", 10, 3)

		newPrice := 24.99
		resp, err := svc.UpdateProduct(context.Background(), product.ID, &UpdateProductRequest{Price: &newPrice})
		if err != nil {
			t.Fatalf("UpdateProduct() error = %v", err)
		}
		if resp.Price != 24.99 {
			t.Errorf("Price = %v, want 24.99", resp.Price)
		}
		if resp.Name != "Widget" || resp.Quantity != 10 {
			t.Errorf("untouched fields changed: %+v", resp)
		}
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepository()
		svc := NewService(repo, nil)

		name := "Renamed"
		if _, err := svc.UpdateProduct(context.Background(), uuid.New(), &UpdateProductRequest{Name: &name}); err != ErrProductNotFound {
			t.Errorf("UpdateProduct() error = %v, want ErrProductNotFound", err)
		}
	})
}
