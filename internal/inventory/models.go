package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementSource records what triggered a stock movement.
type MovementSource string

const (
	SourceManual MovementSource = "manual"
	SourceOrder  MovementSource = "order"
)

type Product struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:255"`
	SKU          string    `json:"sku" gorm:"not null;size:64;uniqueIndex"`
	Description  string    `json:"description" gorm:"type:text"`
	Category     string    `json:"category" gorm:"size:100;index"`
	Price        float64   `json:"price" gorm:"not null;check:price >= 0"`
	Quantity     int       `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	ReorderLevel int       `json:"reorder_level" gorm:"not null;default:0"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// StockMovement is the audit trail for every quantity change, whether a
// manual adjustment or an order-side effect.
type StockMovement struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProductID uuid.UUID      `json:"product_id" gorm:"type:uuid;not null;index"`
	Delta     int            `json:"delta" gorm:"not null"`
	Reason    string         `json:"reason" gorm:"size:255"`
	Source    MovementSource `json:"source" gorm:"type:varchar(20);default:'manual'"`
	OrderID   *uuid.UUID     `json:"order_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy uuid.UUID      `json:"created_by" gorm:"type:uuid"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	LowStock     bool      `json:"low_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		LowStock:     p.Quantity <= p.ReorderLevel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type MovementResponse struct {
	ID        string         `json:"id"`
	ProductID string         `json:"product_id"`
	Delta     int            `json:"delta"`
	Reason    string         `json:"reason"`
	Source    MovementSource `json:"source"`
	OrderID   string         `json:"order_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (m *StockMovement) ToResponse() MovementResponse {
	resp := MovementResponse{
		ID:        m.ID.String(),
		ProductID: m.ProductID.String(),
		Delta:     m.Delta,
		Reason:    m.Reason,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
	}
	if m.OrderID != nil {
		resp.OrderID = m.OrderID.String()
	}
	return resp
}

type PaginatedProducts struct {
	Products   []ProductResponse `json:"products"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PaginatedMovements struct {
	Movements  []MovementResponse `json:"movements"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
