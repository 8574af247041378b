package orders

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CustomerName string    `json:"customer_name" gorm:"not null;size:255"`
	Status       Status    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Total        float64   `json:"total" gorm:"not null;default:0"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the unit price at order time, so later price changes
// never rewrite history.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	SKU       string    `json:"sku" gorm:"size:64"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice float64   `json:"unit_price" gorm:"not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type OrderItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID           string              `json:"id"`
	CustomerName string              `json:"customer_name"`
	Status       Status              `json:"status"`
	Total        float64             `json:"total"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (o *Order) ToResponse() OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  float64(item.Quantity) * item.UnitPrice,
		}
	}

	return OrderResponse{
		ID:           o.ID.String(),
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Total:        o.Total,
		Items:        items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

type PaginatedOrders struct {
	Orders     []OrderResponse `json:"orders"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
