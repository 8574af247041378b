package inventory

type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	SKU          string  `json:"sku" validate:"required,min=2,max=64"`
	Description  string  `json:"description" validate:"max=2000"`
	Category     string  `json:"category" validate:"max=100"`
	Price        float64 `json:"price" validate:"required,gte=0"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Category     *string  `json:"category" validate:"omitempty,max=100"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	ReorderLevel *int     `json:"reorder_level" validate:"omitempty,gte=0"`
}

// AdjustStockRequest moves stock by a signed delta. Quantity changes only
// flow through here or the order service, never through a product update.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,min=2,max=255"`
}

type ProductListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
}

type MovementListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
}
