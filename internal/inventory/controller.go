package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) parseProductID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid product ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorID resolves the acting user from the gateway trust headers. The
// gateway guarantees a UUID here, but a bad value still maps to 401.
func (c *Controller) actorID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *Controller) CreateProduct(ctx *gin.Context) {
	userID, ok := c.actorID(ctx)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	product, err := c.service.CreateProduct(ctx.Request.Context(), userID, &req)
	if err != nil {
		switch err {
		case ErrProductAlreadyExists:
			response.Error(ctx, http.StatusConflict, "Product with this SKU already exists", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to create product", nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "Product created successfully", product)
}

func (c *Controller) GetProduct(ctx *gin.Context) {
	id, ok := c.parseProductID(ctx)
	if !ok {
		return
	}

	product, err := c.service.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(ctx, http.StatusNotFound, "Product not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to load product", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Product retrieved successfully", product)
}

func (c *Controller) ListProducts(ctx *gin.Context) {
	var query ProductListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListProducts(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list products", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Products retrieved successfully", result)
}

func (c *Controller) UpdateProduct(ctx *gin.Context) {
	id, ok := c.parseProductID(ctx)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	product, err := c.service.UpdateProduct(ctx.Request.Context(), id, &req)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(ctx, http.StatusNotFound, "Product not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to update product", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Product updated successfully", product)
}

func (c *Controller) DeleteProduct(ctx *gin.Context) {
	id, ok := c.parseProductID(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteProduct(ctx.Request.Context(), id); err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(ctx, http.StatusNotFound, "Product not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to delete product", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Product deleted successfully", nil)
}

func (c *Controller) AdjustStock(ctx *gin.Context) {
	id, ok := c.parseProductID(ctx)
	if !ok {
		return
	}
	userID, ok := c.actorID(ctx)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	product, err := c.service.AdjustStock(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(ctx, http.StatusNotFound, "Product not found", nil)
		case ErrInsufficientStock:
			response.Error(ctx, http.StatusConflict, "Stock cannot go below zero", nil)
		case ErrZeroDelta:
			response.Error(ctx, http.StatusBadRequest, "Stock delta must be non-zero", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to adjust stock", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Stock adjusted successfully", product)
}

func (c *Controller) ListLowStock(ctx *gin.Context) {
	products, err := c.service.ListLowStock(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list low-stock products", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Low-stock products retrieved successfully", products)
}

func (c *Controller) ListMovements(ctx *gin.Context) {
	var query MovementListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListMovements(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list stock movements", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Stock movements retrieved successfully", result)
}
