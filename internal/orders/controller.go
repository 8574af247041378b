package orders

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"smartstock/internal/inventory"
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

func (c *Controller) parseOrderID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid order ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *Controller) CreateOrder(ctx *gin.Context) {
	userID, err := uuid.Parse(middleware.UserID(ctx))
	if err != nil {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	order, err := c.service.CreateOrder(ctx.Request.Context(), userID, &req)
	if err != nil {
		switch err {
		case inventory.ErrInsufficientStock:
			response.Error(ctx, http.StatusConflict, "Insufficient stock for one or more items", nil)
		case inventory.ErrProductNotFound:
			response.Error(ctx, http.StatusNotFound, "One or more products not found", nil)
		case ErrDuplicateProduct:
			response.Error(ctx, http.StatusBadRequest, "Duplicate product in order items", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to create order", nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "Order created successfully", order)
}

func (c *Controller) GetOrder(ctx *gin.Context) {
	id, ok := c.parseOrderID(ctx)
	if !ok {
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrOrderNotFound:
			response.Error(ctx, http.StatusNotFound, "Order not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to load order", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Order retrieved successfully", order)
}

func (c *Controller) ListOrders(ctx *gin.Context) {
	var query OrderListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := c.service.ListOrders(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list orders", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Orders retrieved successfully", result)
}

func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id, ok := c.parseOrderID(ctx)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	order, err := c.service.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		switch err {
		case ErrOrderNotFound:
			response.Error(ctx, http.StatusNotFound, "Order not found", nil)
		case ErrInvalidStatus:
			response.Error(ctx, http.StatusBadRequest, "Unknown order status", nil)
		case ErrInvalidTransition:
			response.Error(ctx, http.StatusConflict, "Status transition not allowed", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to update order status", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Order status updated successfully", order)
}
