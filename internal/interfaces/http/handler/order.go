package handler

import (
	"context"

	orderapp "github.com/crm/backend/internal/application/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the order use case surface used by the handler
type OrderService interface {
	List(ctx context.Context, query orderapp.ListOrdersQuery) (*shared.Paginated[orderapp.OrderResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	Create(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.OrderResponse, error)
	Update(ctx context.Context, id uuid.UUID, req orderapp.UpdateOrderRequest) (*orderapp.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	var query orderapp.ListOrdersQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Orders retrieved successfully")
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	result, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Order retrieved successfully")
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Created(c, result, "Order created successfully")
}

// Update handles PUT /api/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req orderapp.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Order updated successfully")
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, nil, "Order deleted successfully")
}
