package handler

import (
	"context"

	customerapp "github.com/crm/backend/internal/application/customer"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerService is the customer use case surface used by the handler
type CustomerService interface {
	List(ctx context.Context, query customerapp.ListCustomersQuery) (*shared.Paginated[customerapp.CustomerResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*customerapp.CustomerDetailResponse, error)
	Create(ctx context.Context, req customerapp.CreateCustomerRequest) (*customerapp.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req customerapp.UpdateCustomerRequest) (*customerapp.CustomerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List handles GET /api/customers
func (h *CustomerHandler) List(c *gin.Context) {
	var query customerapp.ListCustomersQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Customers retrieved successfully")
}

// Get handles GET /api/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	result, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Customer retrieved successfully")
}

// Create handles POST /api/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Created(c, result, "Customer created successfully")
}

// Update handles PUT /api/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req customerapp.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, result, "Customer updated successfully")
}

// Delete handles DELETE /api/customers/:id. The customer's orders go with it.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.Fail(c, err)
		return
	}

	h.Success(c, nil, "Customer deleted successfully")
}
