package customer

import (
	"time"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=100"`
	Email   string  `json:"email" binding:"required,email,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=20"`
	Address *string `json:"address" binding:"omitempty,max=255"`
}

// UpdateCustomerRequest represents a partial update. Absent fields are kept.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email   *string `json:"email" binding:"omitempty,email,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=20"`
	Address *string `json:"address" binding:"omitempty,max=255"`
}

// ListCustomersQuery is bound from the query string
type ListCustomersQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

// Filter converts the query into a repository filter
func (q ListCustomersQuery) Filter() customer.Filter {
	return customer.Filter{
		Page:   shared.NewPage(q.Page, q.Limit),
		Search: q.Search,
	}
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerOrderResponse is an order listed under its customer
type CustomerOrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	Notes       *string         `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CustomerDetailResponse is a customer together with its orders
type CustomerDetailResponse struct {
	CustomerResponse
	Orders []CustomerOrderResponse `json:"orders"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

func toCustomerDetailResponse(c *customer.Customer, orders []order.Order) CustomerDetailResponse {
	items := make([]CustomerOrderResponse, len(orders))
	for i, o := range orders {
		items[i] = CustomerOrderResponse{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Total:       o.Total,
			Status:      string(o.Status),
			Notes:       o.Notes,
			CreatedAt:   o.CreatedAt,
			UpdatedAt:   o.UpdatedAt,
		}
	}
	return CustomerDetailResponse{
		CustomerResponse: ToCustomerResponse(c),
		Orders:           items,
	}
}
