package order

import (
	"time"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create a new order
type CreateOrderRequest struct {
	CustomerID string  `json:"customerId" binding:"required,uuid"`
	Total      float64 `json:"total" binding:"required,gt=0,lt=10000000000"`
	Status     *string `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Notes      *string `json:"notes" binding:"omitempty,max=500"`
}

// UpdateOrderRequest represents a partial update. Absent fields are kept.
type UpdateOrderRequest struct {
	Total  *float64 `json:"total" binding:"omitempty,gt=0,lt=10000000000"`
	Status *string  `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	Notes  *string  `json:"notes" binding:"omitempty,max=500"`
}

// ListOrdersQuery is bound from the query string
type ListOrdersQuery struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	CustomerID string `form:"customerId" binding:"omitempty,uuid"`
}

// Filter converts the query into a repository filter. Fields that failed to
// parse are left unset; binding has already rejected them.
func (q ListOrdersQuery) Filter() order.Filter {
	filter := order.Filter{Page: shared.NewPage(q.Page, q.Limit)}
	if q.Status != "" {
		status := order.Status(q.Status)
		filter.Status = &status
	}
	if id, err := uuid.Parse(q.CustomerID); err == nil {
		filter.CustomerID = &id
	}
	return filter
}

// OrderCustomerResponse is the customer embedded in an order
type OrderCustomerResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   *string   `json:"phone"`
	Address *string   `json:"address"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID          uuid.UUID              `json:"id"`
	OrderNumber string                 `json:"orderNumber"`
	CustomerID  uuid.UUID              `json:"customerId"`
	Total       decimal.Decimal        `json:"total"`
	Status      string                 `json:"status"`
	Notes       *string                `json:"notes"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
	Customer    *OrderCustomerResponse `json:"customer,omitempty"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Total:       o.Total,
		Status:      string(o.Status),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Customer:    toOrderCustomerResponse(o.Customer),
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func toOrderCustomerResponse(c *customer.Customer) *OrderCustomerResponse {
	if c == nil {
		return nil
	}
	return &OrderCustomerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// toMoney rounds a JSON number to cents
func toMoney(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
