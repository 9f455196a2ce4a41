package order

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows an order listing. Nil fields are not applied.
type Filter struct {
	Page       shared.Page
	Status     *Status
	CustomerID *uuid.UUID
}

// Repository defines persistence operations for orders
type Repository interface {
	// FindByID loads the order together with its customer
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter Filter) ([]Order, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
