package customer

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows a customer listing
type Filter struct {
	Page shared.Page
	// Search matches name or email, case-insensitive substring
	Search string
}

// Repository defines persistence operations for customers
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter Filter) ([]Customer, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
