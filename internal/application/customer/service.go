package customer

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles customer-related business operations
type Service struct {
	customers customer.Repository
	orders    order.Repository
	logger    *zap.Logger
}

// NewService creates a new customer service
func NewService(customers customer.Repository, orders order.Repository, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		orders:    orders,
		logger:    logger,
	}
}

// List returns one page of customers, newest first
func (s *Service) List(ctx context.Context, query ListCustomersQuery) (*shared.Paginated[CustomerResponse], error) {
	filter := query.Filter()

	items, err := s.customers.FindAll(ctx, filter)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to fetch customers")
	}
	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to fetch customers")
	}

	page := shared.NewPaginated(ToCustomerResponses(items), filter.Page, total)
	return &page, nil
}

// Get returns a customer with its orders
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CustomerDetailResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.FindByCustomerID(ctx, id)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to fetch customer")
	}

	resp := toCustomerDetailResponse(c, orders)
	return &resp, nil
}

// Create registers a new customer. The email must not be in use.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customers.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to create customer")
	}
	if exists {
		return nil, customer.ErrExists()
	}

	c, err := customer.NewCustomer(req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, shared.WrapOperation(err, "Failed to create customer")
	}

	s.logger.Info("Customer created", zap.String("customer_id", c.ID.String()))

	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Update applies a partial update. Changing the email re-checks uniqueness
// against every other customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	// Exact comparison: a change in letter case alone still runs the check.
	if req.Email != nil && *req.Email != existing.Email {
		taken, err := s.customers.ExistsByEmailExcludingID(ctx, *req.Email, id)
		if err != nil {
			return nil, shared.WrapOperation(err, "Failed to update customer")
		}
		if taken {
			return nil, customer.ErrEmailTaken()
		}
	}

	if err := existing.Update(req.Name, req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, existing); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, customer.ErrNotFound()
		}
		return nil, shared.WrapOperation(err, "Failed to update customer")
	}

	resp := ToCustomerResponse(existing)
	return &resp, nil
}

// Delete removes a customer. Its orders go with it through the foreign key.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.customers.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return customer.ErrNotFound()
		}
		return shared.WrapOperation(err, "Failed to delete customer")
	}

	s.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	return nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, customer.ErrNotFound()
		}
		return nil, shared.WrapOperation(err, "Failed to fetch customer")
	}
	return c, nil
}
