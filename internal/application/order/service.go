package order

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderNumberAttempts bounds how often Create draws a fresh order number
// after a clash on the unique index.
const orderNumberAttempts = 3

// Service handles order-related business operations
type Service struct {
	orders    order.Repository
	customers customer.Repository
	logger    *zap.Logger
}

// NewService creates a new order service
func NewService(orders order.Repository, customers customer.Repository, logger *zap.Logger) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		logger:    logger,
	}
}

// List returns one page of orders with their customers, newest first
func (s *Service) List(ctx context.Context, query ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
	filter := query.Filter()

	items, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to fetch orders")
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to fetch orders")
	}

	page := shared.NewPaginated(ToOrderResponses(items), filter.Page, total)
	return &page, nil
}

// Get returns an order with its customer
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Create places an order for an existing customer. The customer is checked
// before anything is written.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, shared.NewValidationError("Validation failed",
			shared.FieldError{Field: "customerId", Message: "Must be a valid UUID"})
	}

	exists, err := s.customers.ExistsByID(ctx, customerID)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to create order")
	}
	if !exists {
		return nil, customer.ErrNotFound()
	}

	var status order.Status
	if req.Status != nil {
		status = order.Status(*req.Status)
	}
	o, err := order.NewOrder(customerID, toMoney(req.Total), status, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, o); err != nil {
		return nil, shared.WrapOperation(err, "Failed to create order")
	}

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("customer_id", customerID.String()),
	)

	created, err := s.find(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(created)
	return &resp, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var total *decimal.Decimal
	if req.Total != nil {
		v := toMoney(*req.Total)
		total = &v
	}
	var status *order.Status
	if req.Status != nil {
		v := order.Status(*req.Status)
		status = &v
	}
	if err := o.Update(total, status, req.Notes); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrNotFound()
		}
		return nil, shared.WrapOperation(err, "Failed to update order")
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Delete removes an order
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return order.ErrNotFound()
		}
		return shared.WrapOperation(err, "Failed to delete order")
	}

	s.logger.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrNotFound()
		}
		return nil, shared.WrapOperation(err, "Failed to fetch order")
	}
	return o, nil
}

// insert writes o, drawing a new order number when the generated one is
// already taken.
func (s *Service) insert(ctx context.Context, o *order.Order) error {
	for attempt := 1; ; attempt++ {
		err := s.orders.Create(ctx, o)
		var unique *shared.UniqueViolationError
		if !errors.As(err, &unique) || unique.Field != "order_number" || attempt == orderNumberAttempts {
			return err
		}
		s.logger.Warn("Order number clash, regenerating",
			zap.String("order_number", o.OrderNumber),
			zap.Int("attempt", attempt),
		)
		o.OrderNumber = order.NewOrderNumber(o.CreatedAt)
	}
}
