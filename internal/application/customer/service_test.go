package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCustomerRepository is a mock implementation of customer.Repository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter customer.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter customer.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter order.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService() (*Service, *MockCustomerRepository, *MockOrderRepository) {
	customers := new(MockCustomerRepository)
	orders := new(MockOrderRepository)
	return NewService(customers, orders, zap.NewNop()), customers, orders
}

func newTestCustomer(t *testing.T, name, email string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(name, email, nil, nil)
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func requireDomainError(t *testing.T, err error, kind shared.ErrorKind, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, kind, domainErr.Kind)
	assert.Equal(t, code, domainErr.Code)
}

func TestService_List(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	query := ListCustomersQuery{Page: 2, Limit: 2, Search: "doe"}
	filter := customer.Filter{Page: shared.Page{Page: 2, Limit: 2}, Search: "doe"}
	items := []customer.Customer{
		*newTestCustomer(t, "Jane Doe", "jane@example.com"),
		*newTestCustomer(t, "John Doe", "john@example.com"),
	}
	customers.On("FindAll", ctx, filter).Return(items, nil)
	customers.On("Count", ctx, filter).Return(int64(5), nil)

	page, err := svc.List(ctx, query)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Jane Doe", page.Items[0].Name)
	assert.Equal(t, shared.Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3}, page.Pagination)
	customers.AssertExpectations(t)
}

func TestService_List_EmptyIsNotNil(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	customers.On("FindAll", ctx, mock.Anything).Return([]customer.Customer{}, nil)
	customers.On("Count", ctx, mock.Anything).Return(int64(0), nil)

	page, err := svc.List(ctx, ListCustomersQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Pagination.Pages)
}

func TestService_List_StorageFailure(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	customers.On("FindAll", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.List(ctx, ListCustomersQuery{Page: 1, Limit: 10})
	requireDomainError(t, err, shared.KindInternal, shared.CodeInternal)
	assert.NotContains(t, err.(*shared.DomainError).Message, "connection refused")
}

func TestService_Get(t *testing.T) {
	svc, customers, orders := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	o, err := order.NewOrder(c.ID, decimal.RequireFromString("99.99"), order.StatusShipped, nil)
	require.NoError(t, err)

	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	orders.On("FindByCustomerID", ctx, c.ID).Return([]order.Order{*o}, nil)

	resp, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, c.ID, resp.ID)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, o.OrderNumber, resp.Orders[0].OrderNumber)
	assert.Equal(t, "shipped", resp.Orders[0].Status)
	assert.True(t, resp.Orders[0].Total.Equal(decimal.RequireFromString("99.99")))
}

func TestService_Get_NotFound(t *testing.T) {
	svc, customers, orders := newTestService()
	ctx := context.Background()
	id := uuid.New()

	customers.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Get(ctx, id)
	requireDomainError(t, err, shared.KindNotFound, customer.CodeCustomerNotFound)
	orders.AssertNotCalled(t, "FindByCustomerID", mock.Anything, mock.Anything)
}

func TestService_Create(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	customers.On("ExistsByEmail", ctx, "john@example.com").Return(false, nil)
	customers.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
		return c.Name == "John Doe" && c.Email == "john@example.com" && *c.Phone == "555-0100"
	})).Return(nil)

	resp, err := svc.Create(ctx, CreateCustomerRequest{
		Name:  "John Doe",
		Email: "john@example.com",
		Phone: strPtr("555-0100"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "John Doe", resp.Name)
	assert.Nil(t, resp.Address)
	customers.AssertExpectations(t)
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	customers.On("ExistsByEmail", ctx, "john@example.com").Return(true, nil)

	_, err := svc.Create(ctx, CreateCustomerRequest{Name: "John", Email: "john@example.com"})
	requireDomainError(t, err, shared.KindConflict, customer.CodeCustomerExists)
	customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_UniqueViolationPassesThrough(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	violation := &shared.UniqueViolationError{Field: "email"}
	customers.On("ExistsByEmail", ctx, "john@example.com").Return(false, nil)
	customers.On("Create", ctx, mock.Anything).Return(violation)

	_, err := svc.Create(ctx, CreateCustomerRequest{Name: "John", Email: "john@example.com"})
	var got *shared.UniqueViolationError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "email", got.Field)
}

func TestService_Update_SameEmailSkipsCheck(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	customers.On("Update", ctx, c).Return(nil)

	resp, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Email: strPtr("john@example.com")})
	require.NoError(t, err)

	assert.Equal(t, "john@example.com", resp.Email)
	customers.AssertNotCalled(t, "ExistsByEmailExcludingID", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_CaseChangeIsChecked(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	customers.On("ExistsByEmailExcludingID", ctx, "John@example.com", c.ID).Return(false, nil)
	customers.On("Update", ctx, c).Return(nil)

	resp, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Email: strPtr("John@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "John@example.com", resp.Email)
	customers.AssertExpectations(t)
}

func TestService_Update_EmailTaken(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	b := newTestCustomer(t, "B", "b@x.com")
	customers.On("FindByID", ctx, b.ID).Return(b, nil)
	customers.On("ExistsByEmailExcludingID", ctx, "a@x.com", b.ID).Return(true, nil)

	_, err := svc.Update(ctx, b.ID, UpdateCustomerRequest{Email: strPtr("a@x.com")})
	requireDomainError(t, err, shared.KindConflict, customer.CodeEmailTaken)
	assert.Equal(t, "b@x.com", b.Email)
	customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()

	customers.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Update(ctx, id, UpdateCustomerRequest{Name: strPtr("x")})
	requireDomainError(t, err, shared.KindNotFound, customer.CodeCustomerNotFound)
}

func TestService_Update_PartialFields(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	customers.On("Update", ctx, c).Return(nil)

	resp, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Address: strPtr("1 Main St")})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", resp.Name)
	assert.Equal(t, "1 Main St", *resp.Address)
}

func TestService_Delete(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	customers.On("Delete", ctx, c.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, c.ID))
	customers.AssertExpectations(t)
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()

	customers.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	err := svc.Delete(ctx, id)
	requireDomainError(t, err, shared.KindNotFound, customer.CodeCustomerNotFound)
	customers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete_StorageFailure(t *testing.T) {
	svc, customers, _ := newTestService()
	ctx := context.Background()

	c := newTestCustomer(t, "John Doe", "john@example.com")
	customers.On("FindByID", ctx, c.ID).Return(c, nil)
	customers.On("Delete", ctx, c.ID).Return(errors.New("deadlock detected"))

	err := svc.Delete(ctx, c.ID)
	requireDomainError(t, err, shared.KindInternal, shared.CodeInternal)
	assert.Equal(t, "Failed to delete customer", err.(*shared.DomainError).Message)
}
