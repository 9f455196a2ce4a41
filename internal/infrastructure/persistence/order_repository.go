package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID and loads its customer
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translateError(r.db, err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of orders matching the filter, newest first.
// Each order carries its customer.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	var rows []models.OrderModel
	err := r.filtered(ctx, filter).
		Preload("Customer").
		Scopes(paginate(filter.Page)).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(r.db, err)
	}
	return toDomainOrders(rows), nil
}

// Count returns the number of orders matching the filter, ignoring pagination
func (r *GormOrderRepository) Count(ctx context.Context, filter order.Filter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, translateError(r.db, err)
	}
	return total, nil
}

// FindByCustomerID returns every order of a customer, newest first
func (r *GormOrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]order.Order, error) {
	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(r.db, err)
	}
	return toDomainOrders(rows), nil
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return translateError(r.db, r.db.WithContext(ctx).Omit("Customer").Create(model).Error)
}

// Update writes the mutable columns of an existing order
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"total":      o.Total,
			"status":     o.Status,
			"notes":      o.Notes,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(r.db, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(r.db, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) filtered(ctx context.Context, filter order.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	return query
}

func toDomainOrders(rows []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

var _ order.Repository = (*GormOrderRepository)(nil)
