package persistence

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(r.db, err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of customers matching the filter, newest first
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter customer.Filter) ([]customer.Customer, error) {
	var rows []models.CustomerModel
	err := r.filtered(ctx, filter).
		Scopes(paginate(filter.Page)).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(r.db, err)
	}

	customers := make([]customer.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, nil
}

// Count returns the number of customers matching the filter, ignoring pagination
func (r *GormCustomerRepository) Count(ctx context.Context, filter customer.Filter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, translateError(r.db, err)
	}
	return total, nil
}

// ExistsByID checks if a customer exists
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

// ExistsByEmail checks if any customer has exactly this email
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// ExistsByEmailExcludingID checks if a customer other than excludeID has the email
func (r *GormCustomerRepository) ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "email = ? AND id <> ?", email, excludeID)
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	return translateError(r.db, r.db.WithContext(ctx).Create(model).Error)
}

// Update writes all mutable columns of an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":       model.Name,
			"email":      model.Email,
			"phone":      model.Phone,
			"address":    model.Address,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(r.db, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a customer. Its orders are removed by the foreign key cascade.
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(r.db, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) filtered(ctx context.Context, filter customer.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return query
}

func (r *GormCustomerRepository) exists(ctx context.Context, cond string, args ...any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where(cond, args...).
		Count(&count).Error
	if err != nil {
		return false, translateError(r.db, err)
	}
	return count > 0, nil
}

var _ customer.Repository = (*GormCustomerRepository)(nil)
