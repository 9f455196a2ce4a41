// Package seed provisions the admin account and optional demo data.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/order"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxOrdersPerCustomer = 3

// Seeder writes seed data through the regular repositories
type Seeder struct {
	db     *persistence.Database
	faker  *gofakeit.Faker
	logger *zap.Logger
}

// New creates a Seeder. A zero fakerSeed picks a random one.
func New(db *persistence.Database, fakerSeed uint64, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		faker:  gofakeit.New(fakerSeed),
		logger: logger.Named("seed"),
	}
}

// EnsureAdmin creates the admin user unless one with the same email exists.
// It reports whether a user was created.
func (s *Seeder) EnsureAdmin(ctx context.Context, cfg config.SeedConfig) (bool, error) {
	users := persistence.NewGormUserRepository(s.db.DB)

	_, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		s.logger.Info("Admin user already exists", zap.String("email", cfg.AdminEmail))
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	admin, err := identity.NewUser(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		return false, err
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Admin user created", zap.String("email", admin.Email))
	return true, nil
}

// Demo inserts count fake customers with up to three orders each, all in one
// transaction.
func (s *Seeder) Demo(ctx context.Context, count int) (customers, orders int, err error) {
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		customerRepo := persistence.NewGormCustomerRepository(tx)
		orderRepo := persistence.NewGormOrderRepository(tx)
		customers, orders = 0, 0

		for i := 0; i < count; i++ {
			c, err := s.fakeCustomer()
			if err != nil {
				return err
			}
			if err := customerRepo.Create(ctx, c); err != nil {
				return fmt.Errorf("failed to create demo customer %s: %w", c.Email, err)
			}
			customers++

			for j := s.faker.IntRange(0, maxOrdersPerCustomer); j > 0; j-- {
				o, err := s.fakeOrder(c)
				if err != nil {
					return err
				}
				if err := orderRepo.Create(ctx, o); err != nil {
					return fmt.Errorf("failed to create demo order: %w", err)
				}
				orders++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("Demo data created", zap.Int("customers", customers), zap.Int("orders", orders))
	return customers, orders, nil
}

func (s *Seeder) fakeCustomer() (*customer.Customer, error) {
	phone := s.faker.Phone()
	address := s.faker.Address().Address
	// the suffix comes from crypto randomness, not the faker, so repeated
	// runs with the same seed still produce fresh emails
	email := fmt.Sprintf("%s.%s@%s", s.faker.Username(), uuid.NewString()[:8], s.faker.DomainName())
	return customer.NewCustomer(s.faker.Name(), email, &phone, &address)
}

func (s *Seeder) fakeOrder(c *customer.Customer) (*order.Order, error) {
	status := order.Statuses[s.faker.IntRange(0, len(order.Statuses)-1)]
	total := decimal.NewFromFloat(s.faker.Price(5, 2000)).Round(2)

	var notes *string
	if s.faker.Bool() {
		n := s.faker.Company()
		notes = &n
	}
	return order.NewOrder(c.ID, total, status, notes)
}
