package customer

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// Customer is a party that places orders
type Customer struct {
	shared.BaseEntity
	Name    string
	Email   string
	Phone   *string
	Address *string
}

// NewCustomer creates a new customer
func NewCustomer(name, email string, phone, address *string) (*Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var details []shared.FieldError
	if name == "" {
		details = append(details, shared.FieldError{Field: "name", Message: "This field is required"})
	}
	if email == "" {
		details = append(details, shared.FieldError{Field: "email", Message: "This field is required"})
	}
	if len(details) > 0 {
		return nil, shared.NewValidationError("Invalid customer", details...)
	}

	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Phone:      phone,
		Address:    address,
	}, nil
}

// Update applies the non-nil fields
func (c *Customer) Update(name, email, phone, address *string) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return shared.NewValidationError("Invalid customer", shared.FieldError{Field: "name", Message: "Must not be empty"})
		}
		c.Name = trimmed
	}
	if email != nil {
		trimmed := strings.TrimSpace(*email)
		if trimmed == "" {
			return shared.NewValidationError("Invalid customer", shared.FieldError{Field: "email", Message: "Must not be empty"})
		}
		c.Email = trimmed
	}
	if phone != nil {
		c.Phone = phone
	}
	if address != nil {
		c.Address = address
	}
	c.Touch()
	return nil
}
