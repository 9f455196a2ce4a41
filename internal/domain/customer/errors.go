package customer

import "github.com/crm/backend/internal/domain/shared"

const (
	CodeCustomerExists   = "CUSTOMER_EXISTS"
	CodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	CodeEmailTaken       = "EMAIL_TAKEN"
)

// ErrNotFound is returned when a customer id does not resolve
func ErrNotFound() *shared.DomainError {
	return shared.NewNotFoundError(CodeCustomerNotFound, "Customer not found")
}

// ErrExists is returned when creating a customer with a registered email
func ErrExists() *shared.DomainError {
	return shared.NewConflictError(CodeCustomerExists, "Customer with this email already exists")
}

// ErrEmailTaken is returned when changing to an email owned by another customer
func ErrEmailTaken() *shared.DomainError {
	return shared.NewConflictError(CodeEmailTaken, "Email is already taken by another customer")
}
