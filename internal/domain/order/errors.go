package order

import "github.com/crm/backend/internal/domain/shared"

const CodeOrderNotFound = "ORDER_NOT_FOUND"

// ErrNotFound is returned when an order id does not resolve
func ErrNotFound() *shared.DomainError {
	return shared.NewNotFoundError(CodeOrderNotFound, "Order not found")
}
