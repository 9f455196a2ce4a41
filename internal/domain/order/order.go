package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/customer"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// MaxTotal is the largest total NUMERIC(12,2) storage holds
var MaxTotal = decimal.RequireFromString("9999999999.99")

// Statuses lists every accepted status
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is a purchase record belonging to exactly one customer
type Order struct {
	shared.BaseEntity
	OrderNumber string
	CustomerID  uuid.UUID
	Total       decimal.Decimal
	Status      Status
	Notes       *string

	// Customer is populated only when the repository loads the relation
	Customer *customer.Customer
}

// NewOrder creates a pending order unless another status is given
func NewOrder(customerID uuid.UUID, total decimal.Decimal, status Status, notes *string) (*Order, error) {
	if status == "" {
		status = StatusPending
	}

	var details []shared.FieldError
	if customerID == uuid.Nil {
		details = append(details, shared.FieldError{Field: "customerId", Message: "This field is required"})
	}
	if msg, ok := checkTotal(total); !ok {
		details = append(details, shared.FieldError{Field: "total", Message: msg})
	}
	if !status.IsValid() {
		details = append(details, shared.FieldError{Field: "status", Message: "Must be one of: " + statusList()})
	}
	if len(details) > 0 {
		return nil, shared.NewValidationError("Invalid order", details...)
	}

	base := shared.NewBaseEntity()
	return &Order{
		BaseEntity:  base,
		OrderNumber: NewOrderNumber(base.CreatedAt),
		CustomerID:  customerID,
		Total:       total,
		Status:      status,
		Notes:       notes,
	}, nil
}

// Update applies the non-nil fields
func (o *Order) Update(total *decimal.Decimal, status *Status, notes *string) error {
	var details []shared.FieldError
	if total != nil {
		if msg, ok := checkTotal(*total); !ok {
			details = append(details, shared.FieldError{Field: "total", Message: msg})
		}
	}
	if status != nil && !status.IsValid() {
		details = append(details, shared.FieldError{Field: "status", Message: "Must be one of: " + statusList()})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Invalid order", details...)
	}

	if total != nil {
		o.Total = *total
	}
	if status != nil {
		o.Status = *status
	}
	if notes != nil {
		o.Notes = notes
	}
	o.Touch()
	return nil
}

// NewOrderNumber generates an order number: ORD-YYYYMMDD-XXXXXXXX
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

func checkTotal(total decimal.Decimal) (string, bool) {
	if !total.IsPositive() {
		return "Must be greater than 0", false
	}
	if total.GreaterThan(MaxTotal) {
		return "Must be at most " + MaxTotal.StringFixed(2), false
	}
	return "", true
}

func statusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}
