package models

import (
	"github.com/crm/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
// Deleting a customer removes its orders through the foreign key.
type OrderModel struct {
	BaseModel
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:orders_order_number_key"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      order.Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes       *string         `gorm:"type:text"`

	Customer *CustomerModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
// The customer is attached only when the relation was preloaded.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderNumber: m.OrderNumber,
		CustomerID:  m.CustomerID,
		Total:       m.Total,
		Status:      m.Status,
		Notes:       m.Notes,
	}
	if m.Customer != nil {
		o.Customer = m.Customer.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
// The customer relation is never written through the order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.Total = o.Total
	m.Status = o.Status
	m.Notes = o.Notes
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
