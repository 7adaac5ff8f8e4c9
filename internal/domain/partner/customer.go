package partner

import (
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer aggregates the purchase history of one buyer within a tenant.
// The counters are recomputed incrementally inside order creation's
// transaction so they never drift from the order table.
type Customer struct {
	shared.TenantAggregateRoot
	Name        string     `gorm:"type:varchar(200);not null"`
	Email       string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_customer_tenant_email,priority:2"`
	Phone       string     `gorm:"type:varchar(50)"`
	Address     string     `gorm:"type:varchar(500)"`
	TotalOrders int64      `gorm:"not null;default:0"`
	TotalSpend  int64      `gorm:"not null;default:0"`
	LastSeenAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, name, email, phone, address string) (*Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer email is not valid")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               email,
		Phone:               phone,
		Address:             address,
	}, nil
}

// ApplyOrder folds one new order into the aggregate counters
func (c *Customer) ApplyOrder(totalAmount int64, placedAt time.Time) {
	c.TotalOrders++
	c.TotalSpend += totalAmount
	c.LastSeenAt = &placedAt
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// UpdateContact updates the contact details
func (c *Customer) UpdateContact(name, phone, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}

	c.Name = name
	c.Phone = phone
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
