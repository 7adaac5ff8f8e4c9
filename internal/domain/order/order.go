package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/commerce/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status admits no further transitions
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusDelivered, OrderStatusRefunded:
		return true
	}
	return false
}

// TransitionPolicy tunes edges the state machine treats as configurable.
// EarlyRefund permits paid -> refunded before fulfillment.
type TransitionPolicy struct {
	AllowEarlyRefund bool
}

// CanTransitionTo checks if the status can transition to the target status
// under the given policy
func (s OrderStatus) CanTransitionTo(target OrderStatus, policy TransitionPolicy) bool {
	// cancelled is reachable from every non-terminal state
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}

	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid
	case OrderStatusPaid:
		if target == OrderStatusProcessing {
			return true
		}
		return target == OrderStatusRefunded && policy.AllowEarlyRefund
	case OrderStatusProcessing:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered:
		return target == OrderStatusRefunded
	}
	return false
}

// PaymentStatus represents whether an order has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// CustomerInfo is a point-in-time snapshot of the buyer, not a live
// reference. Later customer edits never change past orders.
type CustomerInfo struct {
	Name    string `gorm:"column:customer_name;type:varchar(200);not null" json:"name"`
	Email   string `gorm:"column:customer_email;type:varchar(200);not null" json:"email"`
	Phone   string `gorm:"column:customer_phone;type:varchar(50)" json:"phone"`
	Address string `gorm:"column:customer_address;type:varchar(500)" json:"address"`
}

// Validate checks the snapshot fields
func (c CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	email := strings.TrimSpace(c.Email)
	if email == "" || !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer email is not valid")
	}
	return nil
}

// OrderItem is one line of an order. VariantID, name, SKU and unit price are
// snapshots taken at creation time; later catalog changes do not affect them.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	VariantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"variant_id"`
	VariantName string    `gorm:"type:varchar(200);not null" json:"variant_name"`
	SKU         string    `gorm:"type:varchar(50);not null" json:"sku"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns quantity times the snapshot unit price
func (i OrderItem) Subtotal() int64 {
	return i.Quantity * i.UnitPrice
}

// Order is the aggregate root for the order lifecycle. TotalAmount is fixed
// from the item snapshots at creation and never recomputed afterwards.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber   string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	TotalAmount   int64         `gorm:"not null"`
	CustomerID    *uuid.UUID    `gorm:"type:uuid;index"`
	Customer      CustomerInfo  `gorm:"embedded"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemSnapshot carries the data needed to build one order line
type ItemSnapshot struct {
	VariantID   uuid.UUID
	VariantName string
	SKU         string
	Quantity    int64
	UnitPrice   int64
}

// NewOrder creates an order from already-reserved item snapshots. The caller
// is responsible for having decremented stock atomically before this point.
func NewOrder(tenantID uuid.UUID, orderNumber string, customer CustomerInfo, snapshots []ItemSnapshot) (*Order, error) {
	return NewOrderWithID(uuid.New(), tenantID, orderNumber, customer, snapshots)
}

// NewOrderWithID creates an order under a caller-chosen ID. The workflow
// reserves stock against the order ID before the aggregate exists, so the ID
// has to be fixed up front.
func NewOrderWithID(id, tenantID uuid.UUID, orderNumber string, customer CustomerInfo, snapshots []ItemSnapshot) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order must contain at least one item")
	}

	if id == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order ID cannot be empty")
	}

	root := shared.NewTenantAggregateRoot(tenantID)
	root.ID = id
	o := &Order{
		TenantAggregateRoot: root,
		OrderNumber:         orderNumber,
		Status:              OrderStatusPending,
		PaymentStatus:       PaymentStatusUnpaid,
		Customer:            customer,
		Items:               make([]OrderItem, 0, len(snapshots)),
	}

	var total int64
	now := time.Now()
	for _, s := range snapshots {
		if s.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if s.UnitPrice < 0 {
			return nil, shared.NewDomainError("INVALID_PRICE", "Item unit price cannot be negative")
		}
		item := OrderItem{
			ID:          uuid.New(),
			OrderID:     o.ID,
			VariantID:   s.VariantID,
			VariantName: s.VariantName,
			SKU:         s.SKU,
			Quantity:    s.Quantity,
			UnitPrice:   s.UnitPrice,
			CreatedAt:   now,
		}
		total += item.Subtotal()
		o.Items = append(o.Items, item)
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// LinkCustomer associates the order with a customer aggregate. The embedded
// snapshot stays untouched.
func (o *Order) LinkCustomer(customerID uuid.UUID) {
	o.CustomerID = &customerID
}

// TransitionTo moves the order to the target status if the edge is legal
// under the policy. Transitioning to paid flips the payment status;
// transitioning to refunded marks the payment refunded.
func (o *Order) TransitionTo(target OrderStatus, policy TransitionPolicy) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target, policy) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	previous := o.Status
	o.Status = target
	switch target {
	case OrderStatusPaid:
		o.PaymentStatus = PaymentStatusPaid
	case OrderStatusRefunded:
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))

	return nil
}

// TotalMoney returns the order total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoney(o.TotalAmount)
}

// TotalQuantity returns the summed quantity across all lines
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
