package order

import (
	"time"

	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/google/uuid"
)

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// CustomerInfoRequest is the buyer snapshot supplied at creation
type CustomerInfoRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
}

// CreateOrderRequest creates an order from variant references. Prices are
// never taken from the caller; they are snapshotted from the catalog at
// reservation time.
type CreateOrderRequest struct {
	Items    []OrderItemRequest  `json:"items" binding:"required,min=1,dive"`
	Customer CustomerInfoRequest `json:"customer" binding:"required"`
}

// OrderItemResponse is the read model for one order line
type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	VariantID   uuid.UUID `json:"variant_id"`
	VariantName string    `json:"variant_name"`
	SKU         string    `json:"sku"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Subtotal    int64     `json:"subtotal"`
}

// OrderResponse is the read model for an order
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	TotalAmount   int64               `json:"total_amount"`
	TotalDisplay  string              `json:"total_display"`
	Customer      order.CustomerInfo  `json:"customer"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order aggregate to its read model
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			VariantID:   item.VariantID,
			VariantName: item.VariantName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		TotalDisplay:  o.TotalMoney().Display(),
		Customer:      o.Customer,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
