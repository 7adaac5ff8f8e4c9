package order

import (
	"context"
	"fmt"
	"time"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	inventoryapp "github.com/commerce/backoffice/internal/application/inventory"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/partner"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkflowService drives the order lifecycle. Creation reserves stock,
// persists the order and folds the customer counters inside one transaction;
// everything afterwards is a status transition.
type WorkflowService struct {
	scope          inventoryapp.TransactionScope
	ledger         *inventoryapp.LedgerService
	gate           identityapp.Gate
	policy         order.TransitionPolicy
	eventPublisher shared.EventPublisher
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(scope inventoryapp.TransactionScope, ledger *inventoryapp.LedgerService, gate identityapp.Gate, policy order.TransitionPolicy) *WorkflowService {
	return &WorkflowService{
		scope:  scope,
		ledger: ledger,
		gate:   gate,
		policy: policy,
	}
}

// SetEventPublisher sets the event publisher for read-model subscriptions
func (s *WorkflowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create reserves stock for every requested line and persists the order,
// all inside one transaction. If any variant cannot satisfy its quantity
// nothing is decremented and no order exists afterwards.
func (s *WorkflowService) Create(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermOrderCreate); err != nil {
		return nil, err
	}

	customer := order.CustomerInfo{
		Name:    req.Customer.Name,
		Email:   req.Customer.Email,
		Phone:   req.Customer.Phone,
		Address: req.Customer.Address,
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	items := make([]inventoryapp.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, inventoryapp.ItemRequest{VariantID: item.VariantID, Quantity: item.Quantity})
	}

	var created *order.Order
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		orderID := uuid.New()
		orderNumber, err := s.nextOrderNumber(ctx, repos, actor.TenantID)
		if err != nil {
			return err
		}

		reserved, err := s.ledger.ReserveWithin(ctx, repos, actor.TenantID, actor.UserID,
			inventoryapp.ReservationRef{OrderID: orderID, OrderNumber: orderNumber}, items)
		if err != nil {
			return err
		}

		snapshots := make([]order.ItemSnapshot, 0, len(reserved))
		for _, r := range reserved {
			snapshots = append(snapshots, order.ItemSnapshot{
				VariantID:   r.VariantID,
				VariantName: r.VariantName,
				SKU:         r.SKU,
				Quantity:    r.Quantity,
				UnitPrice:   r.UnitPrice,
			})
		}

		o, err := order.NewOrderWithID(orderID, actor.TenantID, orderNumber, customer, snapshots)
		if err != nil {
			return err
		}

		buyer, err := s.upsertCustomer(ctx, repos, actor.TenantID, customer, o)
		if err != nil {
			return err
		}
		o.LinkCustomer(buyer.ID)

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}

		entry, err := activity.NewEntry(actor.TenantID, o.ID, actor.UserID, activity.EntryTypeOrderCreated,
			fmt.Sprintf("Order %s created (%d lines, total %s)", o.OrderNumber, len(o.Items), o.TotalMoney()),
			activity.Metadata{"order_number": o.OrderNumber, "total_amount": o.TotalAmount})
		if err != nil {
			return err
		}
		if err := repos.Activities().Save(ctx, entry); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, created)

	resp := ToOrderResponse(created)
	return &resp, nil
}

// Repeat creates a fresh order from a prior order's line items, re-validated
// against current stock and current prices. It is not a distinct primitive.
func (s *WorkflowService) Repeat(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	var previous *order.Order
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		var err error
		previous, err = repos.Orders().FindByID(ctx, actor.TenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	req := CreateOrderRequest{
		Customer: CustomerInfoRequest{
			Name:    previous.Customer.Name,
			Email:   previous.Customer.Email,
			Phone:   previous.Customer.Phone,
			Address: previous.Customer.Address,
		},
	}
	for _, item := range previous.Items {
		req.Items = append(req.Items, OrderItemRequest{VariantID: item.VariantID, Quantity: item.Quantity})
	}

	return s.Create(ctx, actor, req)
}

// UpdateStatus moves an order along the state machine. Restock is an
// explicit opt-in for the cancelled and refunded targets and requires its
// own permission; the engine never restocks implicitly.
func (s *WorkflowService) UpdateStatus(ctx context.Context, actor identity.Actor, orderID uuid.UUID, target order.OrderStatus, restock bool) (*OrderResponse, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermOrderUpdateStatus); err != nil {
		return nil, err
	}
	if restock {
		if target != order.OrderStatusCancelled && target != order.OrderStatusRefunded {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Restock applies only when cancelling or refunding")
		}
		if err := s.gate.Authorize(ctx, actor, identity.PermInventoryRestock); err != nil {
			return nil, err
		}
	}

	var updated *order.Order
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}

		previous := o.Status
		if err := o.TransitionTo(target, s.policy); err != nil {
			return err
		}

		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		if restock {
			ref := inventoryapp.ReservationRef{OrderID: o.ID, OrderNumber: o.OrderNumber}
			if err := s.ledger.RestockOrderWithin(ctx, repos, actor.TenantID, actor.UserID, ref); err != nil {
				return err
			}
		}

		entry, err := activity.NewEntry(actor.TenantID, o.ID, actor.UserID, activity.EntryTypeOrderStatusChanged,
			fmt.Sprintf("Order %s moved from %s to %s", o.OrderNumber, previous, o.Status),
			activity.Metadata{"order_number": o.OrderNumber, "previous_status": previous.String(), "new_status": o.Status.String(), "restocked": restock})
		if err != nil {
			return err
		}
		if err := repos.Activities().Save(ctx, entry); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// GetByID returns one order
func (s *WorkflowService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByNumber returns one order by its order number
func (s *WorkflowService) GetByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByNumber(ctx, tenantID, orderNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns a page of the tenant's orders
func (s *WorkflowService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[OrderResponse], error) {
	var page shared.Paginated[*order.Order]
	err := s.scope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		var err error
		page, err = repos.Orders().List(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	items := make([]OrderResponse, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, ToOrderResponse(o))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// nextOrderNumber generates SO-<date>-<seq> per tenant per day. The
// surrounding transaction makes the count stable enough; the unique index on
// (tenant_id, order_number) backstops a race.
func (s *WorkflowService) nextOrderNumber(ctx context.Context, repos inventoryapp.TransactionalRepositories, tenantID uuid.UUID) (string, error) {
	today := time.Now().Format("20060102")
	count, err := repos.Orders().CountCreatedOn(ctx, tenantID, today)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SO-%s-%04d", today, count+1), nil
}

func (s *WorkflowService) upsertCustomer(ctx context.Context, repos inventoryapp.TransactionalRepositories, tenantID uuid.UUID, info order.CustomerInfo, o *order.Order) (*partner.Customer, error) {
	buyer, err := repos.Customers().FindByEmail(ctx, tenantID, info.Email)
	if err != nil {
		buyer, err = partner.NewCustomer(tenantID, info.Name, info.Email, info.Phone, info.Address)
		if err != nil {
			return nil, err
		}
		buyer.ApplyOrder(o.TotalAmount, o.CreatedAt)
		if err := repos.Customers().Save(ctx, buyer); err != nil {
			return nil, err
		}
		return buyer, nil
	}

	buyer.ApplyOrder(o.TotalAmount, o.CreatedAt)
	if err := repos.Customers().SaveWithLock(ctx, buyer); err != nil {
		return nil, err
	}
	return buyer, nil
}

func (s *WorkflowService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, o.GetDomainEvents()...)
	o.ClearDomainEvents()
}
