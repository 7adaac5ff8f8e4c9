package inventory

import (
	"context"
	"fmt"
	"sort"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRequest is one requested line of a reservation
type ItemRequest struct {
	VariantID uuid.UUID
	Quantity  int64
}

// ReservedItem is one committed line of a reservation, carrying the price
// snapshot taken at commit time
type ReservedItem struct {
	VariantID   uuid.UUID
	VariantName string
	SKU         string
	Quantity    int64
	UnitPrice   int64
	StockAfter  int64
}

// ReservationRef ties a reservation to the order it belongs to, for the
// adjustment records and the audit entry
type ReservationRef struct {
	OrderID     uuid.UUID
	OrderNumber string
}

// LedgerService is the authoritative writer of stock levels. Every stock
// movement flows through here, inside one transaction per call, and leaves
// one adjustment record per variant and one audit entry per call.
//
// Serialization: variants are loaded with row locks (FOR UPDATE) in
// ascending ID order, so concurrent calls touching the same variant queue
// behind each other while calls touching disjoint variants proceed in
// parallel. Lock ordering prevents deadlocks between overlapping batches.
type LedgerService struct {
	scope             TransactionScope
	gate              identityapp.Gate
	eventPublisher    shared.EventPublisher
	lowStockThreshold int64
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, gate identityapp.Gate) *LedgerService {
	return &LedgerService{
		scope:             scope,
		gate:              gate,
		lowStockThreshold: 5,
	}
}

// SetEventPublisher sets the event publisher for read-model subscriptions
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLowStockThreshold sets the level at or below which low stock events fire
func (s *LedgerService) SetLowStockThreshold(threshold int64) {
	s.lowStockThreshold = threshold
}

// ReserveAndCommit reserves stock for an order in its own transaction, all
// or nothing across the whole item list
func (s *LedgerService) ReserveAndCommit(ctx context.Context, actor identity.Actor, ref ReservationRef, items []ItemRequest) ([]ReservedItem, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermOrderCreate); err != nil {
		return nil, err
	}

	var reserved []ReservedItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		reserved, err = s.ReserveWithin(ctx, repos, actor.TenantID, actor.UserID, ref, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// ReserveWithin decrements stock for every requested item inside an already
// open transaction, all or nothing. If any variant cannot satisfy its
// requested quantity, no variant is decremented and the transaction is
// expected to roll back. The caller has already been authorized.
func (s *LedgerService) ReserveWithin(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, actorID uuid.UUID, ref ReservationRef, items []ItemRequest) ([]ReservedItem, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reservation must contain at least one item")
	}

	// merge duplicate variant lines so one row lock covers them
	quantities := make(map[uuid.UUID]int64, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if _, seen := quantities[item.VariantID]; !seen {
			ids = append(ids, item.VariantID)
		}
		quantities[item.VariantID] += item.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	variants, err := repos.Variants().FindForUpdate(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(variants) != len(ids) {
		return nil, shared.ErrNotFound
	}

	// validate the whole batch before touching anything
	for _, v := range variants {
		if !v.Available() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Variant %s is no longer sold", v.SKU))
		}
		requested := quantities[v.ID]
		if v.Stock < requested {
			return nil, inventory.NewInsufficientStockError(v.ID, requested, v.Stock)
		}
	}

	reserved := make([]ReservedItem, 0, len(variants))
	eventItems := make([]inventory.ReservedQuantity, 0, len(variants))
	for _, v := range variants {
		requested := quantities[v.ID]
		v.Stock -= requested
		if err := repos.Variants().UpdateStock(ctx, v); err != nil {
			return nil, err
		}

		adj, err := inventory.NewAdjustment(tenantID, v.ID, actorID, -requested, inventory.AdjustmentTypeSold,
			fmt.Sprintf("Order %s", ref.OrderNumber), v.Stock)
		if err != nil {
			return nil, err
		}
		adj.ForOrder(ref.OrderID)
		if err := repos.Adjustments().Save(ctx, adj); err != nil {
			return nil, err
		}

		reserved = append(reserved, ReservedItem{
			VariantID:   v.ID,
			VariantName: v.Name,
			SKU:         v.SKU,
			Quantity:    requested,
			UnitPrice:   v.Price,
			StockAfter:  v.Stock,
		})
		eventItems = append(eventItems, inventory.ReservedQuantity{
			VariantID:  v.ID.String(),
			Quantity:   requested,
			StockAfter: v.Stock,
		})
	}

	entry, err := activity.NewEntry(tenantID, ref.OrderID, actorID, activity.EntryTypeStockReserved,
		fmt.Sprintf("Reserved stock for order %s (%d lines)", ref.OrderNumber, len(reserved)),
		activity.Metadata{"order_number": ref.OrderNumber, "line_count": len(reserved)})
	if err != nil {
		return nil, err
	}
	if err := repos.Activities().Save(ctx, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockReservedEvent(tenantID, ref.OrderID, eventItems))
	s.publishLowStock(ctx, tenantID, reserved)

	return reserved, nil
}

// Adjust applies a manual signed stock correction to one variant. It rejects
// any delta that would drive stock negative rather than clamping, and leaves
// one adjustment record and one audit entry.
func (s *LedgerService) Adjust(ctx context.Context, actor identity.Actor, variantID uuid.UUID, delta int64, adjType inventory.AdjustmentType, reason string) (int64, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermInventoryAdjust); err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, shared.NewDomainError("INVALID_DELTA", "Adjustment delta cannot be zero")
	}
	if !adjType.IsValid() {
		return 0, shared.NewDomainError("INVALID_ADJUSTMENT_TYPE", "Unknown adjustment type")
	}

	var newStock int64
	var sku string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		variants, err := repos.Variants().FindForUpdate(ctx, actor.TenantID, []uuid.UUID{variantID})
		if err != nil {
			return err
		}
		if len(variants) != 1 {
			return shared.ErrNotFound
		}
		v := variants[0]

		if v.Stock+delta < 0 {
			return inventory.NewInsufficientStockError(v.ID, -delta, v.Stock)
		}

		v.Stock += delta
		if err := repos.Variants().UpdateStock(ctx, v); err != nil {
			return err
		}
		newStock = v.Stock
		sku = v.SKU

		adj, err := inventory.NewAdjustment(actor.TenantID, v.ID, actor.UserID, delta, adjType, reason, v.Stock)
		if err != nil {
			return err
		}
		if err := repos.Adjustments().Save(ctx, adj); err != nil {
			return err
		}

		entry, err := activity.NewEntry(actor.TenantID, v.ID, actor.UserID, activity.EntryTypeStockAdjusted,
			fmt.Sprintf("Adjusted stock of %s by %+d (%s)", v.Name, delta, adjType),
			activity.Metadata{"variant_name": v.Name, "sku": v.SKU, "delta": delta, "stock_after": v.Stock, "reason": reason})
		if err != nil {
			return err
		}
		if err := repos.Activities().Save(ctx, entry); err != nil {
			return err
		}

		s.publish(ctx, inventory.NewStockAdjustedEvent(adj))
		return nil
	})
	if err != nil {
		return 0, err
	}

	if newStock <= s.lowStockThreshold {
		s.publish(ctx, inventory.NewStockLowEvent(actor.TenantID, variantID, sku, newStock, s.lowStockThreshold))
	}

	return newStock, nil
}

// RestockOrderWithin returns every unit a given order sold back to stock,
// inside an already open transaction. Used by the explicitly authorized
// cancel-with-restock and refund-with-restock paths; restock never happens
// implicitly.
func (s *LedgerService) RestockOrderWithin(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, actorID uuid.UUID, ref ReservationRef) error {
	sold, err := repos.Adjustments().ListByOrder(ctx, tenantID, ref.OrderID)
	if err != nil {
		return err
	}

	quantities := make(map[uuid.UUID]int64)
	ids := make([]uuid.UUID, 0)
	for _, adj := range sold {
		if adj.Type != inventory.AdjustmentTypeSold {
			continue
		}
		if _, seen := quantities[adj.VariantID]; !seen {
			ids = append(ids, adj.VariantID)
		}
		quantities[adj.VariantID] += -adj.Delta
	}
	if len(ids) == 0 {
		return shared.NewDomainError("NOTHING_TO_RESTOCK", "Order has no sold stock to return")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	variants, err := repos.Variants().FindForUpdate(ctx, tenantID, ids)
	if err != nil {
		return err
	}

	var lines int
	for _, v := range variants {
		qty := quantities[v.ID]
		if qty <= 0 {
			continue
		}
		v.Stock += qty
		if err := repos.Variants().UpdateStock(ctx, v); err != nil {
			return err
		}

		adj, err := inventory.NewAdjustment(tenantID, v.ID, actorID, qty, inventory.AdjustmentTypeRestocked,
			fmt.Sprintf("Restock from order %s", ref.OrderNumber), v.Stock)
		if err != nil {
			return err
		}
		adj.ForOrder(ref.OrderID)
		if err := repos.Adjustments().Save(ctx, adj); err != nil {
			return err
		}
		lines++
	}

	entry, err := activity.NewEntry(tenantID, ref.OrderID, actorID, activity.EntryTypeStockRestocked,
		fmt.Sprintf("Restocked %d lines from order %s", lines, ref.OrderNumber),
		activity.Metadata{"order_number": ref.OrderNumber, "line_count": lines})
	if err != nil {
		return err
	}
	return repos.Activities().Save(ctx, entry)
}

// StockOf returns the current stock level of a variant
func (s *LedgerService) StockOf(ctx context.Context, tenantID, variantID uuid.UUID) (int64, error) {
	var stock int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		v, err := repos.Variants().FindByID(ctx, tenantID, variantID)
		if err != nil {
			return err
		}
		stock = v.Stock
		return nil
	})
	return stock, err
}

// History lists the adjustment records of a variant, newest first
func (s *LedgerService) History(ctx context.Context, tenantID, variantID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.InventoryAdjustment], error) {
	var page shared.Paginated[*inventory.InventoryAdjustment]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		page, err = repos.Adjustments().ListByVariant(ctx, tenantID, variantID, filter)
		return err
	})
	return page, err
}

func (s *LedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func (s *LedgerService) publishLowStock(ctx context.Context, tenantID uuid.UUID, reserved []ReservedItem) {
	for _, r := range reserved {
		if r.StockAfter <= s.lowStockThreshold {
			s.publish(ctx, inventory.NewStockLowEvent(tenantID, r.VariantID, r.SKU, r.StockAfter, s.lowStockThreshold))
		}
	}
}
