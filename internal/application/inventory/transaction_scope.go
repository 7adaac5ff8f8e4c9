package inventory

import (
	"context"

	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories a
// stock-affecting operation touches. When a function is executed within a
// scope, all repository operations are part of the same database transaction
// and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories of one
// transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - Variants: stock rows, loaded FOR UPDATE during reservations.
//   - Orders: the order aggregate persisted together with its reservation.
//   - Adjustments: append-only stock movement records.
//   - Activities: append-only audit entries; written in the same transaction
//     so the entry and the state change are never separately observable.
//   - Customers: purchase counters folded in during order creation.
type TransactionalRepositories interface {
	Variants() catalog.VariantRepository
	Orders() order.Repository
	Adjustments() inventory.AdjustmentRepository
	Activities() activity.Repository
	Customers() partner.CustomerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests and for read paths that compose the same
// repositories.
type NoOpTransactionScope struct {
	variants    catalog.VariantRepository
	orders      order.Repository
	adjustments inventory.AdjustmentRepository
	activities  activity.Repository
	customers   partner.CustomerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	variants catalog.VariantRepository,
	orders order.Repository,
	adjustments inventory.AdjustmentRepository,
	activities activity.Repository,
	customers partner.CustomerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		variants:    variants,
		orders:      orders,
		adjustments: adjustments,
		activities:  activities,
		customers:   customers,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Variants returns the variant repository
func (s *NoOpTransactionScope) Variants() catalog.VariantRepository { return s.variants }

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository { return s.orders }

// Adjustments returns the adjustment repository
func (s *NoOpTransactionScope) Adjustments() inventory.AdjustmentRepository { return s.adjustments }

// Activities returns the activity repository
func (s *NoOpTransactionScope) Activities() activity.Repository { return s.activities }

// Customers returns the customer repository
func (s *NoOpTransactionScope) Customers() partner.CustomerRepository { return s.customers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
