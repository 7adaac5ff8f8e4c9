package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/commerce/backoffice/internal/domain/inventory"
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LowStockAlert is one variant currently at or below the threshold
type LowStockAlert struct {
	VariantID uuid.UUID `json:"variant_id"`
	SKU       string    `json:"sku"`
	Stock     int64     `json:"stock"`
	Threshold int64     `json:"threshold"`
	RaisedAt  time.Time `json:"raised_at"`
}

// LowStockMonitor is a read model of variants running low on stock.
// It subscribes to inventory events so dashboards never poll the ledger.
type LowStockMonitor struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]map[uuid.UUID]LowStockAlert // tenantID -> variantID -> alert
	logger *zap.Logger
}

// NewLowStockMonitor creates a new low stock monitor
func NewLowStockMonitor(logger *zap.Logger) *LowStockMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockMonitor{
		alerts: make(map[uuid.UUID]map[uuid.UUID]LowStockAlert),
		logger: logger,
	}
}

// EventTypes implements shared.EventHandler
func (m *LowStockMonitor) EventTypes() []string {
	return []string{
		inventory.EventStockLow,
		inventory.EventStockAdjusted,
	}
}

// Handle implements shared.EventHandler
func (m *LowStockMonitor) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockLowEvent:
		m.raise(e)
	case *inventory.StockAdjustedEvent:
		m.clearIfRecovered(e)
	}
	return nil
}

func (m *LowStockMonitor) raise(e *inventory.StockLowEvent) {
	variantID, err := uuid.Parse(e.VariantID)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tenantAlerts, ok := m.alerts[e.TenantID()]
	if !ok {
		tenantAlerts = make(map[uuid.UUID]LowStockAlert)
		m.alerts[e.TenantID()] = tenantAlerts
	}
	tenantAlerts[variantID] = LowStockAlert{
		VariantID: variantID,
		SKU:       e.SKU,
		Stock:     e.Stock,
		Threshold: e.Threshold,
		RaisedAt:  e.OccurredAt(),
	}

	m.logger.Warn("variant stock low",
		zap.String("tenant_id", e.TenantID().String()),
		zap.String("variant_id", e.VariantID),
		zap.String("sku", e.SKU),
		zap.Int64("stock", e.Stock),
		zap.Int64("threshold", e.Threshold),
	)
}

func (m *LowStockMonitor) clearIfRecovered(e *inventory.StockAdjustedEvent) {
	variantID, err := uuid.Parse(e.VariantID)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tenantAlerts, ok := m.alerts[e.TenantID()]
	if !ok {
		return
	}
	alert, ok := tenantAlerts[variantID]
	if !ok {
		return
	}
	if e.StockAfter > alert.Threshold {
		delete(tenantAlerts, variantID)
		if len(tenantAlerts) == 0 {
			delete(m.alerts, e.TenantID())
		}
	}
}

// Alerts returns the active alerts for a tenant
func (m *LowStockMonitor) Alerts(tenantID uuid.UUID) []LowStockAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tenantAlerts := m.alerts[tenantID]
	result := make([]LowStockAlert, 0, len(tenantAlerts))
	for _, alert := range tenantAlerts {
		result = append(result, alert)
	}
	return result
}

var _ shared.EventHandler = (*LowStockMonitor)(nil)
