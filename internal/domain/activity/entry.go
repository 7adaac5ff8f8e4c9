package activity

import (
	"github.com/commerce/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryType classifies what kind of action an audit entry records
type EntryType string

const (
	EntryTypeOrderCreated       EntryType = "order_created"
	EntryTypeOrderStatusChanged EntryType = "order_status_changed"
	EntryTypeStockAdjusted      EntryType = "stock_adjusted"
	EntryTypeStockReserved      EntryType = "stock_reserved"
	EntryTypeStockRestocked     EntryType = "stock_restocked"
	EntryTypeProductCreated     EntryType = "product_created"
	EntryTypeProductUpdated     EntryType = "product_updated"
	EntryTypeProductImported    EntryType = "product_imported"
	EntryTypeMemberChanged      EntryType = "member_changed"
)

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeOrderCreated, EntryTypeOrderStatusChanged, EntryTypeStockAdjusted,
		EntryTypeStockReserved, EntryTypeStockRestocked, EntryTypeProductCreated,
		EntryTypeProductUpdated, EntryTypeProductImported, EntryTypeMemberChanged:
		return true
	}
	return false
}

// Metadata carries optional structured context for an entry, such as the
// variant name, quantity delta, or related order number.
type Metadata map[string]any

// Entry is one immutable audit-log record of a state-changing action.
// Entries are write-once; only the retention purge ever removes them.
type Entry struct {
	shared.BaseEntity
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        EntryType `gorm:"type:varchar(40);not null;index"`
	Description string    `gorm:"type:varchar(500);not null"`
	ActorID     uuid.UUID `gorm:"type:uuid;not null"`
	Metadata    Metadata  `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "activity_entries"
}

// NewEntry records one audit entry
func NewEntry(tenantID, subjectID, actorID uuid.UUID, entryType EntryType, description string, metadata Metadata) (*Entry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Unknown activity entry type")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Activity description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Activity description cannot exceed 500 characters")
	}

	return &Entry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		SubjectID:   subjectID,
		Type:        entryType,
		Description: description,
		ActorID:     actorID,
		Metadata:    metadata,
	}, nil
}
