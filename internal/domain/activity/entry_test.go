package activity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	tenantID := uuid.New()
	subjectID := uuid.New()
	actorID := uuid.New()

	t.Run("records an entry with metadata", func(t *testing.T) {
		meta := Metadata{"variant_name": "Blue Mug", "delta": int64(-3), "order_number": "SO-20260829-0001"}
		entry, err := NewEntry(tenantID, subjectID, actorID, EntryTypeStockReserved, "Reserved 3 units of Blue Mug", meta)
		require.NoError(t, err)

		assert.Equal(t, EntryTypeStockReserved, entry.Type)
		assert.Equal(t, actorID, entry.ActorID)
		assert.Equal(t, "Blue Mug", entry.Metadata["variant_name"])
	})

	t.Run("metadata is optional", func(t *testing.T) {
		entry, err := NewEntry(tenantID, subjectID, actorID, EntryTypeOrderCreated, "Order SO-1 created", nil)
		require.NoError(t, err)
		assert.Nil(t, entry.Metadata)
	})

	t.Run("rejects empty description", func(t *testing.T) {
		_, err := NewEntry(tenantID, subjectID, actorID, EntryTypeOrderCreated, "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewEntry(tenantID, subjectID, actorID, EntryType("guessed"), "something", nil)
		assert.Error(t, err)
	})
}
