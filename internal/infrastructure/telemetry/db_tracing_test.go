package telemetry_test

import (
	"testing"

	"github.com/commerce/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRegisterDBTracing(t *testing.T) {
	log := zaptest.NewLogger(t)

	openDB := func(t *testing.T) *gorm.DB {
		t.Helper()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)
		return db
	}

	t.Run("disabled is a no-op", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.Config{Enabled: false}, log))
	})

	t.Run("enabled registers the query plugin", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.Config{Enabled: true}, log))

		// queries still work with the plugin attached
		type visit struct {
			ID int
		}
		require.NoError(t, db.AutoMigrate(&visit{}))
		assert.NoError(t, db.Create(&visit{ID: 1}).Error)
	})
}
