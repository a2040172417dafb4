package infra

import (
	"testing"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:bake.db?_pragma=foreign_keys(1)", sqliteDSN("file:bake.db"))
	assert.Equal(t, "file::memory:?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("file::memory:?cache=shared"))
	assert.Equal(t, "x?_pragma=foreign_keys(0)", sqliteDSN("x?_pragma=foreign_keys(0)"))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("oracle", "whatever")
	assert.Error(t, err)
}

func TestNewDatabase_SQLiteFractionalQuantities(t *testing.T) {
	db, err := NewDatabase("sqlite", "file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	u := &model.MaterialUnit{Slug: "ribbon", DisplayName: "Ribbon", InventoryCount: decimal.RequireFromString("0.3")}
	require.NoError(t, db.Create(u).Error)

	step := decimal.RequireFromString("-0.1")
	for _, want := range []string{"0.2", "0.1", "0"} {
		require.NoError(t, db.Model(&model.MaterialUnit{}).Where("id = ?", u.ID).
			Update("inventory_count", gorm.Expr("ROUND(inventory_count + ?, 4)", step)).Error)

		var got model.MaterialUnit
		require.NoError(t, db.First(&got, u.ID).Error)
		assert.Equal(t, want, got.InventoryCount.String())
	}
}
