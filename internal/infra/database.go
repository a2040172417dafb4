package infra

import (
	"fmt"
	"strings"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Supplier{},
		&model.Ingredient{},
		&model.Product{},
		&model.Purchase{},
		&model.InventoryItem{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.FinishedUnit{},
		&model.MaterialUnit{},
		&model.FinishedGood{},
		&model.Composition{},
		&model.Event{},
		&model.EventAssembly{},
		&model.InventoryMovement{},
	}
}

// NewDatabase opens the configured driver, runs AutoMigrate for all tables
// and then applies the idempotent SQL patches GORM cannot express.
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	} else {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates all tables and applies schema patches.
// Tests call it directly on in-memory databases.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// sqliteDSN turns foreign keys on; composition edges rely on ON DELETE
// CASCADE / RESTRICT.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// applySchemaPatches runs idempotent DDL statements that AutoMigrate cannot
// handle on its own. Each uses IF NOT EXISTS so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial indexes back the low_stock list filters.
		`CREATE INDEX IF NOT EXISTS idx_finished_units_low_stock
		    ON finished_units (display_name) WHERE inventory_count < minimum_stock`,
		`CREATE INDEX IF NOT EXISTS idx_material_units_low_stock
		    ON material_units (display_name) WHERE inventory_count < minimum_stock`,
		// Open FIFO lots only.
		`CREATE INDEX IF NOT EXISTS idx_inventory_items_open
		    ON inventory_items (product_id, acquired_at) WHERE quantity_remaining > 0`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
