package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/infra"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── Test database ────────────────────────────────────────────────────────────

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

// ── Alert dispatcher stub ────────────────────────────────────────────────────

type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []dto.StockAlert
}

func (d *recordingDispatcher) EnqueueStockAlert(_ context.Context, alert dto.StockAlert) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, alert)
	return nil
}

func (d *recordingDispatcher) Alerts() []dto.StockAlert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dto.StockAlert(nil), d.alerts...)
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	db         *gorm.DB
	cache      *infra.MemoryCache
	alerts     *recordingDispatcher
	inventory  service.InventoryService
	engine     service.CompositionService
	assemblies service.AssemblyService
	units      service.UnitService
	purchases  service.PurchaseService
	events     service.EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:     db,
		cache:  infra.NewMemoryCache(64, time.Minute),
		alerts: &recordingDispatcher{},
	}

	goods := repository.NewFinishedGoodRepository(db)
	edges := repository.NewCompositionRepository(db)
	units := repository.NewUnitRepository(db)
	events := repository.NewEventRepository(db)

	f.inventory = service.NewInventoryService(units, goods, repository.NewMovementRepository(db), f.alerts)
	f.engine = service.NewCompositionService(edges, goods, units, f.inventory, f.cache)
	f.assemblies = service.NewAssemblyService(goods, edges, units, events, f.engine, f.inventory)
	f.units = service.NewUnitService(units, f.engine, f.inventory, f.assemblies)
	f.purchases = service.NewPurchaseService(repository.NewPurchaseRepository(db), repository.NewSupplierRepository(db))
	f.events = service.NewEventService(events, goods)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) finishedUnit(t *testing.T, name, cost string, count int) uint {
	t.Helper()
	u, err := f.units.CreateFinishedUnit(context.Background(), dto.CreateFinishedUnitRequest{
		DisplayName:    name,
		UnitCost:       dec(cost),
		InventoryCount: count,
	})
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) materialUnit(t *testing.T, name, cost, count string) uint {
	t.Helper()
	u, err := f.units.CreateMaterialUnit(context.Background(), dto.CreateMaterialUnitRequest{
		DisplayName:    name,
		UnitCost:       dec(cost),
		InventoryCount: dec(count),
	})
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) assembly(t *testing.T, name string, specs ...dto.ComponentSpec) uint {
	t.Helper()
	a, err := f.assemblies.Create(context.Background(), dto.CreateAssemblyInput{DisplayName: name, Components: specs})
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) fuCount(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	n, err := f.inventory.OnHand(context.Background(), nil, model.FinishedUnitRef(id))
	require.NoError(t, err)
	return n
}

func (f *fixture) muCount(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	n, err := f.inventory.OnHand(context.Background(), nil, model.MaterialUnitRef(id))
	require.NoError(t, err)
	return n
}

func fu(id uint, qty int64) dto.ComponentSpec {
	return dto.ComponentSpec{Component: model.FinishedUnitRef(id), Quantity: decimal.NewFromInt(qty)}
}

func mu(id uint, qty string) dto.ComponentSpec {
	return dto.ComponentSpec{Component: model.MaterialUnitRef(id), Quantity: dec(qty)}
}

func fg(id uint, qty int64) dto.ComponentSpec {
	return dto.ComponentSpec{Component: model.FinishedGoodRef(id), Quantity: decimal.NewFromInt(qty)}
}

// findLeaf returns the flattened entry for ref, or fails.
func findLeaf(t *testing.T, flat []dto.FlattenedComponent, ref model.ComponentRef) dto.FlattenedComponent {
	t.Helper()
	for _, c := range flat {
		if c.ComponentType == ref.Type() && c.ComponentID == ref.ID() {
			return c
		}
	}
	t.Fatalf("component %s not in flattened result", ref)
	return dto.FlattenedComponent{}
}
