package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProduce_FractionalMaterialStaysExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ribbon := f.materialUnit(t, "Ribbon", "0.50", "0.3")
	tag := f.assembly(t, "Tag", mu(ribbon, "0.1"))

	for i, want := range []string{"0.2", "0.1", "0"} {
		_, err := f.assemblies.Produce(ctx, tag, 1)
		require.NoError(t, err, "produce #%d", i+1)
		got := f.muCount(t, ribbon)
		assert.Equal(t, want, got.String(), "produce #%d", i+1)
	}

	_, err := f.assemblies.Produce(ctx, tag, 1)
	assert.True(t, errors.Is(err, service.ErrInsufficientInventory))

	moves, err := f.inventory.ListMovements(ctx, dto.MovementFilter{
		ComponentType: string(model.ComponentMaterialUnit), ComponentID: ribbon,
	})
	require.NoError(t, err)
	require.Len(t, moves.Data, 3)
	for _, m := range moves.Data {
		assert.Equal(t, "-0.1", m.Delta.String())
	}
}

func TestAdjust_GuardRejectsOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "1.00", 3)
	ribbon := f.materialUnit(t, "Ribbon", "0.50", "1.25")

	tests := []struct {
		name  string
		ref   model.ComponentRef
		delta decimal.Decimal
		count func() decimal.Decimal
		want  string
	}{
		{"finished unit", model.FinishedUnitRef(cookie), dec("-4"), func() decimal.Decimal { return f.fuCount(t, cookie) }, "3"},
		{"material unit", model.MaterialUnitRef(ribbon), dec("-1.2501"), func() decimal.Decimal { return f.muCount(t, ribbon) }, "1.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.inventory.Adjust(ctx, nil, tt.ref, tt.delta, service.MovementMeta{Kind: model.MovementAdjustment})
			var insufficient *service.InsufficientInventoryError
			require.True(t, errors.As(err, &insufficient), "got %v", err)
			assert.Equal(t, tt.want, insufficient.Available.String())
			assert.Equal(t, tt.want, tt.count().String())
		})
	}

	moves, err := f.inventory.ListMovements(ctx, dto.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, moves.Total)
}

// drainingInventory empties a leaf right before its nth decrement, after
// the availability check has already passed.
type drainingInventory struct {
	service.InventoryService
	drainOn int
	calls   int
}

func (d *drainingInventory) Adjust(ctx context.Context, tx *gorm.DB, ref model.ComponentRef, delta decimal.Decimal, meta service.MovementMeta) (decimal.Decimal, error) {
	if ref.IsLeaf() && delta.IsNegative() {
		d.calls++
		if d.calls == d.drainOn {
			onHand, err := d.InventoryService.OnHand(ctx, tx, ref)
			if err != nil {
				return decimal.Zero, err
			}
			if _, err := d.InventoryService.Adjust(ctx, tx, ref, onHand.Neg(), service.MovementMeta{Kind: model.MovementAdjustment}); err != nil {
				return decimal.Zero, err
			}
		}
	}
	return d.InventoryService.Adjust(ctx, tx, ref, delta, meta)
}

func TestProduce_StaleAvailabilityRollsBackEarlierLeaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "1.00", 10)
	box := f.materialUnit(t, "Box", "2.00", "5")
	sampler := f.assembly(t, "Sampler", fu(cookie, 4), mu(box, "1"))

	inv := &drainingInventory{InventoryService: f.inventory, drainOn: 2}
	assemblies := service.NewAssemblyService(
		repository.NewFinishedGoodRepository(f.db),
		repository.NewCompositionRepository(f.db),
		repository.NewUnitRepository(f.db),
		repository.NewEventRepository(f.db),
		f.engine, inv,
	)

	_, err := assemblies.Produce(ctx, sampler, 1)
	require.True(t, errors.Is(err, service.ErrInsufficientInventory), "got %v", err)
	assert.Equal(t, 2, inv.calls, "second leaf passed the read check and failed at the guard")

	assert.Equal(t, "10", f.fuCount(t, cookie).String())
	assert.Equal(t, "5", f.muCount(t, box).String())
	got, err := f.assemblies.Get(ctx, sampler)
	require.NoError(t, err)
	assert.Zero(t, got.InventoryCount)

	moves, err := f.inventory.ListMovements(ctx, dto.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, moves.Total)
}
