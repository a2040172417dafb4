package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Costs ────────────────────────────────────────────────────────────────────

func TestCosts_SimpleBox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	box := f.materialUnit(t, "Box", "3.50", "0")
	sampler := f.assembly(t, "Sampler", fu(cookie, 4), mu(box, "1"))

	costs, err := f.engine.CalculateComponentCosts(ctx, sampler)
	require.NoError(t, err)

	assert.True(t, costs.TotalAssemblyCost.Equal(dec("11.50")), "got %s", costs.TotalAssemblyCost)
	assert.True(t, costs.TotalSubassembly.IsZero())
	require.Len(t, costs.FinishedUnitCosts, 1)
	require.Len(t, costs.MaterialUnitCosts, 1)
	assert.Empty(t, costs.FinishedGoodCosts)
	assert.True(t, costs.FinishedUnitCosts[0].TotalCost.Equal(dec("8.00")))
	assert.True(t, costs.MaterialUnitCosts[0].TotalCost.Equal(dec("3.50")))
}

func TestCosts_NestedSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	box := f.materialUnit(t, "Box", "3.50", "0")
	inner := f.assembly(t, "Inner", fu(cookie, 2))
	outer := f.assembly(t, "Outer", fg(inner, 3), mu(box, "1"))

	costs, err := f.engine.CalculateComponentCosts(ctx, outer)
	require.NoError(t, err)
	assert.True(t, costs.TotalAssemblyCost.Equal(dec("15.50")), "got %s", costs.TotalAssemblyCost)
	assert.True(t, costs.TotalSubassembly.Equal(dec("12.00")))
	assert.True(t, costs.TotalLeafCost.Equal(dec("3.50")))
	require.Len(t, costs.FinishedGoodCosts, 1)
	assert.True(t, costs.FinishedGoodCosts[0].UnitCost.Equal(dec("4.00")))

	flat, err := f.engine.Flatten(ctx, outer)
	require.NoError(t, err)
	assert.True(t, findLeaf(t, flat, model.FinishedUnitRef(cookie)).TotalQuantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, findLeaf(t, flat, model.MaterialUnitRef(box)).TotalQuantity.Equal(decimal.NewFromInt(1)))
}

func TestCosts_PickUpUnitCostChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	inner := f.assembly(t, "Inner", fu(cookie, 2))

	before, err := f.engine.CalculateComponentCosts(ctx, inner)
	require.NoError(t, err)
	require.NoError(t, f.units.UpdateUnitCost(ctx, model.FinishedUnitRef(cookie), dec("2.25")))
	after, err := f.engine.CalculateComponentCosts(ctx, inner)
	require.NoError(t, err)

	assert.True(t, before.TotalAssemblyCost.Equal(dec("4.00")))
	assert.True(t, after.TotalAssemblyCost.Equal(dec("4.50")))
}

func TestCosts_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CalculateComponentCosts(context.Background(), 999)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

// ── Cycle detection ──────────────────────────────────────────────────────────

func TestCycle_AttemptLeavesInnerUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	inner := f.assembly(t, "Inner", fu(cookie, 2))
	outer := f.assembly(t, "Outer", fg(inner, 3))

	_, err := f.assemblies.AddComponent(ctx, inner, fg(outer, 1))
	require.Error(t, err)
	var cre *service.CircularReferenceError
	require.True(t, errors.As(err, &cre))
	assert.Equal(t, inner, cre.ParentID)
	assert.Equal(t, outer, cre.ChildID)

	got, err := f.assemblies.Get(ctx, inner)
	require.NoError(t, err)
	require.Len(t, got.Components, 1)
	assert.Equal(t, model.ComponentFinishedUnit, got.Components[0].ComponentType)
	assert.Equal(t, cookie, got.Components[0].ComponentID)
	assert.True(t, got.Components[0].ComponentQuantity.Equal(decimal.NewFromInt(2)))
}

func TestCycle_SelfReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.assembly(t, "Lonely")

	cycle, err := f.engine.WouldCreateCycle(ctx, a, a)
	require.NoError(t, err)
	assert.True(t, cycle)

	_, err = f.engine.CreateComposition(ctx, dto.CreateCompositionInput{
		AssemblyID: a,
		Component:  model.FinishedGoodRef(a),
		Quantity:   decimal.NewFromInt(1),
	})
	assert.True(t, errors.Is(err, service.ErrCircularReference))
}

func TestCycle_TransitiveAndSafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.assembly(t, "C")
	b := f.assembly(t, "B", fg(c, 1))
	a := f.assembly(t, "A", fg(b, 1))
	other := f.assembly(t, "Other")

	safe, err := f.engine.ValidateNoCircularReference(ctx, c, a)
	require.NoError(t, err)
	assert.False(t, safe, "C→A closes A→B→C→A")

	safe, err = f.engine.ValidateNoCircularReference(ctx, a, other)
	require.NoError(t, err)
	assert.True(t, safe)

	// Adding the same sub-assembly under two parents is not a cycle.
	safe, err = f.engine.ValidateNoCircularReference(ctx, other, c)
	require.NoError(t, err)
	assert.True(t, safe)

	_, err = f.engine.WouldCreateCycle(ctx, a, 4242)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

// ── Edge mutation ────────────────────────────────────────────────────────────

func TestCreateComposition_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "1.00", 0)
	ribbon := f.materialUnit(t, "Ribbon", "0.10", "0")
	a := f.assembly(t, "Tin")

	tests := []struct {
		name    string
		in      dto.CreateCompositionInput
		wantErr error
	}{
		{"zero quantity", dto.CreateCompositionInput{AssemblyID: a, Component: model.FinishedUnitRef(cookie), Quantity: decimal.Zero}, service.ErrValidation},
		{"negative quantity", dto.CreateCompositionInput{AssemblyID: a, Component: model.FinishedUnitRef(cookie), Quantity: dec("-1")}, service.ErrValidation},
		{"fractional finished unit", dto.CreateCompositionInput{AssemblyID: a, Component: model.FinishedUnitRef(cookie), Quantity: dec("1.5")}, service.ErrValidation},
		{"zero reference", dto.CreateCompositionInput{AssemblyID: a, Quantity: decimal.NewFromInt(1)}, service.ErrValidation},
		{"missing assembly", dto.CreateCompositionInput{AssemblyID: 999, Component: model.FinishedUnitRef(cookie), Quantity: decimal.NewFromInt(1)}, service.ErrNotFound},
		{"missing component", dto.CreateCompositionInput{AssemblyID: a, Component: model.MaterialUnitRef(999), Quantity: decimal.NewFromInt(1)}, service.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateComposition(ctx, tt.in)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	// Material quantities may be fractional.
	c, err := f.engine.CreateComposition(ctx, dto.CreateCompositionInput{
		AssemblyID: a, Component: model.MaterialUnitRef(ribbon), Quantity: dec("0.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.SortOrder)

	_, err = f.engine.CreateComposition(ctx, dto.CreateCompositionInput{
		AssemblyID: a, Component: model.MaterialUnitRef(ribbon), Quantity: dec("1"),
	})
	assert.True(t, errors.Is(err, service.ErrValidation), "duplicate component")
}

func TestComposition_UpdateAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	a := f.assembly(t, "Tin")

	c, err := f.engine.CreateComposition(ctx, dto.CreateCompositionInput{
		AssemblyID: a, Component: model.FinishedUnitRef(cookie), Quantity: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	updated, err := f.engine.UpdateCompositionQuantity(ctx, c.ID, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, updated.ComponentQuantity.Equal(decimal.NewFromInt(5)))

	_, err = f.engine.UpdateCompositionQuantity(ctx, c.ID, dec("2.5"))
	assert.True(t, errors.Is(err, service.ErrValidation))

	costs, err := f.engine.CalculateComponentCosts(ctx, a)
	require.NoError(t, err)
	assert.True(t, costs.TotalAssemblyCost.Equal(dec("10")))

	require.NoError(t, f.engine.RemoveComposition(ctx, c.ID))
	assert.True(t, errors.Is(f.engine.RemoveComposition(ctx, c.ID), service.ErrNotFound))

	costs, err = f.engine.CalculateComponentCosts(ctx, a)
	require.NoError(t, err)
	assert.True(t, costs.TotalAssemblyCost.IsZero())
}

// ── Flattening ───────────────────────────────────────────────────────────────

func TestFlatten_MultipliesDownTheChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leaf := f.finishedUnit(t, "Truffle", "1.00", 0)
	c := f.assembly(t, "C", fu(leaf, 5))
	b := f.assembly(t, "B", fg(c, 3))
	a := f.assembly(t, "A", fg(b, 2))

	flat, err := f.engine.Flatten(ctx, a)
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.True(t, flat[0].TotalQuantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, flat[0].TotalCost.Equal(decimal.NewFromInt(30)))
}

func TestFlatten_SumsAcrossSiblingBranches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "1.00", 0)
	ribbon := f.materialUnit(t, "Ribbon", "0.25", "0")
	box := f.assembly(t, "Box", fu(cookie, 2), mu(ribbon, "0.5"))
	crate := f.assembly(t, "Crate", fg(box, 3))
	party := f.assembly(t, "Party", fg(box, 1), fg(crate, 1), fu(cookie, 1))

	flat, err := f.engine.Flatten(ctx, party)
	require.NoError(t, err)
	require.Len(t, flat, 2)
	// Finished units sort first.
	assert.Equal(t, model.ComponentFinishedUnit, flat[0].ComponentType)
	assert.True(t, findLeaf(t, flat, model.FinishedUnitRef(cookie)).TotalQuantity.Equal(decimal.NewFromInt(9)))
	assert.True(t, findLeaf(t, flat, model.MaterialUnitRef(ribbon)).TotalQuantity.Equal(dec("2")))
}

func TestFlatten_EmptyAssembly(t *testing.T) {
	f := newFixture(t)
	a := f.assembly(t, "Empty")
	flat, err := f.engine.Flatten(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, flat)
}

// ── Inventory requirements ───────────────────────────────────────────────────

func TestRequiredInventory_Insufficient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ribbon := f.materialUnit(t, "Ribbon", "0.50", "10")
	giftSet := f.assembly(t, "GiftSet", mu(ribbon, "5"))

	req, err := f.engine.CalculateRequiredInventory(ctx, giftSet, 3)
	require.NoError(t, err)
	assert.Equal(t, dto.StatusInsufficient, req.AvailabilityStatus)
	assert.Empty(t, req.FinishedUnitRequirements)
	require.Len(t, req.MaterialUnitRequirements, 1)
	line := req.MaterialUnitRequirements[0]
	assert.True(t, line.Required.Equal(decimal.NewFromInt(15)))
	assert.True(t, line.Available.Equal(decimal.NewFromInt(10)))
	assert.True(t, line.Shortage.Equal(decimal.NewFromInt(5)))

	req, err = f.engine.CalculateRequiredInventory(ctx, giftSet, 2)
	require.NoError(t, err)
	assert.Equal(t, dto.StatusAvailable, req.AvailabilityStatus)
	assert.True(t, req.MaterialUnitRequirements[0].Shortage.IsZero())

	_, err = f.engine.CalculateRequiredInventory(ctx, giftSet, 0)
	assert.True(t, errors.Is(err, service.ErrValidation))
}

// ── Hierarchy ────────────────────────────────────────────────────────────────

// chain builds A0 → A1 → … → A(n-1), each also holding one cookie.
func chain(t *testing.T, f *fixture, n int) []uint {
	t.Helper()
	cookie := f.finishedUnit(t, "Cookie", "1.00", 0)
	ids := make([]uint, n)
	ids[n-1] = f.assembly(t, "Level end", fu(cookie, 1))
	for i := n - 2; i >= 0; i-- {
		ids[i] = f.assembly(t, "Level", fu(cookie, 1), fg(ids[i+1], 1))
	}
	return ids
}

// assemblyChild returns the only finished-good child of n.
func assemblyChild(t *testing.T, n dto.HierarchyNode) dto.HierarchyNode {
	t.Helper()
	for _, c := range n.Subcomponents {
		if c.ComponentType == model.ComponentFinishedGood {
			return c
		}
	}
	t.Fatalf("node %d has no assembly child", n.ComponentID)
	return dto.HierarchyNode{}
}

func TestHierarchy_DefaultDepthStopsAtFive(t *testing.T) {
	f := newFixture(t)
	ids := chain(t, f, 7)

	for _, depth := range []int{0, -1, 6, 99} {
		root, err := f.engine.GetHierarchy(context.Background(), ids[0], depth)
		require.NoError(t, err)
		assert.Equal(t, 0, root.Level)

		node := *root
		for level := 1; level <= 5; level++ {
			node = assemblyChild(t, node)
			assert.Equal(t, level, node.Level)
			assert.Equal(t, ids[level], node.ComponentID)
		}
		assert.True(t, node.DepthLimitReached, "depth %d", depth)
		assert.Empty(t, node.Subcomponents)
	}
}

func TestHierarchy_ExplicitDepth(t *testing.T) {
	f := newFixture(t)
	ids := chain(t, f, 4)

	root, err := f.engine.GetHierarchy(context.Background(), ids[0], 2)
	require.NoError(t, err)
	l1 := assemblyChild(t, *root)
	assert.False(t, l1.DepthLimitReached)
	l2 := assemblyChild(t, l1)
	assert.True(t, l2.DepthLimitReached)
	assert.Equal(t, 2, l2.Level)

	// Leaves carry their cost; the cookie sits beside each assembly.
	for _, c := range root.Subcomponents {
		if c.ComponentType == model.ComponentFinishedUnit {
			require.NotNil(t, c.UnitCost)
			assert.True(t, c.UnitCost.Equal(dec("1.00")))
			assert.Equal(t, 1, c.Level)
		}
	}
}

func TestHierarchy_DepthThreeOnSixLevelChain(t *testing.T) {
	f := newFixture(t)
	ids := chain(t, f, 6)

	root, err := f.engine.GetHierarchy(context.Background(), ids[0], 3)
	require.NoError(t, err)

	node := *root
	for level := 1; level <= 3; level++ {
		node = assemblyChild(t, node)
		assert.Equal(t, level, node.Level)
		assert.Equal(t, ids[level], node.ComponentID)
		assert.Equal(t, level == 3, node.DepthLimitReached, "level %d", level)
	}
	assert.Empty(t, node.Subcomponents, "levels 4 and 5 are not expanded")
}

func TestHierarchy_RepeatableAndCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	box := f.materialUnit(t, "Box", "3.50", "0")
	inner := f.assembly(t, "Inner", fu(cookie, 2))
	outer := f.assembly(t, "Outer", fg(inner, 3), mu(box, "1"))

	first, err := f.engine.GetHierarchy(ctx, outer, 0)
	require.NoError(t, err)
	assert.Positive(t, f.cache.Len())
	second, err := f.engine.GetHierarchy(ctx, outer, 0)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestHierarchy_InvalidatedOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 0)
	ribbon := f.materialUnit(t, "Ribbon", "0.50", "0")
	inner := f.assembly(t, "Inner", fu(cookie, 2))
	outer := f.assembly(t, "Outer", fg(inner, 3))

	_, err := f.engine.GetHierarchy(ctx, outer, 0)
	require.NoError(t, err)

	// A change two levels down must reach the cached root.
	_, err = f.assemblies.AddComponent(ctx, inner, mu(ribbon, "1"))
	require.NoError(t, err)
	root, err := f.engine.GetHierarchy(ctx, outer, 0)
	require.NoError(t, err)
	assert.Len(t, assemblyChild(t, *root).Subcomponents, 2)

	// So must a leaf cost change.
	require.NoError(t, f.units.UpdateUnitCost(ctx, model.FinishedUnitRef(cookie), dec("9.99")))
	root, err = f.engine.GetHierarchy(ctx, outer, 0)
	require.NoError(t, err)
	for _, c := range assemblyChild(t, *root).Subcomponents {
		if c.ComponentType == model.ComponentFinishedUnit {
			assert.True(t, c.UnitCost.Equal(dec("9.99")))
		}
	}
}

func TestHierarchy_InvalidatedOnInventoryChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.finishedUnit(t, "Cookie", "2.00", 5)
	inner := f.assembly(t, "Inner", fu(cookie, 2))
	outer := f.assembly(t, "Outer", fg(inner, 3))

	warm := func() {
		t.Helper()
		_, err := f.engine.GetHierarchy(ctx, outer, 0)
		require.NoError(t, err)
		require.Equal(t, 1, f.cache.Len())
	}

	warm()
	_, err := f.units.AdjustInventory(ctx, model.FinishedUnitRef(cookie), dto.AdjustInventoryRequest{Delta: dec("-1"), Reason: "broken"})
	require.NoError(t, err)
	assert.Zero(t, f.cache.Len(), "adjustment reaches the cached root")

	warm()
	_, err = f.units.RecordProduction(ctx, cookie, 12)
	require.NoError(t, err)
	assert.Zero(t, f.cache.Len(), "production reaches the cached root")
}

func TestHierarchy_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetHierarchy(context.Background(), 77, 0)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
