package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flourProduct creates an ingredient with one product and returns both ids.
func flourProduct(t *testing.T, f *fixture) (ingredientID, productID uint) {
	t.Helper()
	ctx := context.Background()
	ing, err := f.purchases.CreateIngredient(ctx, dto.CreateIngredientRequest{DisplayName: "All-Purpose Flour", Category: "flour"})
	require.NoError(t, err)
	assert.Equal(t, "all-purpose-flour", ing.Slug)
	assert.Equal(t, "g", ing.DefaultUnit)

	p, err := f.purchases.CreateProduct(ctx, dto.CreateProductRequest{
		IngredientID: ing.ID, Brand: "Mill Co", PackageSize: dec("5"), PackageUnit: "lb",
	})
	require.NoError(t, err)
	return ing.ID, p.ID
}

func purchaseAt(t *testing.T, f *fixture, productID uint, day int, qty, price string) {
	t.Helper()
	at := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
	_, err := f.purchases.RecordPurchase(context.Background(), dto.RecordPurchaseRequest{
		ProductID: productID, PurchasedAt: &at, PackageQuantity: dec(qty), UnitPrice: dec(price),
	})
	require.NoError(t, err)
}

func TestConsumeIngredient_FIFO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ing, product := flourProduct(t, f)
	purchaseAt(t, f, product, 2, "3", "4.00")
	purchaseAt(t, f, product, 1, "2", "3.00")

	res, err := f.purchases.ConsumeIngredient(ctx, ing, dec("3"))
	require.NoError(t, err)
	require.Len(t, res.Lots, 2)
	assert.True(t, res.Lots[0].UnitCost.Equal(dec("3.00")), "oldest lot first")
	assert.True(t, res.Lots[0].Quantity.Equal(dec("2")))
	assert.True(t, res.Lots[1].Quantity.Equal(dec("1")))
	assert.True(t, res.TotalCost.Equal(dec("10.00")))

	products, err := f.purchases.ListProducts(ctx, ing)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].OnHand.Equal(dec("2")))
}

func TestConsumeIngredient_FractionalLotsDrainExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ing, product := flourProduct(t, f)
	purchaseAt(t, f, product, 1, "0.3", "4.00")

	for i := 0; i < 3; i++ {
		res, err := f.purchases.ConsumeIngredient(ctx, ing, dec("0.1"))
		require.NoError(t, err, "draw #%d", i+1)
		assert.True(t, res.TotalCost.Equal(dec("0.40")))
	}

	products, err := f.purchases.ListProducts(ctx, ing)
	require.NoError(t, err)
	assert.True(t, products[0].OnHand.IsZero(), "got %s", products[0].OnHand)

	_, err = f.purchases.ConsumeIngredient(ctx, ing, dec("0.1"))
	assert.True(t, errors.Is(err, service.ErrInsufficientInventory))
}

func TestConsumeIngredient_InsufficientDrawsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ing, product := flourProduct(t, f)
	purchaseAt(t, f, product, 1, "2", "3.00")

	_, err := f.purchases.ConsumeIngredient(ctx, ing, dec("5"))
	var insufficient *service.InsufficientInventoryError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(dec("2")))

	products, err := f.purchases.ListProducts(ctx, ing)
	require.NoError(t, err)
	assert.True(t, products[0].OnHand.Equal(dec("2")))

	_, err = f.purchases.ConsumeIngredient(ctx, ing, dec("0"))
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestPriceTrend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, product := flourProduct(t, f)

	empty, err := f.purchases.PriceTrend(ctx, product)
	require.NoError(t, err)
	assert.Empty(t, empty.History)
	assert.Equal(t, dto.TrendStable, empty.Direction)

	purchaseAt(t, f, product, 1, "1", "3.00")
	purchaseAt(t, f, product, 8, "1", "3.30")
	purchaseAt(t, f, product, 15, "1", "3.60")

	trend, err := f.purchases.PriceTrend(ctx, product)
	require.NoError(t, err)
	require.Len(t, trend.History, 3)
	assert.True(t, trend.MinPrice.Equal(dec("3.00")))
	assert.True(t, trend.MaxPrice.Equal(dec("3.60")))
	assert.True(t, trend.AveragePrice.Equal(dec("3.30")))
	assert.True(t, trend.LatestPrice.Equal(dec("3.60")))
	assert.True(t, trend.PercentChange.Equal(dec("20")))
	assert.Equal(t, dto.TrendRising, trend.Direction)

	_, err = f.purchases.PriceTrend(ctx, 999)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSuppliers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchases.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "  "})
	assert.True(t, errors.Is(err, service.ErrValidation))

	s, err := f.purchases.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Valley Mill"})
	require.NoError(t, err)
	assert.True(t, s.Active)

	require.NoError(t, f.purchases.DeactivateSupplier(ctx, s.ID))
	assert.True(t, errors.Is(f.purchases.DeactivateSupplier(ctx, 999), service.ErrNotFound))

	_, product := flourProduct(t, f)
	bogus := uint(999)
	_, err = f.purchases.RecordPurchase(ctx, dto.RecordPurchaseRequest{
		ProductID: product, SupplierID: &bogus, PackageQuantity: dec("1"), UnitPrice: dec("1"),
	})
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
