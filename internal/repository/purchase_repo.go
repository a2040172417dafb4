package repository

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRepository covers the ingredient catalog, purchases and the FIFO
// lots they create.
type PurchaseRepository interface {
	CreateIngredient(ctx context.Context, i *model.Ingredient) error
	FindIngredientTx(tx *gorm.DB, id uint) (*model.Ingredient, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)
	IngredientSlugExistsTx(tx *gorm.DB, slug string) (bool, error)

	CreateProduct(ctx context.Context, p *model.Product) error
	FindProductTx(tx *gorm.DB, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, ingredientID uint) ([]model.Product, error)

	CreatePurchaseTx(tx *gorm.DB, p *model.Purchase) error
	CreateInventoryItemTx(tx *gorm.DB, item *model.InventoryItem) error

	// ListPurchasesByProduct returns the product's purchases oldest first.
	ListPurchasesByProduct(ctx context.Context, productID uint) ([]model.Purchase, error)

	// OpenLotsForIngredientTx returns the non-empty lots of every product of
	// the ingredient in FIFO order (acquired_at, then id).
	OpenLotsForIngredientTx(tx *gorm.DB, ingredientID uint) ([]model.InventoryItem, error)

	// DecrementLotTx takes qty from a lot only if enough remains.
	DecrementLotTx(tx *gorm.DB, lotID uint, qty decimal.Decimal) (bool, error)

	OnHandByProduct(ctx context.Context, productID uint) (decimal.Decimal, error)

	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) CreateIngredient(ctx context.Context, i *model.Ingredient) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *purchaseRepo) FindIngredientTx(tx *gorm.DB, id uint) (*model.Ingredient, error) {
	var i model.Ingredient
	err := tx.First(&i, id).Error
	return &i, err
}

func (r *purchaseRepo) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	var rows []model.Ingredient
	err := r.db.WithContext(ctx).Order("display_name ASC").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) IngredientSlugExistsTx(tx *gorm.DB, slug string) (bool, error) {
	var n int64
	err := tx.Model(&model.Ingredient{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *purchaseRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepo) FindProductTx(tx *gorm.DB, id uint) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, id).Error
	return &p, err
}

func (r *purchaseRepo) ListProducts(ctx context.Context, ingredientID uint) ([]model.Product, error) {
	var rows []model.Product
	q := r.db.WithContext(ctx)
	if ingredientID != 0 {
		q = q.Where("ingredient_id = ?", ingredientID)
	}
	err := q.Order("brand ASC").Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) CreatePurchaseTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) CreateInventoryItemTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Create(item).Error
}

func (r *purchaseRepo) ListPurchasesByProduct(ctx context.Context, productID uint) ([]model.Purchase, error) {
	var rows []model.Purchase
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("purchased_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *purchaseRepo) OpenLotsForIngredientTx(tx *gorm.DB, ingredientID uint) ([]model.InventoryItem, error) {
	var lots []model.InventoryItem
	err := tx.Model(&model.InventoryItem{}).
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("products.ingredient_id = ? AND inventory_items.quantity_remaining > 0", ingredientID).
		Order("inventory_items.acquired_at ASC").Order("inventory_items.id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *purchaseRepo) DecrementLotTx(tx *gorm.DB, lotID uint, qty decimal.Decimal) (bool, error) {
	qty = model.RoundQuantity(qty)
	res := tx.Model(&model.InventoryItem{}).
		Where("id = ? AND ROUND(quantity_remaining - ?, 4) >= 0", lotID, qty).
		Update("quantity_remaining", gorm.Expr("ROUND(quantity_remaining - ?, 4)", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *purchaseRepo) OnHandByProduct(ctx context.Context, productID uint) (decimal.Decimal, error) {
	var lots []model.InventoryItem
	if err := r.db.WithContext(ctx).
		Select("quantity_remaining").
		Where("product_id = ?", productID).
		Find(&lots).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.QuantityRemaining)
	}
	return total, nil
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
