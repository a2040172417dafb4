package service

import (
	"context"
	"strings"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// trendBand is the percent change below which a price is reported stable.
var trendBand = decimal.NewFromInt(2)

// PurchaseService covers the ingredient side: suppliers, the ingredient and
// product catalog, purchases (which open FIFO lots) and lot consumption.
type PurchaseService interface {
	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)
	DeactivateSupplier(ctx context.Context, id uint) error

	CreateIngredient(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error)
	ListIngredients(ctx context.Context) ([]dto.IngredientResponse, error)

	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, ingredientID uint) ([]dto.ProductResponse, error)

	RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error)
	// ConsumeIngredient draws quantity package units from the ingredient's
	// lots, oldest first. Nothing is drawn unless the whole amount is on hand.
	ConsumeIngredient(ctx context.Context, ingredientID uint, quantity decimal.Decimal) (*dto.ConsumptionResult, error)
	PriceTrend(ctx context.Context, productID uint) (*dto.PriceTrendResponse, error)
}

type purchaseService struct {
	repo      repository.PurchaseRepository
	suppliers repository.SupplierRepository
}

func NewPurchaseService(repo repository.PurchaseRepository, suppliers repository.SupplierRepository) PurchaseService {
	return &purchaseService{repo: repo, suppliers: suppliers}
}

// ── Suppliers ────────────────────────────────────────────────────────────────

func (s *purchaseService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	sup := &model.Supplier{Name: name, Email: req.Email, Phone: req.Phone, City: req.City, Notes: req.Notes, Active: true}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, dbErr("insert supplier", err)
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *purchaseService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	rows, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, dbErr("list suppliers", err)
	}
	out := make([]dto.SupplierResponse, 0, len(rows))
	for i := range rows {
		out = append(out, supplierToResponse(&rows[i]))
	}
	return out, nil
}

func (s *purchaseService) DeactivateSupplier(ctx context.Context, id uint) error {
	if err := s.suppliers.Deactivate(ctx, id); err != nil {
		return lookupErr("supplier", id, err)
	}
	log.Info().Uint("supplier_id", id).Msg("supplier deactivated")
	return nil
}

func supplierToResponse(s *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone, City: s.City, Notes: s.Notes, Active: s.Active}
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *purchaseService) CreateIngredient(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	name, err := validateDisplayName(req.DisplayName)
	if err != nil {
		return nil, err
	}
	db := s.repo.DB().WithContext(ctx)
	slug, err := uniqueSlug(name, "ingredient", func(c string) (bool, error) { return s.repo.IngredientSlugExistsTx(db, c) })
	if err != nil {
		return nil, dbErr("generate slug", err)
	}
	ing := &model.Ingredient{Slug: slug, DisplayName: name, Category: req.Category, DefaultUnit: req.DefaultUnit}
	if ing.DefaultUnit == "" {
		ing.DefaultUnit = "g"
	}
	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, dbErr("insert ingredient", err)
	}
	resp := ingredientToResponse(ing)
	return &resp, nil
}

func (s *purchaseService) ListIngredients(ctx context.Context) ([]dto.IngredientResponse, error) {
	rows, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, dbErr("list ingredients", err)
	}
	out := make([]dto.IngredientResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ingredientToResponse(&rows[i]))
	}
	return out, nil
}

func ingredientToResponse(i *model.Ingredient) dto.IngredientResponse {
	return dto.IngredientResponse{ID: i.ID, Slug: i.Slug, DisplayName: i.DisplayName, Category: i.Category, DefaultUnit: i.DefaultUnit}
}

func (s *purchaseService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !req.PackageSize.IsPositive() {
		return nil, invalid("package_size", "must be greater than zero")
	}
	db := s.repo.DB().WithContext(ctx)
	if _, err := s.repo.FindIngredientTx(db, req.IngredientID); err != nil {
		return nil, lookupErr("ingredient", req.IngredientID, err)
	}
	if req.PreferredSupplierID != nil {
		if _, err := s.suppliers.FindByIDTx(db, *req.PreferredSupplierID); err != nil {
			return nil, lookupErr("supplier", *req.PreferredSupplierID, err)
		}
	}
	p := &model.Product{
		IngredientID:        req.IngredientID,
		Brand:               req.Brand,
		PackageSize:         req.PackageSize,
		PackageUnit:         req.PackageUnit,
		PreferredSupplierID: req.PreferredSupplierID,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, dbErr("insert product", err)
	}
	resp := productToResponse(p, decimal.Zero)
	return &resp, nil
}

func (s *purchaseService) ListProducts(ctx context.Context, ingredientID uint) ([]dto.ProductResponse, error) {
	rows, err := s.repo.ListProducts(ctx, ingredientID)
	if err != nil {
		return nil, dbErr("list products", err)
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for i := range rows {
		onHand, err := s.repo.OnHandByProduct(ctx, rows[i].ID)
		if err != nil {
			return nil, dbErr("sum product lots", err)
		}
		out = append(out, productToResponse(&rows[i], onHand))
	}
	return out, nil
}

func productToResponse(p *model.Product, onHand decimal.Decimal) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                  p.ID,
		IngredientID:        p.IngredientID,
		Brand:               p.Brand,
		PackageSize:         p.PackageSize,
		PackageUnit:         p.PackageUnit,
		PreferredSupplierID: p.PreferredSupplierID,
		OnHand:              onHand,
	}
}

// ── Purchases & FIFO lots ────────────────────────────────────────────────────

func (s *purchaseService) RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*dto.PurchaseResponse, error) {
	if !req.PackageQuantity.IsPositive() {
		return nil, invalid("package_quantity", "must be greater than zero")
	}
	if req.UnitPrice.IsNegative() {
		return nil, invalid("unit_price", "must not be negative")
	}
	at := time.Now().UTC()
	if req.PurchasedAt != nil {
		at = req.PurchasedAt.UTC()
	}

	var (
		p   model.Purchase
		lot model.InventoryItem
	)
	err := runTx(ctx, s.repo.DB(), "record purchase", func(tx *gorm.DB) error {
		if _, err := s.repo.FindProductTx(tx, req.ProductID); err != nil {
			return lookupErr("product", req.ProductID, err)
		}
		if req.SupplierID != nil {
			if _, err := s.suppliers.FindByIDTx(tx, *req.SupplierID); err != nil {
				return lookupErr("supplier", *req.SupplierID, err)
			}
		}
		p = model.Purchase{
			ProductID:       req.ProductID,
			SupplierID:      req.SupplierID,
			PurchasedAt:     at,
			PackageQuantity: req.PackageQuantity,
			UnitPrice:       req.UnitPrice,
			Notes:           req.Notes,
		}
		if err := s.repo.CreatePurchaseTx(tx, &p); err != nil {
			return dbErr("insert purchase", err)
		}
		lot = model.InventoryItem{
			ProductID:         req.ProductID,
			PurchaseID:        &p.ID,
			QuantityRemaining: req.PackageQuantity,
			UnitCost:          req.UnitPrice,
			AcquiredAt:        at,
		}
		return dbErr("insert inventory lot", s.repo.CreateInventoryItemTx(tx, &lot))
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("purchase_id", p.ID).Uint("product_id", p.ProductID).
		Str("quantity", p.PackageQuantity.String()).Str("unit_price", p.UnitPrice.String()).Msg("purchase recorded")
	return &dto.PurchaseResponse{
		ID:              p.ID,
		ProductID:       p.ProductID,
		SupplierID:      p.SupplierID,
		PurchasedAt:     p.PurchasedAt,
		PackageQuantity: p.PackageQuantity,
		UnitPrice:       p.UnitPrice,
		TotalCost:       p.PackageQuantity.Mul(p.UnitPrice),
		InventoryItemID: lot.ID,
	}, nil
}

func (s *purchaseService) ConsumeIngredient(ctx context.Context, ingredientID uint, quantity decimal.Decimal) (*dto.ConsumptionResult, error) {
	quantity = model.RoundQuantity(quantity)
	if !quantity.IsPositive() {
		return nil, invalid("quantity", "must be greater than zero")
	}
	result := &dto.ConsumptionResult{IngredientID: ingredientID, Quantity: quantity, TotalCost: decimal.Zero}
	err := runTx(ctx, s.repo.DB(), "consume ingredient", func(tx *gorm.DB) error {
		ing, err := s.repo.FindIngredientTx(tx, ingredientID)
		if err != nil {
			return lookupErr("ingredient", ingredientID, err)
		}
		lots, err := s.repo.OpenLotsForIngredientTx(tx, ingredientID)
		if err != nil {
			return dbErr("load lots", err)
		}

		remaining := quantity
		for _, lot := range lots {
			if !remaining.IsPositive() {
				break
			}
			take := decimal.Min(remaining, lot.QuantityRemaining)
			ok, err := s.repo.DecrementLotTx(tx, lot.ID, take)
			if err != nil {
				return dbErr("decrement lot", err)
			}
			if !ok {
				// Lot drained by a concurrent consumer between read and update.
				continue
			}
			cost := take.Mul(lot.UnitCost)
			result.Lots = append(result.Lots, dto.LotConsumption{
				InventoryItemID: lot.ID,
				ProductID:       lot.ProductID,
				Quantity:        take,
				UnitCost:        lot.UnitCost,
				Cost:            cost,
			})
			result.TotalCost = result.TotalCost.Add(cost)
			remaining = remaining.Sub(take)
		}
		if remaining.IsPositive() {
			return &InsufficientInventoryError{
				Name:      ing.DisplayName,
				Required:  quantity,
				Available: quantity.Sub(remaining),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("ingredient_id", ingredientID).Str("quantity", quantity.String()).
		Int("lots", len(result.Lots)).Str("cost", result.TotalCost.String()).Msg("ingredient consumed")
	return result, nil
}

// PriceTrend summarises the purchase history of a product. Direction
// compares the latest price with the first: a change within ±2% is stable.
func (s *purchaseService) PriceTrend(ctx context.Context, productID uint) (*dto.PriceTrendResponse, error) {
	if _, err := s.repo.FindProductTx(s.repo.DB().WithContext(ctx), productID); err != nil {
		return nil, lookupErr("product", productID, err)
	}
	rows, err := s.repo.ListPurchasesByProduct(ctx, productID)
	if err != nil {
		return nil, dbErr("list purchases", err)
	}

	resp := &dto.PriceTrendResponse{ProductID: productID, History: make([]dto.PricePoint, 0, len(rows)), Direction: dto.TrendStable}
	if len(rows) == 0 {
		return resp, nil
	}
	sum := decimal.Zero
	resp.MinPrice, resp.MaxPrice = rows[0].UnitPrice, rows[0].UnitPrice
	for _, p := range rows {
		resp.History = append(resp.History, dto.PricePoint{PurchaseID: p.ID, PurchasedAt: p.PurchasedAt, UnitPrice: p.UnitPrice})
		resp.MinPrice = decimal.Min(resp.MinPrice, p.UnitPrice)
		resp.MaxPrice = decimal.Max(resp.MaxPrice, p.UnitPrice)
		sum = sum.Add(p.UnitPrice)
	}
	first := rows[0].UnitPrice
	resp.LatestPrice = rows[len(rows)-1].UnitPrice
	resp.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(rows)))).Round(4)

	if first.IsPositive() {
		resp.PercentChange = resp.LatestPrice.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).Round(2)
	}
	switch {
	case resp.PercentChange.GreaterThan(trendBand):
		resp.Direction = dto.TrendRising
	case resp.PercentChange.LessThan(trendBand.Neg()):
		resp.Direction = dto.TrendFalling
	}
	return resp, nil
}
