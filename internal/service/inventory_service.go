package service

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementMeta describes the ledger entry written by Adjust.
type MovementMeta struct {
	Kind        string
	Reason      string
	OperationID uuid.UUID
}

// LeafInventory is what the composition engine needs from the costing and
// stock side. Passing a nil tx runs the read on a fresh handle.
type LeafInventory interface {
	UnitCost(ctx context.Context, tx *gorm.DB, ref model.ComponentRef) (decimal.Decimal, error)
	OnHand(ctx context.Context, tx *gorm.DB, ref model.ComponentRef) (decimal.Decimal, error)
	// Adjust changes the count by delta and returns the new count. It fails
	// with InsufficientInventoryError instead of going negative.
	Adjust(ctx context.Context, tx *gorm.DB, ref model.ComponentRef, delta decimal.Decimal, meta MovementMeta) (decimal.Decimal, error)
}

// InventoryService is the stock ledger plus low-stock alerting.
type InventoryService interface {
	LeafInventory
	// NotifyLowStock enqueues an alert for each ref below its minimum.
	// Best effort: failures are logged, never returned.
	NotifyLowStock(ctx context.Context, refs []model.ComponentRef)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type inventoryService struct {
	units      repository.UnitRepository
	goods      repository.FinishedGoodRepository
	movements  repository.MovementRepository
	dispatcher AlertDispatcher
}

func NewInventoryService(
	units repository.UnitRepository,
	goods repository.FinishedGoodRepository,
	movements repository.MovementRepository,
	dispatcher AlertDispatcher,
) InventoryService {
	return &inventoryService{units: units, goods: goods, movements: movements, dispatcher: dispatcher}
}

// stockLevel is the current count and reorder threshold of any component.
type stockLevel struct {
	name     string
	count    decimal.Decimal
	minimum  decimal.Decimal
	unitCost decimal.Decimal
}

func (s *inventoryService) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.units.DB().WithContext(ctx)
}

func (s *inventoryService) level(tx *gorm.DB, ref model.ComponentRef) (*stockLevel, error) {
	switch ref.Type() {
	case model.ComponentFinishedUnit:
		u, err := s.units.FindFinishedUnitTx(tx, ref.ID())
		if err != nil {
			return nil, lookupErr("finished unit", ref.ID(), err)
		}
		return &stockLevel{
			name:     u.DisplayName,
			count:    decimal.NewFromInt(int64(u.InventoryCount)),
			minimum:  decimal.NewFromInt(int64(u.MinimumStock)),
			unitCost: u.UnitCost,
		}, nil
	case model.ComponentMaterialUnit:
		u, err := s.units.FindMaterialUnitTx(tx, ref.ID())
		if err != nil {
			return nil, lookupErr("material unit", ref.ID(), err)
		}
		return &stockLevel{name: u.DisplayName, count: u.InventoryCount, minimum: u.MinimumStock, unitCost: u.UnitCost}, nil
	case model.ComponentFinishedGood:
		fg, err := s.goods.FindByIDTx(tx, ref.ID())
		if err != nil {
			return nil, lookupErr("finished good", ref.ID(), err)
		}
		return &stockLevel{name: fg.DisplayName, count: decimal.NewFromInt(int64(fg.InventoryCount))}, nil
	}
	return nil, invalid("component", "invalid component reference")
}

func (s *inventoryService) UnitCost(ctx context.Context, tx *gorm.DB, ref model.ComponentRef) (decimal.Decimal, error) {
	if !ref.IsLeaf() {
		return decimal.Zero, invalid("component", "unit cost is only tracked for finished and material units")
	}
	lvl, err := s.level(s.handle(ctx, tx), ref)
	if err != nil {
		return decimal.Zero, err
	}
	return lvl.unitCost, nil
}

func (s *inventoryService) OnHand(ctx context.Context, tx *gorm.DB, ref model.ComponentRef) (decimal.Decimal, error) {
	lvl, err := s.level(s.handle(ctx, tx), ref)
	if err != nil {
		return decimal.Zero, err
	}
	return lvl.count, nil
}

func (s *inventoryService) Adjust(ctx context.Context, tx *gorm.DB, ref model.ComponentRef, delta decimal.Decimal, meta MovementMeta) (decimal.Decimal, error) {
	if ref.IsZero() {
		return decimal.Zero, invalid("component", "invalid component reference")
	}
	delta = model.RoundQuantity(delta)
	if delta.IsZero() {
		return decimal.Zero, invalid("delta", "must not be zero")
	}
	if ref.Type().IntegralQuantity() && !delta.IsInteger() {
		return decimal.Zero, invalid("delta", "%s counts are whole numbers", ref.Type())
	}
	tx = s.handle(ctx, tx)

	var ok bool
	var err error
	switch ref.Type() {
	case model.ComponentFinishedUnit:
		ok, err = s.units.AdjustFinishedUnitTx(tx, ref.ID(), int(delta.IntPart()))
	case model.ComponentMaterialUnit:
		ok, err = s.units.AdjustMaterialUnitTx(tx, ref.ID(), delta)
	case model.ComponentFinishedGood:
		ok, err = s.goods.AdjustInventoryTx(tx, ref.ID(), int(delta.IntPart()))
	}
	if err != nil {
		return decimal.Zero, dbErr("adjust "+ref.String(), err)
	}

	// Read back under the row lock the update just took.
	lvl, err := s.level(tx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, &InsufficientInventoryError{
			Component: ref,
			Name:      lvl.name,
			Required:  delta.Neg(),
			Available: lvl.count,
		}
	}

	if meta.OperationID == uuid.Nil {
		meta.OperationID = uuid.New()
	}
	mv := &model.InventoryMovement{
		ComponentType: ref.Type(),
		ComponentID:   ref.ID(),
		Kind:          meta.Kind,
		Delta:         delta,
		Before:        lvl.count.Sub(delta),
		After:         lvl.count,
		Reason:        meta.Reason,
		OperationID:   meta.OperationID,
	}
	if err := s.movements.CreateTx(tx, mv); err != nil {
		return decimal.Zero, dbErr("record movement for "+ref.String(), err)
	}
	return lvl.count, nil
}

func (s *inventoryService) NotifyLowStock(ctx context.Context, refs []model.ComponentRef) {
	if s.dispatcher == nil {
		return
	}
	db := s.units.DB().WithContext(ctx)
	for _, ref := range refs {
		if !ref.IsLeaf() {
			continue
		}
		lvl, err := s.level(db, ref)
		if err != nil {
			log.Warn().Err(err).Str("component", ref.String()).Msg("low stock check failed")
			continue
		}
		if !lvl.minimum.IsPositive() || !lvl.count.LessThan(lvl.minimum) {
			continue
		}
		alert := dto.StockAlert{
			ComponentType: ref.Type(),
			ComponentID:   ref.ID(),
			DisplayName:   lvl.name,
			OnHand:        lvl.count,
			MinimumStock:  lvl.minimum,
		}
		if err := s.dispatcher.EnqueueStockAlert(ctx, alert); err != nil {
			log.Warn().Err(err).Str("component", ref.String()).Msg("failed to enqueue stock alert")
		}
	}
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.ComponentType != "" {
		if _, err := model.ParseComponentType(filter.ComponentType); err != nil {
			return nil, invalid("component_type", "%v", err)
		}
	}
	rows, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, dbErr("list movements", err)
	}
	out := make([]dto.MovementResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			ComponentType: m.ComponentType,
			ComponentID:   m.ComponentID,
			Kind:          m.Kind,
			Delta:         m.Delta,
			Before:        m.Before,
			After:         m.After,
			Reason:        m.Reason,
			OperationID:   m.OperationID.String(),
			CreatedAt:     m.CreatedAt,
		})
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return &dto.MovementListResponse{Data: out, Total: total, Page: page, Limit: limit}, nil
}
