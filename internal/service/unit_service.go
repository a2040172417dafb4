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

// UnitService manages the finished-unit and material-unit catalogs and their
// stock outside of assembly runs.
type UnitService interface {
	CreateFinishedUnit(ctx context.Context, req dto.CreateFinishedUnitRequest) (*dto.FinishedUnitResponse, error)
	GetFinishedUnit(ctx context.Context, id uint) (*dto.FinishedUnitResponse, error)
	ListFinishedUnits(ctx context.Context, filter dto.UnitFilter) ([]dto.FinishedUnitResponse, int64, error)

	CreateMaterialUnit(ctx context.Context, req dto.CreateMaterialUnitRequest) (*dto.MaterialUnitResponse, error)
	GetMaterialUnit(ctx context.Context, id uint) (*dto.MaterialUnitResponse, error)
	ListMaterialUnits(ctx context.Context, filter dto.UnitFilter) ([]dto.MaterialUnitResponse, int64, error)

	UpdateUnitCost(ctx context.Context, ref model.ComponentRef, cost decimal.Decimal) error
	AdjustInventory(ctx context.Context, ref model.ComponentRef, req dto.AdjustInventoryRequest) (decimal.Decimal, error)
	// RecordProduction adds baked units to stock. Discrete-count units also
	// get their BARE wrapper assembly ensured in the same transaction.
	RecordProduction(ctx context.Context, unitID uint, quantity int) (*dto.ProductionResult, error)
}

type unitService struct {
	units      repository.UnitRepository
	engine     CompositionService
	inventory  InventoryService
	assemblies AssemblyService
}

func NewUnitService(
	units repository.UnitRepository,
	engine CompositionService,
	inventory InventoryService,
	assemblies AssemblyService,
) UnitService {
	return &unitService{units: units, engine: engine, inventory: inventory, assemblies: assemblies}
}

func (s *unitService) CreateFinishedUnit(ctx context.Context, req dto.CreateFinishedUnitRequest) (*dto.FinishedUnitResponse, error) {
	name, err := validateDisplayName(req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.UnitCost.IsNegative() {
		return nil, invalid("unit_cost", "must not be negative")
	}
	mode := model.YieldMode(req.YieldMode)
	if mode == "" {
		mode = model.YieldDiscreteCount
	}
	if mode != model.YieldDiscreteCount && mode != model.YieldBatchPortion {
		return nil, invalid("yield_mode", "unrecognised yield mode %q", req.YieldMode)
	}

	db := s.units.DB().WithContext(ctx)
	slug, err := uniqueSlug(name, "unit", func(c string) (bool, error) { return s.units.FinishedUnitSlugExistsTx(db, c) })
	if err != nil {
		return nil, dbErr("generate slug", err)
	}
	u := &model.FinishedUnit{
		Slug:           slug,
		DisplayName:    name,
		RecipeID:       req.RecipeID,
		UnitCost:       req.UnitCost,
		InventoryCount: req.InventoryCount,
		MinimumStock:   req.MinimumStock,
		YieldMode:      mode,
		ItemsPerBatch:  req.ItemsPerBatch,
		ItemUnit:       req.ItemUnit,
		Category:       req.Category,
	}
	if u.ItemsPerBatch < 1 {
		u.ItemsPerBatch = 1
	}
	if u.ItemUnit == "" {
		u.ItemUnit = "piece"
	}
	if err := s.units.CreateFinishedUnit(ctx, u); err != nil {
		return nil, dbErr("insert finished unit", err)
	}
	log.Info().Uint("finished_unit_id", u.ID).Str("slug", u.Slug).Msg("finished unit created")
	resp := finishedUnitToResponse(u)
	return &resp, nil
}

func (s *unitService) GetFinishedUnit(ctx context.Context, id uint) (*dto.FinishedUnitResponse, error) {
	u, err := s.units.FindFinishedUnitTx(s.units.DB().WithContext(ctx), id)
	if err != nil {
		return nil, lookupErr("finished unit", id, err)
	}
	resp := finishedUnitToResponse(u)
	return &resp, nil
}

func (s *unitService) ListFinishedUnits(ctx context.Context, filter dto.UnitFilter) ([]dto.FinishedUnitResponse, int64, error) {
	rows, total, err := s.units.ListFinishedUnits(ctx, filter)
	if err != nil {
		return nil, 0, dbErr("list finished units", err)
	}
	out := make([]dto.FinishedUnitResponse, 0, len(rows))
	for i := range rows {
		out = append(out, finishedUnitToResponse(&rows[i]))
	}
	return out, total, nil
}

func (s *unitService) CreateMaterialUnit(ctx context.Context, req dto.CreateMaterialUnitRequest) (*dto.MaterialUnitResponse, error) {
	name, err := validateDisplayName(req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.UnitCost.IsNegative() || req.InventoryCount.IsNegative() || req.MinimumStock.IsNegative() {
		return nil, invalid("", "cost and counts must not be negative")
	}

	db := s.units.DB().WithContext(ctx)
	slug, err := uniqueSlug(name, "material", func(c string) (bool, error) { return s.units.MaterialUnitSlugExistsTx(db, c) })
	if err != nil {
		return nil, dbErr("generate slug", err)
	}
	u := &model.MaterialUnit{
		Slug:              slug,
		DisplayName:       name,
		MaterialProductID: req.MaterialProductID,
		Unit:              req.Unit,
		UnitCost:          req.UnitCost,
		InventoryCount:    req.InventoryCount,
		MinimumStock:      req.MinimumStock,
	}
	if u.Unit == "" {
		u.Unit = "each"
	}
	if err := s.units.CreateMaterialUnit(ctx, u); err != nil {
		return nil, dbErr("insert material unit", err)
	}
	log.Info().Uint("material_unit_id", u.ID).Str("slug", u.Slug).Msg("material unit created")
	resp := materialUnitToResponse(u)
	return &resp, nil
}

func (s *unitService) GetMaterialUnit(ctx context.Context, id uint) (*dto.MaterialUnitResponse, error) {
	u, err := s.units.FindMaterialUnitTx(s.units.DB().WithContext(ctx), id)
	if err != nil {
		return nil, lookupErr("material unit", id, err)
	}
	resp := materialUnitToResponse(u)
	return &resp, nil
}

func (s *unitService) ListMaterialUnits(ctx context.Context, filter dto.UnitFilter) ([]dto.MaterialUnitResponse, int64, error) {
	rows, total, err := s.units.ListMaterialUnits(ctx, filter)
	if err != nil {
		return nil, 0, dbErr("list material units", err)
	}
	out := make([]dto.MaterialUnitResponse, 0, len(rows))
	for i := range rows {
		out = append(out, materialUnitToResponse(&rows[i]))
	}
	return out, total, nil
}

// UpdateUnitCost changes a leaf's cost. Cached hierarchies above the leaf
// show the old cost, so they are dropped.
func (s *unitService) UpdateUnitCost(ctx context.Context, ref model.ComponentRef, cost decimal.Decimal) error {
	if !ref.IsLeaf() {
		return invalid("component", "unit cost is only tracked for finished and material units")
	}
	if cost.IsNegative() {
		return invalid("unit_cost", "must not be negative")
	}
	if err := s.units.UpdateUnitCost(ctx, ref, cost); err != nil {
		return lookupErr(string(ref.Type()), ref.ID(), err)
	}
	affected, err := s.engine.AffectedAssembliesTx(s.units.DB().WithContext(ctx), ref)
	if err != nil {
		return err
	}
	s.engine.InvalidateHierarchy(ctx, affected)
	log.Info().Str("component", ref.String()).Str("unit_cost", cost.String()).Msg("unit cost updated")
	return nil
}

func (s *unitService) AdjustInventory(ctx context.Context, ref model.ComponentRef, req dto.AdjustInventoryRequest) (decimal.Decimal, error) {
	if !ref.IsLeaf() {
		return decimal.Zero, invalid("component", "assembly stock changes through produce and disassemble")
	}
	var (
		count    decimal.Decimal
		affected []uint
	)
	err := runTx(ctx, s.units.DB(), "adjust inventory", func(tx *gorm.DB) error {
		var err error
		count, err = s.inventory.Adjust(ctx, tx, ref, req.Delta, MovementMeta{Kind: model.MovementAdjustment, Reason: req.Reason})
		if err != nil {
			return err
		}
		affected, err = s.engine.AffectedAssembliesTx(tx, ref)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	s.engine.InvalidateHierarchy(ctx, affected)
	s.inventory.NotifyLowStock(ctx, []model.ComponentRef{ref})
	log.Info().Str("component", ref.String()).Str("delta", req.Delta.String()).Str("reason", req.Reason).
		Msg("inventory adjusted")
	return count, nil
}

func (s *unitService) RecordProduction(ctx context.Context, unitID uint, quantity int) (*dto.ProductionResult, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	opID := uuid.New()
	var (
		unit     *model.FinishedUnit
		bareID   *uint
		affected []uint
	)
	err := runTx(ctx, s.units.DB(), "record production", func(tx *gorm.DB) error {
		u, err := s.units.FindFinishedUnitTx(tx, unitID)
		if err != nil {
			return lookupErr("finished unit", unitID, err)
		}
		ref := model.FinishedUnitRef(unitID)
		meta := MovementMeta{Kind: model.MovementProduction, Reason: "baked " + u.DisplayName, OperationID: opID}
		if _, err := s.inventory.Adjust(ctx, tx, ref, decimal.NewFromInt(int64(quantity)), meta); err != nil {
			return err
		}
		if u.YieldMode == model.YieldDiscreteCount {
			bare, err := s.assemblies.EnsureBareAssemblyTx(ctx, tx, unitID)
			if err != nil {
				return err
			}
			bareID = &bare.ID
		}
		if affected, err = s.engine.AffectedAssembliesTx(tx, ref); err != nil {
			return err
		}
		unit, err = s.units.FindFinishedUnitTx(tx, unitID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.engine.InvalidateHierarchy(ctx, affected)

	log.Info().Uint("finished_unit_id", unitID).Int("quantity", quantity).Str("operation_id", opID.String()).
		Msg("production recorded")
	return &dto.ProductionResult{
		FinishedUnit:   finishedUnitToResponse(unit),
		BareAssemblyID: bareID,
		OperationID:    opID.String(),
	}, nil
}

func finishedUnitToResponse(u *model.FinishedUnit) dto.FinishedUnitResponse {
	return dto.FinishedUnitResponse{
		ID:             u.ID,
		Slug:           u.Slug,
		DisplayName:    u.DisplayName,
		RecipeID:       u.RecipeID,
		UnitCost:       u.UnitCost,
		InventoryCount: u.InventoryCount,
		MinimumStock:   u.MinimumStock,
		YieldMode:      u.YieldMode,
		ItemsPerBatch:  u.ItemsPerBatch,
		ItemUnit:       u.ItemUnit,
		Category:       u.Category,
		LowStock:       u.MinimumStock > 0 && u.InventoryCount < u.MinimumStock,
	}
}

func materialUnitToResponse(u *model.MaterialUnit) dto.MaterialUnitResponse {
	return dto.MaterialUnitResponse{
		ID:                u.ID,
		Slug:              u.Slug,
		DisplayName:       u.DisplayName,
		MaterialProductID: u.MaterialProductID,
		Unit:              u.Unit,
		UnitCost:          u.UnitCost,
		InventoryCount:    u.InventoryCount,
		MinimumStock:      u.MinimumStock,
		LowStock:          u.MinimumStock.IsPositive() && u.InventoryCount.LessThan(u.MinimumStock),
	}
}
