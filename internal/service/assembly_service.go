package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxDisplayNameLen = 200
	maxReferenceNames = 3
)

// AssemblyService orchestrates the composition engine for assembly CRUD,
// component management and production runs.
type AssemblyService interface {
	Create(ctx context.Context, in dto.CreateAssemblyInput) (*dto.AssemblyResponse, error)
	Update(ctx context.Context, id uint, in dto.UpdateAssemblyInput) (*dto.AssemblyResponse, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*dto.AssemblyResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.AssemblyResponse, error)
	List(ctx context.Context, filter dto.AssemblyFilter) (*dto.AssemblyListResponse, error)

	AddComponent(ctx context.Context, assemblyID uint, spec dto.ComponentSpec) (*dto.AssemblyResponse, error)
	RemoveComponent(ctx context.Context, assemblyID uint, ref model.ComponentRef) (*dto.AssemblyResponse, error)
	UpdateComponentQuantity(ctx context.Context, assemblyID uint, ref model.ComponentRef, qty decimal.Decimal) (*dto.AssemblyResponse, error)

	CheckAvailability(ctx context.Context, id uint, quantity int) (*dto.AvailabilityResponse, error)
	Produce(ctx context.Context, id uint, quantity int) (*dto.ProductionResponse, error)
	Disassemble(ctx context.Context, id uint, quantity int) (*dto.ProductionResponse, error)

	// EnsureBareAssemblyTx returns the BARE wrapper of a finished unit,
	// creating it on first use.
	EnsureBareAssemblyTx(ctx context.Context, tx *gorm.DB, unitID uint) (*model.FinishedGood, error)

	BOMSheet(ctx context.Context, id uint, quantity int) (*dto.BOMSheet, error)
}

type assemblyService struct {
	goods     repository.FinishedGoodRepository
	edges     repository.CompositionRepository
	units     repository.UnitRepository
	events    repository.EventRepository
	engine    CompositionService
	inventory InventoryService
}

func NewAssemblyService(
	goods repository.FinishedGoodRepository,
	edges repository.CompositionRepository,
	units repository.UnitRepository,
	events repository.EventRepository,
	engine CompositionService,
	inventory InventoryService,
) AssemblyService {
	return &assemblyService{
		goods:     goods,
		edges:     edges,
		units:     units,
		events:    events,
		engine:    engine,
		inventory: inventory,
	}
}

// ── Business rules ───────────────────────────────────────────────────────────

type componentRule struct{ min, max int }

var assemblyRules = map[model.AssemblyType]componentRule{
	model.AssemblyCustomOrder: {0, 20},
	model.AssemblyGiftBox:     {1, 20},
	model.AssemblyVarietyPack: {2, 20},
	model.AssemblyHolidaySet:  {1, 20},
	model.AssemblyBulkPack:    {1, 1},
	model.AssemblyBare:        {1, 1},
}

func validateAssemblyType(t model.AssemblyType) error {
	if _, ok := assemblyRules[t]; !ok {
		return invalid("assembly_type", "unrecognised assembly type %q", t)
	}
	return nil
}

// ruleScope selects how much of the per-type rule a check enforces.
type ruleScope int

const (
	// fullSet applies when a whole component list is supplied or the type
	// changes: both the minimum and the maximum count hold.
	fullSet ruleScope = iota
	// singleEdit applies to one add/remove/quantity change: only the maximum
	// and the BARE shape (exactly one) hold, so an assembly can be filled or
	// emptied one component at a time.
	singleEdit
)

// checkAssemblyRules validates the persisted component set against the
// per-type min/max counts. A BARE wrapper holds exactly one finished unit × 1.
func (s *assemblyService) checkAssemblyRules(tx *gorm.DB, fg *model.FinishedGood, scope ruleScope) error {
	edges, err := s.edges.ListByAssemblyTx(tx, fg.ID)
	if err != nil {
		return dbErr("load components", err)
	}
	rule := assemblyRules[fg.AssemblyType]
	n := len(edges)
	tooFew := n < rule.min && (scope == fullSet || fg.AssemblyType == model.AssemblyBare)
	if tooFew || n > rule.max {
		if rule.min == rule.max {
			return invalid("components", "%s assemblies need exactly %d component(s), got %d", fg.AssemblyType, rule.min, n)
		}
		return invalid("components", "%s assemblies need %d to %d components, got %d", fg.AssemblyType, rule.min, rule.max, n)
	}
	if n == 0 {
		return nil
	}
	if fg.AssemblyType == model.AssemblyBare {
		e := edges[0]
		if e.Component().Type() != model.ComponentFinishedUnit || !e.ComponentQuantity.Equal(decimal.NewFromInt(1)) {
			return invalid("components", "BARE assemblies wrap exactly one finished unit with quantity 1")
		}
	}
	return nil
}

func validateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("display_name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return "", invalid("display_name", "must be at most %d characters", maxDisplayNameLen)
	}
	return name, nil
}

// prevalidateSpecs checks shape and in-list duplicates before any write.
func prevalidateSpecs(specs []dto.ComponentSpec) error {
	seen := make(map[model.ComponentRef]bool, len(specs))
	for i, spec := range specs {
		if spec.Component.IsZero() {
			return invalid("components", "entry %d: exactly one component reference is required", i)
		}
		if err := validateQuantity(spec.Component.Type(), spec.Quantity); err != nil {
			return invalid("components", "entry %d: %v", i, err)
		}
		if seen[spec.Component] {
			return invalid("components", "entry %d: duplicate component %s", i, spec.Component)
		}
		seen[spec.Component] = true
	}
	return nil
}

func (s *assemblyService) slugTx(tx *gorm.DB, name string, excludeID uint) (string, error) {
	return uniqueSlug(name, "assembly", func(candidate string) (bool, error) {
		return s.goods.SlugExistsTx(tx, candidate, excludeID)
	})
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func (s *assemblyService) Create(ctx context.Context, in dto.CreateAssemblyInput) (*dto.AssemblyResponse, error) {
	name, err := validateDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}
	if in.AssemblyType == "" {
		in.AssemblyType = model.AssemblyCustomOrder
	}
	if err := validateAssemblyType(in.AssemblyType); err != nil {
		return nil, err
	}
	if err := prevalidateSpecs(in.Components); err != nil {
		return nil, err
	}

	var fg model.FinishedGood
	err = runTx(ctx, s.goods.DB(), "create assembly", func(tx *gorm.DB) error {
		slug, err := s.slugTx(tx, name, 0)
		if err != nil {
			return dbErr("generate slug", err)
		}
		fg = model.FinishedGood{
			Slug:                  slug,
			DisplayName:           name,
			AssemblyType:          in.AssemblyType,
			Description:           in.Description,
			PackagingInstructions: in.PackagingInstructions,
			Notes:                 in.Notes,
		}
		if err := s.goods.CreateTx(tx, &fg); err != nil {
			return dbErr("insert assembly", err)
		}
		for _, spec := range in.Components {
			if _, err := s.engine.AddEdgeTx(tx, fg.ID, spec); err != nil {
				return err
			}
		}
		if len(in.Components) > 0 {
			return s.checkAssemblyRules(tx, &fg, fullSet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("assembly_id", fg.ID).Str("slug", fg.Slug).Int("components", len(in.Components)).
		Str("op", "create").Msg("assembly created")
	return s.Get(ctx, fg.ID)
}

func (s *assemblyService) Update(ctx context.Context, id uint, in dto.UpdateAssemblyInput) (*dto.AssemblyResponse, error) {
	if in.DisplayName != nil {
		name, err := validateDisplayName(*in.DisplayName)
		if err != nil {
			return nil, err
		}
		in.DisplayName = &name
	}
	if in.AssemblyType != nil {
		if err := validateAssemblyType(*in.AssemblyType); err != nil {
			return nil, err
		}
	}
	if err := prevalidateSpecs(in.Components); err != nil {
		return nil, err
	}

	var affected []uint
	err := runTx(ctx, s.goods.DB(), "update assembly", func(tx *gorm.DB) error {
		fg, err := s.goods.LockTx(tx, id)
		if err != nil {
			return lookupErr("finished good", id, err)
		}

		if in.DisplayName != nil && *in.DisplayName != fg.DisplayName {
			slug, err := s.slugTx(tx, *in.DisplayName, fg.ID)
			if err != nil {
				return dbErr("generate slug", err)
			}
			fg.DisplayName, fg.Slug = *in.DisplayName, slug
		}
		typeChanged := in.AssemblyType != nil && *in.AssemblyType != fg.AssemblyType
		if in.AssemblyType != nil {
			fg.AssemblyType = *in.AssemblyType
		}
		if in.Description != nil {
			fg.Description = in.Description
		}
		if in.PackagingInstructions != nil {
			fg.PackagingInstructions = in.PackagingInstructions
		}
		if in.Notes != nil {
			fg.Notes = in.Notes
		}
		if err := s.goods.UpdateTx(tx, fg); err != nil {
			return dbErr("update assembly", err)
		}

		if in.Components != nil {
			if err := s.edges.DeleteByAssemblyTx(tx, fg.ID); err != nil {
				return dbErr("clear components", err)
			}
			for _, spec := range in.Components {
				if _, err := s.engine.AddEdgeTx(tx, fg.ID, spec); err != nil {
					return err
				}
			}
		}
		if in.Components != nil || typeChanged {
			if err := s.checkAssemblyRules(tx, fg, fullSet); err != nil {
				return err
			}
		}

		affected, err = s.engine.AffectedAssembliesTx(tx, model.FinishedGoodRef(fg.ID))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.engine.InvalidateHierarchy(ctx, affected)

	log.Info().Uint("assembly_id", id).Bool("components_replaced", in.Components != nil).
		Str("op", "update").Msg("assembly updated")
	return s.Get(ctx, id)
}

func (s *assemblyService) Delete(ctx context.Context, id uint) error {
	var affected []uint
	err := runTx(ctx, s.goods.DB(), "delete assembly", func(tx *gorm.DB) error {
		if _, err := s.goods.LockTx(tx, id); err != nil {
			return lookupErr("finished good", id, err)
		}

		parents, err := s.edges.ParentAssemblyIDsTx(tx, model.FinishedGoodRef(id))
		if err != nil {
			return dbErr("find referencing assemblies", err)
		}
		if len(parents) > 0 {
			shown := parents
			if len(shown) > maxReferenceNames {
				shown = shown[:maxReferenceNames]
			}
			rows, err := s.goods.FindByIDsTx(tx, shown)
			if err != nil {
				return dbErr("load referencing assemblies", err)
			}
			names := make([]string, 0, len(rows))
			for _, r := range rows {
				names = append(names, r.DisplayName)
			}
			return &ReferencedEntityError{Entity: "assembly", ID: id, Assemblies: names, AssemblyCount: len(parents)}
		}

		events, err := s.events.EventNamesUsingAssemblyTx(tx, id)
		if err != nil {
			return dbErr("find referencing events", err)
		}
		if len(events) > 0 {
			return &ReferencedEntityError{Entity: "assembly", ID: id, Events: events}
		}

		affected = []uint{id}
		// Edges owned by this assembly go with it through ON DELETE CASCADE.
		return dbErr("delete assembly", s.goods.DeleteTx(tx, id))
	})
	if err != nil {
		return err
	}
	s.engine.InvalidateHierarchy(ctx, affected)
	log.Info().Uint("assembly_id", id).Str("op", "delete").Msg("assembly deleted")
	return nil
}

func (s *assemblyService) Get(ctx context.Context, id uint) (*dto.AssemblyResponse, error) {
	tx := s.goods.DB().WithContext(ctx)
	fg, err := s.goods.FindByIDTx(tx, id)
	if err != nil {
		return nil, lookupErr("finished good", id, err)
	}
	return s.toResponseTx(tx, fg)
}

func (s *assemblyService) GetBySlug(ctx context.Context, slug string) (*dto.AssemblyResponse, error) {
	fg, err := s.goods.FindBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr("finished good", slug, err)
	}
	return s.toResponseTx(s.goods.DB().WithContext(ctx), fg)
}

func (s *assemblyService) List(ctx context.Context, filter dto.AssemblyFilter) (*dto.AssemblyListResponse, error) {
	if filter.AssemblyType != "" {
		t, err := model.ParseAssemblyType(filter.AssemblyType)
		if err != nil {
			return nil, invalid("assembly_type", "%v", err)
		}
		filter.AssemblyType = string(t)
	}
	rows, total, err := s.goods.List(ctx, filter)
	if err != nil {
		return nil, dbErr("list assemblies", err)
	}
	tx := s.goods.DB().WithContext(ctx)
	out := make([]dto.AssemblyResponse, 0, len(rows))
	for i := range rows {
		resp, err := s.toResponseTx(tx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return &dto.AssemblyListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *assemblyService) toResponseTx(tx *gorm.DB, fg *model.FinishedGood) (*dto.AssemblyResponse, error) {
	edges, err := s.edges.ListByAssemblyTx(tx, fg.ID)
	if err != nil {
		return nil, dbErr("load components", err)
	}
	resp := &dto.AssemblyResponse{
		ID:                    fg.ID,
		Slug:                  fg.Slug,
		DisplayName:           fg.DisplayName,
		AssemblyType:          fg.AssemblyType,
		Description:           fg.Description,
		PackagingInstructions: fg.PackagingInstructions,
		Notes:                 fg.Notes,
		InventoryCount:        fg.InventoryCount,
		Components:            make([]dto.CompositionResponse, 0, len(edges)),
		CreatedAt:             fg.CreatedAt,
		UpdatedAt:             fg.UpdatedAt,
	}
	for i := range edges {
		resp.Components = append(resp.Components, dto.NewCompositionResponse(&edges[i]))
	}
	return resp, nil
}

// ── Single-component edits ───────────────────────────────────────────────────

// editComponents runs fn in a transaction, re-checks the maximum count and
// BARE shape on the resulting component set and invalidates the cache after
// commit.
func (s *assemblyService) editComponents(ctx context.Context, assemblyID uint, op string, fn func(tx *gorm.DB) error) (*dto.AssemblyResponse, error) {
	var affected []uint
	err := runTx(ctx, s.goods.DB(), op, func(tx *gorm.DB) error {
		fg, err := s.goods.LockTx(tx, assemblyID)
		if err != nil {
			return lookupErr("finished good", assemblyID, err)
		}
		if err := fn(tx); err != nil {
			return err
		}
		if err := s.checkAssemblyRules(tx, fg, singleEdit); err != nil {
			return err
		}
		affected, err = s.engine.AffectedAssembliesTx(tx, model.FinishedGoodRef(assemblyID))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.engine.InvalidateHierarchy(ctx, affected)
	log.Info().Uint("assembly_id", assemblyID).Str("op", op).Msg("assembly components changed")
	return s.Get(ctx, assemblyID)
}

func (s *assemblyService) AddComponent(ctx context.Context, assemblyID uint, spec dto.ComponentSpec) (*dto.AssemblyResponse, error) {
	return s.editComponents(ctx, assemblyID, "add component", func(tx *gorm.DB) error {
		_, err := s.engine.AddEdgeTx(tx, assemblyID, spec)
		return err
	})
}

func (s *assemblyService) findEdgeTx(tx *gorm.DB, assemblyID uint, ref model.ComponentRef) (*model.Composition, error) {
	if ref.IsZero() {
		return nil, invalid("component", "invalid component reference")
	}
	c, err := s.edges.FindByComponentTx(tx, assemblyID, ref)
	if err != nil {
		return nil, lookupErr("component "+ref.String()+" of assembly", assemblyID, err)
	}
	return c, nil
}

func (s *assemblyService) RemoveComponent(ctx context.Context, assemblyID uint, ref model.ComponentRef) (*dto.AssemblyResponse, error) {
	return s.editComponents(ctx, assemblyID, "remove component", func(tx *gorm.DB) error {
		c, err := s.findEdgeTx(tx, assemblyID, ref)
		if err != nil {
			return err
		}
		return dbErr("delete composition", s.edges.DeleteTx(tx, c.ID))
	})
}

func (s *assemblyService) UpdateComponentQuantity(ctx context.Context, assemblyID uint, ref model.ComponentRef, qty decimal.Decimal) (*dto.AssemblyResponse, error) {
	if err := validateQuantity(ref.Type(), qty); err != nil {
		return nil, err
	}
	return s.editComponents(ctx, assemblyID, "update component quantity", func(tx *gorm.DB) error {
		c, err := s.findEdgeTx(tx, assemblyID, ref)
		if err != nil {
			return err
		}
		return dbErr("update composition quantity", s.edges.UpdateQuantityTx(tx, c.ID, qty))
	})
}

// ── Availability & production ────────────────────────────────────────────────

func (s *assemblyService) CheckAvailability(ctx context.Context, id uint, quantity int) (*dto.AvailabilityResponse, error) {
	req, err := s.engine.CalculateRequiredInventory(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityResponse{
		AssemblyID:   id,
		Quantity:     quantity,
		CanProduce:   req.AvailabilityStatus == dto.StatusAvailable,
		Requirements: *req,
	}, nil
}

func leafRefs(req *dto.InventoryRequirements) ([]model.ComponentRef, error) {
	leaves := req.Leaves()
	refs := make([]model.ComponentRef, 0, len(leaves))
	for _, l := range leaves {
		ref, err := model.NewComponentRef(l.ComponentType, l.ComponentID)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Produce consumes the flattened leaves for quantity assemblies and adds
// them to the assembly's stock. Each leaf decrement is conditional, so a
// concurrent run that drained a leaf after the availability check fails
// here instead of driving the count negative; the whole run rolls back.
func (s *assemblyService) Produce(ctx context.Context, id uint, quantity int) (*dto.ProductionResponse, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	opID := uuid.New()
	var (
		refs     []model.ComponentRef
		affected []uint
		count    decimal.Decimal
	)
	err := runTx(ctx, s.goods.DB(), "produce assembly", func(tx *gorm.DB) error {
		fg, err := s.goods.LockTx(tx, id)
		if err != nil {
			return lookupErr("finished good", id, err)
		}
		req, err := s.engine.CalculateRequiredInventoryTx(ctx, tx, id, quantity)
		if err != nil {
			return err
		}
		if req.AvailabilityStatus != dto.StatusAvailable {
			for _, l := range req.Leaves() {
				if l.Shortage.IsPositive() {
					ref, _ := model.NewComponentRef(l.ComponentType, l.ComponentID)
					return &InsufficientInventoryError{Component: ref, Name: l.DisplayName, Required: l.Required, Available: l.Available}
				}
			}
		}

		refs, err = leafRefs(req)
		if err != nil {
			return err
		}
		reason := "produce " + fg.DisplayName
		for i, l := range req.Leaves() {
			meta := MovementMeta{Kind: model.MovementAssembly, Reason: reason, OperationID: opID}
			if _, err := s.inventory.Adjust(ctx, tx, refs[i], l.Required.Neg(), meta); err != nil {
				return err
			}
		}
		fgRef := model.FinishedGoodRef(id)
		count, err = s.inventory.Adjust(ctx, tx, fgRef, decimal.NewFromInt(int64(quantity)),
			MovementMeta{Kind: model.MovementAssembly, Reason: reason, OperationID: opID})
		if err != nil {
			return err
		}
		affected, err = s.engine.AffectedAssembliesTx(tx, append([]model.ComponentRef{fgRef}, refs...)...)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.engine.InvalidateHierarchy(ctx, affected)
	s.inventory.NotifyLowStock(ctx, refs)
	log.Info().Uint("assembly_id", id).Int("quantity", quantity).Str("operation_id", opID.String()).
		Str("op", "produce").Msg("assembly produced")
	return &dto.ProductionResponse{
		AssemblyID:     id,
		Quantity:       quantity,
		InventoryCount: int(count.IntPart()),
		OperationID:    opID.String(),
		LeavesAdjusted: len(refs),
	}, nil
}

// Disassemble breaks quantity assemblies back into their leaves.
func (s *assemblyService) Disassemble(ctx context.Context, id uint, quantity int) (*dto.ProductionResponse, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	opID := uuid.New()
	var (
		refs     []model.ComponentRef
		affected []uint
		count    decimal.Decimal
	)
	err := runTx(ctx, s.goods.DB(), "disassemble assembly", func(tx *gorm.DB) error {
		fg, err := s.goods.LockTx(tx, id)
		if err != nil {
			return lookupErr("finished good", id, err)
		}
		if fg.InventoryCount < quantity {
			return &InsufficientInventoryError{
				Component: model.FinishedGoodRef(id),
				Name:      fg.DisplayName,
				Required:  decimal.NewFromInt(int64(quantity)),
				Available: decimal.NewFromInt(int64(fg.InventoryCount)),
			}
		}

		reason := "disassemble " + fg.DisplayName
		fgRef := model.FinishedGoodRef(id)
		count, err = s.inventory.Adjust(ctx, tx, fgRef, decimal.NewFromInt(int64(-quantity)),
			MovementMeta{Kind: model.MovementDisassembly, Reason: reason, OperationID: opID})
		if err != nil {
			return err
		}

		flat, err := s.engine.FlattenTx(ctx, tx, id)
		if err != nil {
			return err
		}
		multiplier := decimal.NewFromInt(int64(quantity))
		for _, leaf := range flat {
			ref, err := model.NewComponentRef(leaf.ComponentType, leaf.ComponentID)
			if err != nil {
				return err
			}
			meta := MovementMeta{Kind: model.MovementDisassembly, Reason: reason, OperationID: opID}
			if _, err := s.inventory.Adjust(ctx, tx, ref, leaf.TotalQuantity.Mul(multiplier), meta); err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		affected, err = s.engine.AffectedAssembliesTx(tx, append([]model.ComponentRef{fgRef}, refs...)...)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.engine.InvalidateHierarchy(ctx, affected)
	log.Info().Uint("assembly_id", id).Int("quantity", quantity).Str("operation_id", opID.String()).
		Str("op", "disassemble").Msg("assembly disassembled")
	return &dto.ProductionResponse{
		AssemblyID:     id,
		Quantity:       quantity,
		InventoryCount: int(count.IntPart()),
		OperationID:    opID.String(),
		LeavesAdjusted: len(refs),
	}, nil
}

func (s *assemblyService) EnsureBareAssemblyTx(ctx context.Context, tx *gorm.DB, unitID uint) (*model.FinishedGood, error) {
	existing, err := s.goods.FindBareForUnitTx(tx, unitID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbErr("find bare assembly", err)
	}

	unit, err := s.units.FindFinishedUnitTx(tx, unitID)
	if err != nil {
		return nil, lookupErr("finished unit", unitID, err)
	}
	slug, err := s.slugTx(tx, unit.DisplayName, 0)
	if err != nil {
		return nil, dbErr("generate slug", err)
	}
	fg := &model.FinishedGood{
		Slug:         slug,
		DisplayName:  unit.DisplayName,
		AssemblyType: model.AssemblyBare,
	}
	if err := s.goods.CreateTx(tx, fg); err != nil {
		return nil, dbErr("insert bare assembly", err)
	}
	if _, err := s.engine.AddEdgeTx(tx, fg.ID, dto.ComponentSpec{
		Component: model.FinishedUnitRef(unitID),
		Quantity:  decimal.NewFromInt(1),
	}); err != nil {
		return nil, err
	}
	if err := s.checkAssemblyRules(tx, fg, fullSet); err != nil {
		return nil, err
	}
	log.Info().Uint("assembly_id", fg.ID).Uint("finished_unit_id", unitID).
		Str("op", "ensure_bare").Msg("bare assembly created")
	return fg, nil
}

// BOMSheet gathers what the printable production sheet shows.
func (s *assemblyService) BOMSheet(ctx context.Context, id uint, quantity int) (*dto.BOMSheet, error) {
	if quantity <= 0 {
		quantity = 1
	}
	asm, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	flat, err := s.engine.Flatten(ctx, id)
	if err != nil {
		return nil, err
	}
	multiplier := decimal.NewFromInt(int64(quantity))
	total := decimal.Zero
	for i := range flat {
		flat[i].TotalQuantity = flat[i].TotalQuantity.Mul(multiplier)
		flat[i].TotalCost = flat[i].TotalCost.Mul(multiplier)
		total = total.Add(flat[i].TotalCost)
	}
	return &dto.BOMSheet{Assembly: *asm, Quantity: quantity, Components: flat, TotalCost: total}, nil
}
