package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// MaxHierarchyDepth caps GetHierarchy regardless of the requested depth.
const MaxHierarchyDepth = 5

var tracer = otel.Tracer("bake-tracker/composition")

// CompositionService is the BOM graph engine: edge mutation with cycle
// safety, traversal, flattening and cost / requirement aggregation.
//
// Tx-suffixed methods run on the caller's transaction so a write and the
// read that validates it see the same snapshot.
type CompositionService interface {
	WouldCreateCycle(ctx context.Context, parentID, childID uint) (bool, error)
	WouldCreateCycleTx(tx *gorm.DB, parentID, childID uint) (bool, error)
	ValidateNoCircularReference(ctx context.Context, parentID, childID uint) (bool, error)

	CreateComposition(ctx context.Context, in dto.CreateCompositionInput) (*model.Composition, error)
	UpdateCompositionQuantity(ctx context.Context, id uint, qty decimal.Decimal) (*model.Composition, error)
	RemoveComposition(ctx context.Context, id uint) error

	GetHierarchy(ctx context.Context, rootID uint, maxDepth int) (*dto.HierarchyNode, error)
	Flatten(ctx context.Context, rootID uint) ([]dto.FlattenedComponent, error)
	FlattenTx(ctx context.Context, tx *gorm.DB, rootID uint) ([]dto.FlattenedComponent, error)
	CalculateComponentCosts(ctx context.Context, assemblyID uint) (*dto.CostBreakdown, error)
	CalculateRequiredInventory(ctx context.Context, assemblyID uint, quantity int) (*dto.InventoryRequirements, error)
	CalculateRequiredInventoryTx(ctx context.Context, tx *gorm.DB, assemblyID uint, quantity int) (*dto.InventoryRequirements, error)

	// AddEdgeTx validates and inserts one edge. Used by the assembly service
	// so single adds and bulk replacement share one code path.
	AddEdgeTx(tx *gorm.DB, assemblyID uint, spec dto.ComponentSpec) (*model.Composition, error)

	// AffectedAssembliesTx returns every assembly whose cached hierarchy a
	// change to refs makes stale: the refs themselves when they are
	// assemblies, the assemblies containing them, and all ancestors.
	AffectedAssembliesTx(tx *gorm.DB, refs ...model.ComponentRef) ([]uint, error)
	InvalidateHierarchy(ctx context.Context, assemblyIDs []uint)
}

type compositionService struct {
	edges     repository.CompositionRepository
	goods     repository.FinishedGoodRepository
	units     repository.UnitRepository
	inventory LeafInventory
	cache     Cache // optional
}

func NewCompositionService(
	edges repository.CompositionRepository,
	goods repository.FinishedGoodRepository,
	units repository.UnitRepository,
	inventory LeafInventory,
	cache Cache,
) CompositionService {
	return &compositionService{edges: edges, goods: goods, units: units, inventory: inventory, cache: cache}
}

func (s *compositionService) read(ctx context.Context) *gorm.DB {
	return s.edges.DB().WithContext(ctx)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "composition."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ── Cycle detection ──────────────────────────────────────────────────────────

func (s *compositionService) WouldCreateCycle(ctx context.Context, parentID, childID uint) (cycle bool, err error) {
	_, span := startSpan(ctx, "WouldCreateCycle",
		attribute.Int64("parent.id", int64(parentID)), attribute.Int64("child.id", int64(childID)))
	defer func() { endSpan(span, err) }()
	return s.WouldCreateCycleTx(s.read(ctx), parentID, childID)
}

// WouldCreateCycleTx runs a breadth-first search from childID along
// assembly→assembly edges. Reaching parentID (or parentID == childID) means
// the new edge would close a cycle. Each node is expanded at most once.
func (s *compositionService) WouldCreateCycleTx(tx *gorm.DB, parentID, childID uint) (bool, error) {
	if _, err := s.goods.FindByIDTx(tx, parentID); err != nil {
		return false, lookupErr("finished good", parentID, err)
	}
	if _, err := s.goods.FindByIDTx(tx, childID); err != nil {
		return false, lookupErr("finished good", childID, err)
	}
	if parentID == childID {
		return true, nil
	}

	visited := map[uint]bool{childID: true}
	queue := []uint{childID}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		children, err := s.edges.ChildAssemblyIDsTx(tx, node)
		if err != nil {
			return false, dbErr("walk assembly graph", err)
		}
		for _, c := range children {
			if c == parentID {
				return true, nil
			}
			if !visited[c] {
				visited[c] = true
				queue = append(queue, c)
			}
		}
	}
	return false, nil
}

func (s *compositionService) ValidateNoCircularReference(ctx context.Context, parentID, childID uint) (bool, error) {
	cycle, err := s.WouldCreateCycle(ctx, parentID, childID)
	if err != nil {
		return false, err
	}
	return !cycle, nil
}

// ── Edge mutation ────────────────────────────────────────────────────────────

// validateQuantity enforces > 0 and whole numbers for unit / assembly components.
func validateQuantity(t model.ComponentType, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return invalid("quantity", "must be greater than zero")
	}
	if t.IntegralQuantity() && !qty.IsInteger() {
		return invalid("quantity", "%s quantities must be whole numbers", t)
	}
	return nil
}

func (s *compositionService) componentExistsTx(tx *gorm.DB, ref model.ComponentRef) error {
	var err error
	switch ref.Type() {
	case model.ComponentFinishedUnit:
		_, err = s.units.FindFinishedUnitTx(tx, ref.ID())
	case model.ComponentMaterialUnit:
		_, err = s.units.FindMaterialUnitTx(tx, ref.ID())
	case model.ComponentFinishedGood:
		_, err = s.goods.FindByIDTx(tx, ref.ID())
	default:
		return invalid("component", "invalid component reference")
	}
	if err != nil {
		return lookupErr(string(ref.Type()), ref.ID(), err)
	}
	return nil
}

func (s *compositionService) AddEdgeTx(tx *gorm.DB, assemblyID uint, spec dto.ComponentSpec) (*model.Composition, error) {
	ref := spec.Component
	if ref.IsZero() {
		return nil, invalid("component", "exactly one component reference is required")
	}
	if err := validateQuantity(ref.Type(), spec.Quantity); err != nil {
		return nil, err
	}
	if spec.SortOrder != nil && *spec.SortOrder < 0 {
		return nil, invalid("sort_order", "must not be negative")
	}
	if _, err := s.goods.FindByIDTx(tx, assemblyID); err != nil {
		return nil, lookupErr("finished good", assemblyID, err)
	}
	if err := s.componentExistsTx(tx, ref); err != nil {
		return nil, err
	}
	if ref.Type() == model.ComponentFinishedGood {
		cycle, err := s.WouldCreateCycleTx(tx, assemblyID, ref.ID())
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, &CircularReferenceError{ParentID: assemblyID, ChildID: ref.ID()}
		}
	}

	_, err := s.edges.FindByComponentTx(tx, assemblyID, ref)
	switch {
	case err == nil:
		return nil, invalid("component", "%s is already a component of assembly %d", ref, assemblyID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, dbErr("check duplicate component", err)
	}

	order := 0
	if spec.SortOrder != nil {
		order = *spec.SortOrder
	} else {
		last, err := s.edges.MaxSortOrderTx(tx, assemblyID)
		if err != nil {
			return nil, dbErr("read sort order", err)
		}
		order = last + 1
	}

	c := &model.Composition{
		AssemblyID:        assemblyID,
		ComponentQuantity: spec.Quantity,
		Notes:             spec.Notes,
		SortOrder:         order,
	}
	c.SetComponent(ref)
	if err := s.edges.CreateTx(tx, c); err != nil {
		return nil, dbErr("insert composition", err)
	}
	return c, nil
}

func (s *compositionService) CreateComposition(ctx context.Context, in dto.CreateCompositionInput) (c *model.Composition, err error) {
	ctx, span := startSpan(ctx, "CreateComposition",
		attribute.Int64("assembly.id", int64(in.AssemblyID)), attribute.String("component", in.Component.String()))
	defer func() { endSpan(span, err) }()

	var affected []uint
	err = runTx(ctx, s.edges.DB(), "create composition", func(tx *gorm.DB) error {
		created, err := s.AddEdgeTx(tx, in.AssemblyID, dto.ComponentSpec{
			Component: in.Component,
			Quantity:  in.Quantity,
			Notes:     in.Notes,
			SortOrder: in.SortOrder,
		})
		if err != nil {
			return err
		}
		c = created
		affected, err = s.AffectedAssembliesTx(tx, model.FinishedGoodRef(in.AssemblyID))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateHierarchy(ctx, affected)
	log.Info().Uint("assembly_id", in.AssemblyID).Str("component", in.Component.String()).
		Str("op", "create_composition").Msg("composition created")
	return c, nil
}

func (s *compositionService) UpdateCompositionQuantity(ctx context.Context, id uint, qty decimal.Decimal) (*model.Composition, error) {
	var c *model.Composition
	var affected []uint
	err := runTx(ctx, s.edges.DB(), "update composition quantity", func(tx *gorm.DB) error {
		found, err := s.edges.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr("composition", id, err)
		}
		if err := validateQuantity(found.Component().Type(), qty); err != nil {
			return err
		}
		if err := s.edges.UpdateQuantityTx(tx, id, qty); err != nil {
			return dbErr("update composition quantity", err)
		}
		found.ComponentQuantity = qty
		c = found
		affected, err = s.AffectedAssembliesTx(tx, model.FinishedGoodRef(found.AssemblyID))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateHierarchy(ctx, affected)
	return c, nil
}

func (s *compositionService) RemoveComposition(ctx context.Context, id uint) error {
	var affected []uint
	err := runTx(ctx, s.edges.DB(), "remove composition", func(tx *gorm.DB) error {
		found, err := s.edges.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr("composition", id, err)
		}
		affected, err = s.AffectedAssembliesTx(tx, model.FinishedGoodRef(found.AssemblyID))
		if err != nil {
			return err
		}
		return dbErr("delete composition", s.edges.DeleteTx(tx, id))
	})
	if err != nil {
		return err
	}
	s.InvalidateHierarchy(ctx, affected)
	log.Info().Uint("composition_id", id).Str("op", "remove_composition").Msg("composition removed")
	return nil
}

// ── Traversal ────────────────────────────────────────────────────────────────

func clampDepth(d int) int {
	if d <= 0 || d > MaxHierarchyDepth {
		return MaxHierarchyDepth
	}
	return d
}

func (s *compositionService) GetHierarchy(ctx context.Context, rootID uint, maxDepth int) (root *dto.HierarchyNode, err error) {
	depth := clampDepth(maxDepth)
	ctx, span := startSpan(ctx, "GetHierarchy",
		attribute.Int64("assembly.id", int64(rootID)), attribute.Int("depth", depth))
	defer func() { endSpan(span, err) }()

	key := hierarchyKey(rootID, depth)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached dto.HierarchyNode
			if json.Unmarshal(raw, &cached) == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return &cached, nil
			}
		}
	}

	tx := s.read(ctx)
	fg, err := s.goods.FindByIDTx(tx, rootID)
	if err != nil {
		return nil, lookupErr("finished good", rootID, err)
	}
	root = &dto.HierarchyNode{
		ComponentType: model.ComponentFinishedGood,
		ComponentID:   fg.ID,
		DisplayName:   fg.DisplayName,
		Slug:          fg.Slug,
		AssemblyType:  fg.AssemblyType,
		Quantity:      decimal.NewFromInt(1),
		Level:         0,
	}
	root.Subcomponents, err = s.expandTx(tx, rootID, 1, depth, map[uint]bool{rootID: true})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(root); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return root, nil
}

// expandTx builds the component nodes of assemblyID at the given level.
// An assembly component is expanded while level < maxDepth, otherwise it is
// returned with DepthLimitReached set. path holds the assemblies on the
// current branch and turns a stray cycle into an error instead of recursion.
func (s *compositionService) expandTx(tx *gorm.DB, assemblyID uint, level, maxDepth int, path map[uint]bool) ([]dto.HierarchyNode, error) {
	edges, err := s.edges.ListByAssemblyTx(tx, assemblyID)
	if err != nil {
		return nil, dbErr("load components", err)
	}
	nodes := make([]dto.HierarchyNode, 0, len(edges))
	for _, e := range edges {
		ref := e.Component()
		edgeID := e.ID
		n := dto.HierarchyNode{
			CompositionID: &edgeID,
			ComponentType: ref.Type(),
			ComponentID:   ref.ID(),
			DisplayName:   e.DisplayName(),
			Quantity:      e.ComponentQuantity,
			SortOrder:     e.SortOrder,
			Level:         level,
			Subcomponents: []dto.HierarchyNode{},
		}
		switch {
		case e.FinishedUnit != nil:
			cost := e.FinishedUnit.UnitCost
			n.Slug, n.UnitCost = e.FinishedUnit.Slug, &cost
		case e.MaterialUnit != nil:
			cost := e.MaterialUnit.UnitCost
			n.Slug, n.UnitCost = e.MaterialUnit.Slug, &cost
		case e.FinishedGood != nil:
			n.Slug, n.AssemblyType = e.FinishedGood.Slug, e.FinishedGood.AssemblyType
		}

		if ref.Type() == model.ComponentFinishedGood {
			switch {
			case level >= maxDepth:
				n.DepthLimitReached = true
			case path[ref.ID()]:
				return nil, &CircularReferenceError{ParentID: assemblyID, ChildID: ref.ID()}
			default:
				path[ref.ID()] = true
				subs, err := s.expandTx(tx, ref.ID(), level+1, maxDepth, path)
				delete(path, ref.ID())
				if err != nil {
					return nil, err
				}
				n.Subcomponents = subs
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ── Flattening ───────────────────────────────────────────────────────────────

type flattenItem struct {
	assemblyID uint
	multiplier decimal.Decimal
	path       []uint // assemblies on this branch, root first
}

func onPath(path []uint, id uint) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

func (s *compositionService) Flatten(ctx context.Context, rootID uint) (out []dto.FlattenedComponent, err error) {
	ctx, span := startSpan(ctx, "Flatten", attribute.Int64("assembly.id", int64(rootID)))
	defer func() {
		span.SetAttributes(attribute.Int("leaf.count", len(out)))
		endSpan(span, err)
	}()
	return s.FlattenTx(ctx, s.read(ctx), rootID)
}

// FlattenTx expands the tree breadth-first, multiplying edge quantities down
// each branch and summing leaf totals across branches. A sub-assembly reached
// through two sibling branches is expanded once per branch; one that shows
// up again inside its own branch is a cycle.
func (s *compositionService) FlattenTx(ctx context.Context, tx *gorm.DB, rootID uint) ([]dto.FlattenedComponent, error) {
	if _, err := s.goods.FindByIDTx(tx, rootID); err != nil {
		return nil, lookupErr("finished good", rootID, err)
	}

	totals := make(map[model.ComponentRef]*dto.FlattenedComponent)
	queue := []flattenItem{{assemblyID: rootID, multiplier: decimal.NewFromInt(1), path: []uint{rootID}}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		edges, err := s.edges.ListByAssemblyTx(tx, item.assemblyID)
		if err != nil {
			return nil, dbErr("load components", err)
		}
		for _, e := range edges {
			ref := e.Component()
			qty := e.ComponentQuantity.Mul(item.multiplier)
			if ref.IsLeaf() {
				entry, ok := totals[ref]
				if !ok {
					entry = &dto.FlattenedComponent{
						ComponentType: ref.Type(),
						ComponentID:   ref.ID(),
						DisplayName:   e.DisplayName(),
						TotalQuantity: decimal.Zero,
					}
					if e.FinishedUnit != nil {
						entry.Slug = e.FinishedUnit.Slug
					} else if e.MaterialUnit != nil {
						entry.Slug = e.MaterialUnit.Slug
					}
					totals[ref] = entry
				}
				entry.TotalQuantity = entry.TotalQuantity.Add(qty)
				continue
			}
			if onPath(item.path, ref.ID()) {
				return nil, &CircularReferenceError{ParentID: item.assemblyID, ChildID: ref.ID()}
			}
			path := make([]uint, len(item.path), len(item.path)+1)
			copy(path, item.path)
			queue = append(queue, flattenItem{assemblyID: ref.ID(), multiplier: qty, path: append(path, ref.ID())})
		}
	}

	out := make([]dto.FlattenedComponent, 0, len(totals))
	for ref, entry := range totals {
		cost, err := s.inventory.UnitCost(ctx, tx, ref)
		if err != nil {
			return nil, err
		}
		entry.UnitCost = cost
		entry.TotalCost = entry.TotalQuantity.Mul(cost)
		out = append(out, *entry)
	}
	sortFlattened(out)
	return out, nil
}

// sortFlattened orders finished units before material units, then by name and id.
func sortFlattened(out []dto.FlattenedComponent) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ComponentType != b.ComponentType {
			return a.ComponentType == model.ComponentFinishedUnit
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ComponentID < b.ComponentID
	})
}

// ── Cost aggregation ─────────────────────────────────────────────────────────

func (s *compositionService) CalculateComponentCosts(ctx context.Context, assemblyID uint) (out *dto.CostBreakdown, err error) {
	ctx, span := startSpan(ctx, "CalculateComponentCosts", attribute.Int64("assembly.id", int64(assemblyID)))
	defer func() { endSpan(span, err) }()

	tx := s.read(ctx)
	if _, err := s.goods.FindByIDTx(tx, assemblyID); err != nil {
		return nil, lookupErr("finished good", assemblyID, err)
	}
	memo := make(map[uint]decimal.Decimal)
	return s.breakdownTx(ctx, tx, assemblyID, memo, map[uint]bool{assemblyID: true})
}

// breakdownTx prices the direct edges of assemblyID. Sub-assembly totals are
// memoised for the duration of one call only, so unit cost changes between
// calls are always picked up.
func (s *compositionService) breakdownTx(ctx context.Context, tx *gorm.DB, assemblyID uint, memo map[uint]decimal.Decimal, path map[uint]bool) (*dto.CostBreakdown, error) {
	edges, err := s.edges.ListByAssemblyTx(tx, assemblyID)
	if err != nil {
		return nil, dbErr("load components", err)
	}
	b := &dto.CostBreakdown{
		AssemblyID:        assemblyID,
		FinishedUnitCosts: []dto.CostLineItem{},
		MaterialUnitCosts: []dto.CostLineItem{},
		FinishedGoodCosts: []dto.CostLineItem{},
		TotalLeafCost:     decimal.Zero,
		TotalSubassembly:  decimal.Zero,
	}
	for _, e := range edges {
		ref := e.Component()
		line := dto.CostLineItem{
			CompositionID: e.ID,
			ComponentType: ref.Type(),
			ComponentID:   ref.ID(),
			DisplayName:   e.DisplayName(),
			Quantity:      e.ComponentQuantity,
		}
		if ref.IsLeaf() {
			line.UnitCost, err = s.inventory.UnitCost(ctx, tx, ref)
			if err != nil {
				return nil, err
			}
		} else {
			line.UnitCost, err = s.assemblyCostTx(ctx, tx, ref.ID(), memo, path)
			if err != nil {
				return nil, err
			}
		}
		line.TotalCost = line.Quantity.Mul(line.UnitCost)

		switch ref.Type() {
		case model.ComponentFinishedUnit:
			b.FinishedUnitCosts = append(b.FinishedUnitCosts, line)
			b.TotalLeafCost = b.TotalLeafCost.Add(line.TotalCost)
		case model.ComponentMaterialUnit:
			b.MaterialUnitCosts = append(b.MaterialUnitCosts, line)
			b.TotalLeafCost = b.TotalLeafCost.Add(line.TotalCost)
		case model.ComponentFinishedGood:
			b.FinishedGoodCosts = append(b.FinishedGoodCosts, line)
			b.TotalSubassembly = b.TotalSubassembly.Add(line.TotalCost)
		}
	}
	b.TotalAssemblyCost = b.TotalLeafCost.Add(b.TotalSubassembly)
	return b, nil
}

func (s *compositionService) assemblyCostTx(ctx context.Context, tx *gorm.DB, id uint, memo map[uint]decimal.Decimal, path map[uint]bool) (decimal.Decimal, error) {
	if cost, ok := memo[id]; ok {
		return cost, nil
	}
	if path[id] {
		return decimal.Zero, &CircularReferenceError{ParentID: id, ChildID: id}
	}
	path[id] = true
	b, err := s.breakdownTx(ctx, tx, id, memo, path)
	delete(path, id)
	if err != nil {
		return decimal.Zero, err
	}
	memo[id] = b.TotalAssemblyCost
	return b.TotalAssemblyCost, nil
}

// ── Inventory requirements ───────────────────────────────────────────────────

func (s *compositionService) CalculateRequiredInventory(ctx context.Context, assemblyID uint, quantity int) (out *dto.InventoryRequirements, err error) {
	ctx, span := startSpan(ctx, "CalculateRequiredInventory",
		attribute.Int64("assembly.id", int64(assemblyID)), attribute.Int("quantity", quantity))
	defer func() { endSpan(span, err) }()
	return s.CalculateRequiredInventoryTx(ctx, s.read(ctx), assemblyID, quantity)
}

// CalculateRequiredInventoryTx scales the flattened BOM by quantity and
// compares each leaf with its on-hand count.
func (s *compositionService) CalculateRequiredInventoryTx(ctx context.Context, tx *gorm.DB, assemblyID uint, quantity int) (*dto.InventoryRequirements, error) {
	if quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	flat, err := s.FlattenTx(ctx, tx, assemblyID)
	if err != nil {
		return nil, err
	}

	req := &dto.InventoryRequirements{
		AssemblyID:               assemblyID,
		Quantity:                 quantity,
		AvailabilityStatus:       dto.StatusAvailable,
		FinishedUnitRequirements: []dto.LeafRequirement{},
		MaterialUnitRequirements: []dto.LeafRequirement{},
	}
	multiplier := decimal.NewFromInt(int64(quantity))
	for _, leaf := range flat {
		ref, err := model.NewComponentRef(leaf.ComponentType, leaf.ComponentID)
		if err != nil {
			return nil, err
		}
		available, err := s.inventory.OnHand(ctx, tx, ref)
		if err != nil {
			return nil, err
		}
		required := leaf.TotalQuantity.Mul(multiplier)
		shortage := required.Sub(available)
		if shortage.IsNegative() {
			shortage = decimal.Zero
		}
		if shortage.IsPositive() {
			req.AvailabilityStatus = dto.StatusInsufficient
		}
		line := dto.LeafRequirement{
			ComponentType: leaf.ComponentType,
			ComponentID:   leaf.ComponentID,
			DisplayName:   leaf.DisplayName,
			Required:      required,
			Available:     available,
			Shortage:      shortage,
		}
		if leaf.ComponentType == model.ComponentFinishedUnit {
			req.FinishedUnitRequirements = append(req.FinishedUnitRequirements, line)
		} else {
			req.MaterialUnitRequirements = append(req.MaterialUnitRequirements, line)
		}
	}
	return req, nil
}

// ── Cache invalidation ───────────────────────────────────────────────────────

func (s *compositionService) AffectedAssembliesTx(tx *gorm.DB, refs ...model.ComponentRef) ([]uint, error) {
	seen := make(map[uint]bool)
	var queue []uint
	push := func(id uint) {
		if !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}
	for _, ref := range refs {
		if ref.Type() == model.ComponentFinishedGood {
			push(ref.ID())
			continue
		}
		parents, err := s.edges.ParentAssemblyIDsTx(tx, ref)
		if err != nil {
			return nil, dbErr("find parent assemblies", err)
		}
		for _, p := range parents {
			push(p)
		}
	}
	for i := 0; i < len(queue); i++ {
		parents, err := s.edges.ParentAssemblyIDsTx(tx, model.FinishedGoodRef(queue[i]))
		if err != nil {
			return nil, dbErr("find parent assemblies", err)
		}
		for _, p := range parents {
			push(p)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
	return queue, nil
}

func (s *compositionService) InvalidateHierarchy(ctx context.Context, assemblyIDs []uint) {
	if s.cache == nil || len(assemblyIDs) == 0 {
		return
	}
	s.cache.Delete(ctx, hierarchyKeys(assemblyIDs)...)
	log.Debug().Int("assemblies", len(assemblyIDs)).Msg("hierarchy cache invalidated")
}
