package model

import (
	"fmt"
	"strings"
)

// ComponentType discriminates what a Composition edge points at.
type ComponentType string

const (
	ComponentFinishedUnit ComponentType = "finished_unit"
	ComponentMaterialUnit ComponentType = "material_unit"
	ComponentFinishedGood ComponentType = "finished_good"
)

// ParseComponentType accepts the canonical names (case-insensitive).
func ParseComponentType(s string) (ComponentType, error) {
	switch ComponentType(strings.ToLower(strings.TrimSpace(s))) {
	case ComponentFinishedUnit:
		return ComponentFinishedUnit, nil
	case ComponentMaterialUnit:
		return ComponentMaterialUnit, nil
	case ComponentFinishedGood:
		return ComponentFinishedGood, nil
	}
	return "", fmt.Errorf("unknown component type %q", s)
}

// IsLeaf reports whether components of this type can never contain others.
func (t ComponentType) IsLeaf() bool {
	return t == ComponentFinishedUnit || t == ComponentMaterialUnit
}

// IntegralQuantity reports whether edge quantities for this type must be whole numbers.
func (t ComponentType) IntegralQuantity() bool {
	return t == ComponentFinishedUnit || t == ComponentFinishedGood
}

// ComponentRef identifies exactly one finished unit, material unit or
// finished good. Fields are unexported so a ref can only be obtained from
// the constructors below; the zero value is invalid.
type ComponentRef struct {
	typ ComponentType
	id  uint
}

func FinishedUnitRef(id uint) ComponentRef { return ComponentRef{typ: ComponentFinishedUnit, id: id} }
func MaterialUnitRef(id uint) ComponentRef { return ComponentRef{typ: ComponentMaterialUnit, id: id} }
func FinishedGoodRef(id uint) ComponentRef { return ComponentRef{typ: ComponentFinishedGood, id: id} }

// NewComponentRef builds a ref from loosely typed input.
func NewComponentRef(t ComponentType, id uint) (ComponentRef, error) {
	if id == 0 {
		return ComponentRef{}, fmt.Errorf("component id must be positive")
	}
	switch t {
	case ComponentFinishedUnit:
		return FinishedUnitRef(id), nil
	case ComponentMaterialUnit:
		return MaterialUnitRef(id), nil
	case ComponentFinishedGood:
		return FinishedGoodRef(id), nil
	}
	return ComponentRef{}, fmt.Errorf("unknown component type %q", t)
}

func (r ComponentRef) Type() ComponentType { return r.typ }
func (r ComponentRef) ID() uint            { return r.id }
func (r ComponentRef) IsZero() bool        { return r.typ == "" || r.id == 0 }
func (r ComponentRef) IsLeaf() bool        { return r.typ.IsLeaf() }

func (r ComponentRef) String() string {
	if r.IsZero() {
		return "component:none"
	}
	return fmt.Sprintf("%s:%d", r.typ, r.id)
}

// Column returns the compositions column holding this ref's id.
func (r ComponentRef) Column() string {
	switch r.typ {
	case ComponentFinishedUnit:
		return "finished_unit_id"
	case ComponentMaterialUnit:
		return "material_unit_id"
	case ComponentFinishedGood:
		return "finished_good_id"
	}
	return ""
}
