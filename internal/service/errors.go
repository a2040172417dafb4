package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors. Every typed error below matches exactly one of these
// through errors.Is, so callers can branch without type assertions.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrCircularReference     = errors.New("circular reference")
	ErrReferencedEntity      = errors.New("entity is still referenced")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrDatabase              = errors.New("database error")
)

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %v not found", e.Entity, e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports malformed input. Field may be empty.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CircularReferenceError is raised when an edge parent→child would close a
// cycle, including the degenerate parent == child case.
type CircularReferenceError struct {
	ParentID uint
	ChildID  uint
}

func (e *CircularReferenceError) Error() string {
	if e.ParentID == e.ChildID {
		return fmt.Sprintf("assembly %d cannot contain itself", e.ParentID)
	}
	return fmt.Sprintf("adding assembly %d to assembly %d would create a circular reference", e.ChildID, e.ParentID)
}
func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// ReferencedEntityError blocks a delete. Assemblies holds at most three
// parent names; AssemblyCount is the full number of referencing parents.
type ReferencedEntityError struct {
	Entity        string
	ID            uint
	Assemblies    []string
	AssemblyCount int
	Events        []string
}

func (e *ReferencedEntityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot delete %s %d", e.Entity, e.ID)
	if e.AssemblyCount > 0 {
		fmt.Fprintf(&b, ": used as a component in %s", strings.Join(e.Assemblies, ", "))
		if extra := e.AssemblyCount - len(e.Assemblies); extra > 0 {
			fmt.Fprintf(&b, " and %d more", extra)
		}
		fmt.Fprintf(&b, " (%d assemblies)", e.AssemblyCount)
	}
	if len(e.Events) > 0 {
		fmt.Fprintf(&b, ": planned in events %s", strings.Join(e.Events, ", "))
	}
	return b.String()
}
func (e *ReferencedEntityError) Is(target error) bool { return target == ErrReferencedEntity }

// InsufficientInventoryError reports a stock change that would go negative.
type InsufficientInventoryError struct {
	Component model.ComponentRef
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	name := e.Name
	if name == "" {
		name = e.Component.String()
	}
	return fmt.Sprintf("insufficient inventory for %s: required %s, available %s",
		name, e.Required.String(), e.Available.String())
}
func (e *InsufficientInventoryError) Is(target error) bool { return target == ErrInsufficientInventory }

// DatabaseError wraps a storage failure with the step that failed.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string        { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *DatabaseError) Unwrap() error        { return e.Err }
func (e *DatabaseError) Is(target error) bool { return target == ErrDatabase }

func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrCircularReference) ||
		errors.Is(err, ErrReferencedEntity) ||
		errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrDatabase)
}

// dbErr passes domain errors through and wraps anything else as a DatabaseError.
func dbErr(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}

// lookupErr maps gorm.ErrRecordNotFound to a NotFoundError for entity/id.
func lookupErr(entity string, id interface{}, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return dbErr("load "+entity, err)
}
