// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package so that storage
// details never leak.
package apierror

import (
	"errors"
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/service"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`

	// Set for referenced_entity conflicts only.
	Assemblies    []string `json:"assemblies,omitempty"`
	AssemblyCount int      `json:"assembly_count,omitempty"`
	Events        []string `json:"events,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// FromError maps a service error to an HTTP status and a safe envelope.
// Anything that is not a domain error becomes a generic 500.
func FromError(err error) (int, interface{}) {
	var (
		nf  *service.NotFoundError
		ve  *service.ValidationError
		ref *service.ReferencedEntityError
	)
	switch {
	case errors.As(err, &ve):
		if ve.Field != "" {
			return http.StatusUnprocessableEntity, &ValidationError{Detail: ve.Error(), Fields: map[string]string{ve.Field: ve.Message}}
		}
		return http.StatusUnprocessableEntity, &APIError{Detail: ve.Error(), Code: "validation"}
	case errors.As(err, &nf):
		return http.StatusNotFound, &APIError{Detail: nf.Error(), Code: "not_found"}
	case errors.Is(err, service.ErrCircularReference):
		return http.StatusConflict, &APIError{Detail: err.Error(), Code: "circular_reference"}
	case errors.As(err, &ref):
		return http.StatusConflict, &APIError{
			Detail:        ref.Error(),
			Code:          "referenced_entity",
			Assemblies:    ref.Assemblies,
			AssemblyCount: ref.AssemblyCount,
			Events:        ref.Events,
		}
	case errors.Is(err, service.ErrInsufficientInventory):
		return http.StatusConflict, &APIError{Detail: err.Error(), Code: "insufficient_inventory"}
	}
	return http.StatusInternalServerError, &APIError{Detail: "internal server error"}
}
