package handler

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/kentonium3/bake-tracker-sub002/internal/apierror"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// fail hands err to middleware.ErrorHandler, which picks the status.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return 0, false
	}
	return uint(n), true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameter "+name))
		return 0, false
	}
	return n, true
}

// componentRefParam reads /:type/:component_id path segments.
func componentRefParam(c *gin.Context) (model.ComponentRef, bool) {
	id, ok := paramID(c, "component_id")
	if !ok {
		return model.ComponentRef{}, false
	}
	t, err := model.ParseComponentType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return model.ComponentRef{}, false
	}
	ref, err := model.NewComponentRef(t, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return model.ComponentRef{}, false
	}
	return ref, true
}

// componentSpec collapses a request entry into a typed spec. It accepts the
// component_type/component_id/quantity keys or the older per-type id keys,
// but not a mix of both.
func componentSpec(req dto.ComponentRequest) (dto.ComponentSpec, error) {
	var ref model.ComponentRef
	legacy := 0
	for _, set := range []*uint{req.FinishedUnitID, req.MaterialUnitID, req.FinishedGoodID} {
		if set != nil {
			legacy++
		}
	}

	switch {
	case req.ComponentType != "" && legacy > 0:
		return dto.ComponentSpec{}, &service.ValidationError{Field: "component", Message: "use either component_type/component_id or a *_id key, not both"}
	case req.ComponentType != "":
		t, err := model.ParseComponentType(req.ComponentType)
		if err != nil {
			return dto.ComponentSpec{}, &service.ValidationError{Field: "component_type", Message: err.Error()}
		}
		if ref, err = model.NewComponentRef(t, req.ComponentID); err != nil {
			return dto.ComponentSpec{}, &service.ValidationError{Field: "component_id", Message: err.Error()}
		}
	case legacy == 1:
		switch {
		case req.FinishedUnitID != nil:
			ref = model.FinishedUnitRef(*req.FinishedUnitID)
		case req.MaterialUnitID != nil:
			ref = model.MaterialUnitRef(*req.MaterialUnitID)
		default:
			ref = model.FinishedGoodRef(*req.FinishedGoodID)
		}
		if ref.IsZero() {
			return dto.ComponentSpec{}, &service.ValidationError{Field: "component", Message: "component id must be positive"}
		}
	default:
		return dto.ComponentSpec{}, &service.ValidationError{Field: "component", Message: "exactly one component reference is required"}
	}

	qty := decimal.NewFromInt(1)
	switch {
	case req.Quantity != nil && req.ComponentQuantity != nil && !req.Quantity.Equal(*req.ComponentQuantity):
		return dto.ComponentSpec{}, &service.ValidationError{Field: "quantity", Message: "quantity and component_quantity disagree"}
	case req.Quantity != nil:
		qty = *req.Quantity
	case req.ComponentQuantity != nil:
		qty = *req.ComponentQuantity
	}
	return dto.ComponentSpec{Component: ref, Quantity: qty, Notes: req.Notes, SortOrder: req.SortOrder}, nil
}

func componentSpecs(reqs []dto.ComponentRequest) ([]dto.ComponentSpec, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]dto.ComponentSpec, 0, len(reqs))
	for i, r := range reqs {
		spec, err := componentSpec(r)
		if err != nil {
			if ve, ok := err.(*service.ValidationError); ok {
				ve.Message = "entry " + strconv.Itoa(i) + ": " + ve.Message
			}
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}
