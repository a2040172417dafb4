package handler

import (
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// CompositionsHandler exposes single edges by id. Unlike the assembly
// component routes it does not apply per-type component counts.
type CompositionsHandler struct{ engine service.CompositionService }

func NewCompositionsHandler(engine service.CompositionService) *CompositionsHandler {
	return &CompositionsHandler{engine: engine}
}

func (h *CompositionsHandler) Create(c *gin.Context) {
	var req dto.CreateCompositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	spec, err := componentSpec(req.ComponentRequest)
	if err != nil {
		fail(c, err)
		return
	}
	created, err := h.engine.CreateComposition(c.Request.Context(), dto.CreateCompositionInput{
		AssemblyID: req.AssemblyID,
		Component:  spec.Component,
		Quantity:   spec.Quantity,
		Notes:      spec.Notes,
		SortOrder:  spec.SortOrder,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCompositionResponse(created))
}

func (h *CompositionsHandler) UpdateQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	updated, err := h.engine.UpdateCompositionQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompositionResponse(updated))
}

func (h *CompositionsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.engine.RemoveComposition(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CycleCheck answers whether child could be added under parent.
func (h *CompositionsHandler) CycleCheck(c *gin.Context) {
	var req dto.CycleCheckRequest
	if !bindAndValidate(c, &req) {
		return
	}
	safe, err := h.engine.ValidateNoCircularReference(c.Request.Context(), req.ParentID, req.ChildID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CycleCheckResponse{ParentID: req.ParentID, ChildID: req.ChildID, Safe: safe})
}
