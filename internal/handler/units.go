package handler

import (
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/apierror"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type UnitsHandler struct{ svc service.UnitService }

func NewUnitsHandler(svc service.UnitService) *UnitsHandler {
	return &UnitsHandler{svc: svc}
}

func (h *UnitsHandler) CreateFinishedUnit(c *gin.Context) {
	var req dto.CreateFinishedUnitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateFinishedUnit(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UnitsHandler) ListFinishedUnits(c *gin.Context) {
	var filter dto.UnitFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	rows, total, err := h.svc.ListFinishedUnits(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

func (h *UnitsHandler) GetFinishedUnit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetFinishedUnit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UnitsHandler) CreateMaterialUnit(c *gin.Context) {
	var req dto.CreateMaterialUnitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMaterialUnit(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UnitsHandler) ListMaterialUnits(c *gin.Context) {
	var filter dto.UnitFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	rows, total, err := h.svc.ListMaterialUnits(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

func (h *UnitsHandler) GetMaterialUnit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetMaterialUnit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateCost returns a handler bound to one leaf catalog.
func (h *UnitsHandler) UpdateCost(t model.ComponentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req dto.UpdateUnitCostRequest
		if !bindAndValidate(c, &req) {
			return
		}
		ref, _ := model.NewComponentRef(t, id)
		if err := h.svc.UpdateUnitCost(c.Request.Context(), ref, req.UnitCost); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"component_type": t, "component_id": id, "unit_cost": req.UnitCost})
	}
}

func (h *UnitsHandler) Adjust(t model.ComponentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req dto.AdjustInventoryRequest
		if !bindAndValidate(c, &req) {
			return
		}
		ref, _ := model.NewComponentRef(t, id)
		count, err := h.svc.AdjustInventory(c.Request.Context(), ref, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"component_type": t, "component_id": id, "inventory_count": count})
	}
}

func (h *UnitsHandler) RecordProduction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RecordProductionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordProduction(c.Request.Context(), id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
