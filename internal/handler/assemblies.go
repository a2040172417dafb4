package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/apierror"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/infra"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type AssembliesHandler struct {
	svc    service.AssemblyService
	engine service.CompositionService
}

func NewAssembliesHandler(svc service.AssemblyService, engine service.CompositionService) *AssembliesHandler {
	return &AssembliesHandler{svc: svc, engine: engine}
}

func (h *AssembliesHandler) Create(c *gin.Context) {
	var req dto.CreateAssemblyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	in := dto.CreateAssemblyInput{
		DisplayName:           req.DisplayName,
		Description:           req.Description,
		PackagingInstructions: req.PackagingInstructions,
		Notes:                 req.Notes,
	}
	if req.AssemblyType != "" {
		t, err := model.ParseAssemblyType(req.AssemblyType)
		if err != nil {
			fail(c, &service.ValidationError{Field: "assembly_type", Message: err.Error()})
			return
		}
		in.AssemblyType = t
	}
	specs, err := componentSpecs(req.Components)
	if err != nil {
		fail(c, err)
		return
	}
	in.Components = specs

	resp, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AssembliesHandler) List(c *gin.Context) {
	var filter dto.AssemblyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) GetBySlug(c *gin.Context) {
	resp, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAssemblyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	in := dto.UpdateAssemblyInput{
		DisplayName:           req.DisplayName,
		Description:           req.Description,
		PackagingInstructions: req.PackagingInstructions,
		Notes:                 req.Notes,
	}
	if req.AssemblyType != nil {
		t, err := model.ParseAssemblyType(*req.AssemblyType)
		if err != nil {
			fail(c, &service.ValidationError{Field: "assembly_type", Message: err.Error()})
			return
		}
		in.AssemblyType = &t
	}
	specs, err := componentSpecs(req.Components)
	if err != nil {
		fail(c, err)
		return
	}
	in.Components = specs

	resp, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Components ───────────────────────────────────────────────────────────────

func (h *AssembliesHandler) AddComponent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ComponentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	spec, err := componentSpec(req)
	if err != nil {
		fail(c, err)
		return
	}
	resp, err := h.svc.AddComponent(c.Request.Context(), id, spec)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AssembliesHandler) RemoveComponent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ref, ok := componentRefParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.RemoveComponent(c.Request.Context(), id, ref)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) UpdateComponentQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ref, ok := componentRefParam(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateComponentQuantity(c.Request.Context(), id, ref, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Graph reads ──────────────────────────────────────────────────────────────

func (h *AssembliesHandler) Hierarchy(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	depth, ok := queryInt(c, "max_depth", service.MaxHierarchyDepth)
	if !ok {
		return
	}
	resp, err := h.engine.GetHierarchy(c.Request.Context(), id, depth)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Flatten(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.engine.Flatten(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assembly_id": id, "components": resp})
}

func (h *AssembliesHandler) Costs(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.engine.CalculateComponentCosts(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Requirements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qty, ok := queryInt(c, "quantity", 1)
	if !ok {
		return
	}
	resp, err := h.engine.CalculateRequiredInventory(c.Request.Context(), id, qty)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Availability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qty, ok := queryInt(c, "quantity", 1)
	if !ok {
		return
	}
	resp, err := h.svc.CheckAvailability(c.Request.Context(), id, qty)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Production ───────────────────────────────────────────────────────────────

func (h *AssembliesHandler) Produce(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ProduceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Produce(c.Request.Context(), id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssembliesHandler) Disassemble(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ProduceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Disassemble(c.Request.Context(), id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BOMSheet streams the production sheet PDF.
func (h *AssembliesHandler) BOMSheet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qty, ok := queryInt(c, "quantity", 1)
	if !ok {
		return
	}
	sheet, err := h.svc.BOMSheet(c.Request.Context(), id, qty)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteBOMSheet(&buf, sheet); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", sheet.Assembly.Slug+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
