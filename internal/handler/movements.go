package handler

import (
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/apierror"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type MovementsHandler struct{ svc service.InventoryService }

func NewMovementsHandler(svc service.InventoryService) *MovementsHandler {
	return &MovementsHandler{svc: svc}
}

func (h *MovementsHandler) List(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
