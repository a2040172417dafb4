package handler

import (
	"net/http"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct{ svc service.EventService }

func NewEventsHandler(svc service.EventService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

func (h *EventsHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EventsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
