package handler

import (
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	Maintenance *service.MaintenanceService
}

func NewMaintenanceHandler(s *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{Maintenance: s}
}

func (h *MaintenanceHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Maintenance.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list maintenance", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *MaintenanceHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.MaintenanceInput
	if !bind(c, &req) {
		return
	}
	m, err := h.Maintenance.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create maintenance", err)
		return
	}
	util.Created(c, util.Response{"request": m})
}

type maintenanceStatusReq struct {
	Status models.MaintenanceStatus `json:"status" binding:"required"`
}

func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req maintenanceStatusReq
	if !bind(c, &req) {
		return
	}
	m, err := h.Maintenance.UpdateStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		util.Fail(c, "update maintenance status", err)
		return
	}
	util.Success(c, util.Response{"request": m})
}
