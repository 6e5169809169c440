package handler

import (
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaseHandler struct {
	Leases *service.LeaseService
}

func NewLeaseHandler(s *service.LeaseService) *LeaseHandler {
	return &LeaseHandler{Leases: s}
}

func (h *LeaseHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Leases.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list leases", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *LeaseHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	l, err := h.Leases.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "get lease", err)
		return
	}
	util.Success(c, util.Response{"lease": l})
}

func (h *LeaseHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.LeaseInput
	if !bind(c, &req) {
		return
	}
	l, err := h.Leases.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create lease", err)
		return
	}
	util.Created(c, util.Response{"lease": l})
}

type autopayReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *LeaseHandler) SetAutopay(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req autopayReq
	if !bind(c, &req) {
		return
	}
	l, err := h.Leases.SetAutopay(c.Request.Context(), a, *req.Enabled)
	if err != nil {
		util.Fail(c, "set autopay", err)
		return
	}
	util.Success(c, util.Response{"lease": l})
}

type leaseStatusReq struct {
	Status models.LeaseStatus `json:"status" binding:"required"`
}

func (h *LeaseHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req leaseStatusReq
	if !bind(c, &req) {
		return
	}
	l, err := h.Leases.UpdateStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		util.Fail(c, "update lease status", err)
		return
	}
	util.Success(c, util.Response{"lease": l})
}
