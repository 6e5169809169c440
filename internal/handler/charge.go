package handler

import (
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// ChargeHandler serves the charge lifecycle and its notifications.
type ChargeHandler struct {
	Charges *service.ChargeService
}

func NewChargeHandler(s *service.ChargeService) *ChargeHandler {
	return &ChargeHandler{Charges: s}
}

func (h *ChargeHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Charges.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list charges", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *ChargeHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	ch, err := h.Charges.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "get charge", err)
		return
	}
	util.Success(c, util.Response{"charge": ch})
}

func (h *ChargeHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.ChargeInput
	if !bind(c, &req) {
		return
	}
	ch, err := h.Charges.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create charge", err)
		return
	}
	util.Created(c, util.Response{"charge": ch})
}

func (h *ChargeHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.ChargePatch
	if !bind(c, &req) {
		return
	}
	ch, err := h.Charges.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		util.Fail(c, "update charge", err)
		return
	}
	util.Success(c, util.Response{"charge": ch})
}

func (h *ChargeHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Charges.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		util.Fail(c, "delete charge", err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}

type sendNotificationReq struct {
	Type  models.NotificationKind `json:"type" binding:"required"`
	Force bool                    `json:"force"`
}

func (h *ChargeHandler) SendNotification(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req sendNotificationReq
	if !bind(c, &req) {
		return
	}
	res, err := h.Charges.SendNotification(c.Request.Context(), a, c.Param("id"), req.Type, req.Force)
	if err != nil {
		util.Fail(c, "send notification", err, "charge_id", c.Param("id"), "kind", req.Type)
		return
	}
	util.Success(c, util.Response{
		"charge":    res.Charge,
		"outcome":   res.Outcome,
		"recipient": res.Recipient,
	})
}
