package handler

import (
	"net/http"

	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves payments. Tenants pay against their own active
// lease; a tenantId in the body is ignored.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(s *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: s}
}

func (h *PaymentHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Payments.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list payments", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := h.Payments.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "get payment", err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

func (h *PaymentHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.PaymentInput
	if !bind(c, &req) {
		return
	}
	p, err := h.Payments.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create payment", err)
		return
	}
	util.Created(c, util.Response{"payment": p})
}

func (h *PaymentHandler) Receipt(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	body, err := h.Payments.Receipt(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "render receipt", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
