package handler

import (
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// PropertyHandler serves the landlord's property portfolio. A landlordId
// in request bodies is never read; ownership comes from the credential.
type PropertyHandler struct {
	Properties *service.PropertyService
}

func NewPropertyHandler(s *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{Properties: s}
}

func (h *PropertyHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Properties.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list properties", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := h.Properties.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "get property", err)
		return
	}
	util.Success(c, util.Response{"property": p})
}

func (h *PropertyHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.PropertyInput
	if !bind(c, &req) {
		return
	}
	p, err := h.Properties.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create property", err)
		return
	}
	util.Created(c, util.Response{"property": p})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.PropertyPatch
	if !bind(c, &req) {
		return
	}
	p, err := h.Properties.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		util.Fail(c, "update property", err)
		return
	}
	util.Success(c, util.Response{"property": p})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Properties.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		util.Fail(c, "delete property", err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}
