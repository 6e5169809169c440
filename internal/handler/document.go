package handler

import (
	"fmt"
	"net/http"

	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	Documents *service.DocumentService
}

func NewDocumentHandler(s *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Documents: s}
}

func (h *DocumentHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.Documents.List(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list documents", err)
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *DocumentHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.DocumentInput
	if !bind(c, &req) {
		return
	}
	d, err := h.Documents.Create(c.Request.Context(), a, req)
	if err != nil {
		util.Fail(c, "create document", err)
		return
	}
	util.Created(c, util.Response{"document": d})
}

func (h *DocumentHandler) Download(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	name, body, err := h.Documents.Download(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "download document", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
