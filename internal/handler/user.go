package handler

import (
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Admin *service.AdminService
}

func NewUserHandler(s *service.AdminService) *UserHandler {
	return &UserHandler{Admin: s}
}

// ListUsers supports ?role, ?q (username substring), ?page and ?pageSize.
func (h *UserHandler) ListUsers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page := service.Page{Page: queryInt(c, "page", 1), Size: queryInt(c, "pageSize", 20)}
	filter := service.UserFilter{Role: models.Role(c.Query("role")), Q: c.Query("q")}
	users, total, err := h.Admin.ListUsers(c.Request.Context(), a, filter, page)
	if err != nil {
		util.Fail(c, "list users", err)
		return
	}
	util.Success(c, util.Response{
		"items": users,
		"total": total,
		"page":  page.Page,
	})
}
