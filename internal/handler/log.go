package handler

import (
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// AuditLogHandler lists the platform audit trail for admins.
type AuditLogHandler struct {
	Admin *service.AdminService
}

func NewAuditLogHandler(s *service.AdminService) *AuditLogHandler {
	return &AuditLogHandler{Admin: s}
}

// ListLogs supports ?page, ?pageSize, ?actorId, ?start and ?end (YYYY-MM-DD).
func (h *AuditLogHandler) ListLogs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page := service.Page{Page: queryInt(c, "page", 1), Size: queryInt(c, "pageSize", 20)}
	filter := service.AuditFilter{
		ActorID: c.Query("actorId"),
		Start:   c.Query("start"),
		End:     c.Query("end"),
	}
	items, total, err := h.Admin.ListAuditLogs(c.Request.Context(), a, filter, page)
	if err != nil {
		util.Fail(c, "list audit logs", err)
		return
	}
	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page.Page,
	})
}
