package handler

import (
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// BackupHandler manages encrypted platform snapshots.
type BackupHandler struct {
	Admin *service.AdminService
}

func NewBackupHandler(s *service.AdminService) *BackupHandler {
	return &BackupHandler{Admin: s}
}

func (h *BackupHandler) CreateBackup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Admin.CreateBackup(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "create backup", err)
		return
	}
	util.Created(c, util.Response{"backup": b})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.Admin.ListBackups(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "list backups", err)
		return
	}
	util.Success(c, util.Response{"items": list})
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	b, err := h.Admin.Backup(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "download backup", err)
		return
	}
	c.FileAttachment(b.FilePath, b.FileName)
}

// VerifyBackup decrypts a backup and reports its per-table row counts.
func (h *BackupHandler) VerifyBackup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	counts, err := h.Admin.ReadBackup(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		util.Fail(c, "verify backup", err)
		return
	}
	util.Success(c, util.Response{"valid": true, "counts": counts})
}

func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Admin.DeleteBackup(c.Request.Context(), a, c.Param("id")); err != nil {
		util.Fail(c, "delete backup", err)
		return
	}
	util.Success(c, util.Response{"deleted": true})
}
