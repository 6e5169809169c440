package handler

import (
	"fmt"
	"io"
	"time"

	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// ExportHandler streams the landlord's ledger as CSV or XLSX.
type ExportHandler struct {
	Exports *service.ExportService
}

func NewExportHandler(s *service.ExportService) *ExportHandler {
	return &ExportHandler{Exports: s}
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv; charset=utf-8", service.WriteCSV)
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", service.WriteXLSX)
}

func (h *ExportHandler) export(c *gin.Context, ext, contentType string, write func(w io.Writer, rows []service.LedgerRow) error) {
	a, ok := actor(c)
	if !ok {
		return
	}
	rows, err := h.Exports.Ledger(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "export ledger", err)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.%s\"",
		time.Now().Format("20060102"), ext))
	if err := write(c.Writer, rows); err != nil {
		// headers are already out; the truncated body is all we can signal
		_ = c.Error(err)
	}
}
