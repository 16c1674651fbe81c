package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ahmednour/giving/internal/repository"
	"github.com/ahmednour/giving/internal/service"
	"github.com/ahmednour/giving/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDonations 导出捐赠台账为 Excel
// GET /api/v1/admin/export/donations
func (h *ExportHandler) ExportDonations(c *gin.Context) {
	filters := &repository.DonationListFilters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}

	buf, filename, err := h.exportSvc.ExportDonations(c.Request.Context(), filters)
	if err != nil {
		if errors.Is(err, service.ErrExportNoDonations) {
			response.NotFound(c, 15001, "没有可导出的捐赠记录")
			return
		}
		response.InternalError(c)
		return
	}

	// 中文文件名需按 RFC 5987 编码
	encoded := url.PathEscape(filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", encoded))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
