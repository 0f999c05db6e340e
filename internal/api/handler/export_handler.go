package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

const (
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCalendar = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoster 导出工作场所月度排班表
// GET /api/v1/export/roster?workplace_id=xxx&year=2024&month=3
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	var req dto.ExportRosterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportCalendar 导出员工未来班次日历
// GET /api/v1/export/employees/:id/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportEmployeeCalendar(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, contentTypeCalendar, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoShiftTypes):
		response.NotFound(c, 20001, "该工作场所暂无班次定义")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
