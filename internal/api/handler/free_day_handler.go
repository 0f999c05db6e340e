package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// FreeDayHandler 公休日模块 HTTP 处理器
type FreeDayHandler struct {
	freeDaySvc service.FreeDayService
	// fetchICS 按 URL 拉取日历，测试中可替换
	fetchICS func(rawURL string) (io.ReadCloser, error)
}

// NewFreeDayHandler 创建 FreeDayHandler
func NewFreeDayHandler(freeDaySvc service.FreeDayService) *FreeDayHandler {
	return &FreeDayHandler{freeDaySvc: freeDaySvc, fetchICS: service.FetchICSContent}
}

// ListFreeDays 公休日列表
// GET /api/v1/free-days?from=2024-01-01&to=2024-12-31
func (h *FreeDayHandler) ListFreeDays(c *gin.Context) {
	var req dto.FreeDayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.freeDaySvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleFreeDayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateFreeDay 登记公休日
// POST /api/v1/free-days
func (h *FreeDayHandler) CreateFreeDay(c *gin.Context) {
	var req dto.CreateFreeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	fd, err := h.freeDaySvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleFreeDayError(c, err)
		return
	}

	response.Created(c, fd)
}

// UpdateFreeDay 更新公休日
// PUT /api/v1/free-days/:id
func (h *FreeDayHandler) UpdateFreeDay(c *gin.Context) {
	var req dto.UpdateFreeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	fd, err := h.freeDaySvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleFreeDayError(c, err)
		return
	}

	response.OK(c, fd)
}

// DeleteFreeDay 删除公休日
// DELETE /api/v1/free-days/:id
func (h *FreeDayHandler) DeleteFreeDay(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.freeDaySvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleFreeDayError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportFreeDays 从 ICS 导入公休日
// POST /api/v1/free-days/import （multipart file 或 ?url=）
func (h *FreeDayHandler) ImportFreeDays(c *gin.Context) {
	var req dto.ImportFreeDaysRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var reader io.ReadCloser
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, 10001, "无法读取上传文件")
			return
		}
		reader = f
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(c, 10001, "上传文件无效")
		return
	} else if req.URL != "" {
		rc, err := h.fetchICS(req.URL)
		if err != nil {
			response.BadRequest(c, 18004, "获取 ICS 失败")
			return
		}
		reader = rc
	} else {
		response.BadRequest(c, 10001, "请上传 ICS 文件或提供 url")
		return
	}
	defer reader.Close()

	result, err := h.freeDaySvc.ImportICS(c.Request.Context(), caller, reader, &req)
	if err != nil {
		h.handleFreeDayError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *FreeDayHandler) handleFreeDayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFreeDayNotFound):
		response.NotFound(c, 18001, "公休日不存在")
	case errors.Is(err, service.ErrFreeDayExists):
		response.Conflict(c, 18002, "该日期已登记为公休日", "")
	case errors.Is(err, service.ErrFreeDayICSEmpty):
		response.BadRequest(c, 18003, "ICS 中没有可导入的日期")
	case errors.Is(err, service.ErrFreeDayICSInvalid):
		response.BadRequest(c, 18004, "ICS 格式解析失败")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
