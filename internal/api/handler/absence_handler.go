package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// AbsenceHandler 缺勤模块 HTTP 处理器
type AbsenceHandler struct {
	absenceSvc service.AbsenceService
}

// NewAbsenceHandler 创建 AbsenceHandler
func NewAbsenceHandler(absenceSvc service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absenceSvc: absenceSvc}
}

// ListAbsences 缺勤列表（分页）
// GET /api/v1/absences?employee_id=xxx&from=2024-03-01&to=2024-03-31
func (h *AbsenceHandler) ListAbsences(c *gin.Context) {
	var req dto.AbsenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.absenceSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAbsence 缺勤详情
// GET /api/v1/absences/:id
func (h *AbsenceHandler) GetAbsence(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.absenceSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAbsence 登记缺勤
// POST /api/v1/absences
func (h *AbsenceHandler) CreateAbsence(c *gin.Context) {
	var req dto.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.absenceSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateAbsence 更新缺勤
// PUT /api/v1/absences/:id
func (h *AbsenceHandler) UpdateAbsence(c *gin.Context) {
	var req dto.UpdateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.absenceSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, a)
}

// DeleteAbsence 删除缺勤
// DELETE /api/v1/absences/:id
func (h *AbsenceHandler) DeleteAbsence(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.absenceSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleAbsenceError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AbsenceHandler) handleAbsenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAbsenceNotFound):
		response.NotFound(c, 16001, "缺勤记录不存在")
	case errors.Is(err, service.ErrAbsenceInvalidPeriod):
		response.BadRequest(c, 16002, "缺勤开始时间必须早于结束时间")
	case errors.Is(err, service.ErrAbsenceInvalidHours):
		response.BadRequest(c, 16003, "缺勤抵扣工时不能为负数")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
