package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// ShiftTypeHandler 班次定义模块 HTTP 处理器
type ShiftTypeHandler struct {
	shiftTypeSvc service.ShiftTypeService
}

// NewShiftTypeHandler 创建 ShiftTypeHandler
func NewShiftTypeHandler(shiftTypeSvc service.ShiftTypeService) *ShiftTypeHandler {
	return &ShiftTypeHandler{shiftTypeSvc: shiftTypeSvc}
}

// ListShiftTypes 获取班次列表
// GET /api/v1/shift-types?workplace_id=xxx&only_used=true
func (h *ShiftTypeHandler) ListShiftTypes(c *gin.Context) {
	var req dto.ShiftTypeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.shiftTypeSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetShiftType 获取班次详情
// GET /api/v1/shift-types/:id
func (h *ShiftTypeHandler) GetShiftType(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	st, err := h.shiftTypeSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, st)
}

// CreateShiftType 创建班次
// POST /api/v1/shift-types
func (h *ShiftTypeHandler) CreateShiftType(c *gin.Context) {
	var req dto.CreateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	st, err := h.shiftTypeSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.Created(c, st)
}

// UpdateShiftType 更新班次（乐观锁）
// PUT /api/v1/shift-types/:id
func (h *ShiftTypeHandler) UpdateShiftType(c *gin.Context) {
	var req dto.UpdateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	st, err := h.shiftTypeSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, st)
}

// DeleteShiftType 删除班次
// DELETE /api/v1/shift-types/:id
func (h *ShiftTypeHandler) DeleteShiftType(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.shiftTypeSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleShiftTypeError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleShiftTypeError 统一处理班次模块业务错误
func (h *ShiftTypeHandler) handleShiftTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftTypeConflict):
		response.Conflict(c, 14002, "班次已被其他操作修改，请刷新后重试", "")
	case errors.Is(err, roster.ErrInvalidShiftHours):
		response.BadRequest(c, 14003, "班次开始时间必须早于结束时间")
	case errors.Is(err, roster.ErrInvalidClock):
		response.BadRequest(c, 14004, "时间格式无效，应为 HH:MM")
	case errors.Is(err, roster.ErrInvalidWeekday):
		response.BadRequest(c, 14005, "星期取值必须在 1-7 之间")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
