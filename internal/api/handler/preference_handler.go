package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// PreferenceHandler 偏好模块 HTTP 处理器
type PreferenceHandler struct {
	preferenceSvc service.PreferenceService
}

// NewPreferenceHandler 创建 PreferenceHandler
func NewPreferenceHandler(preferenceSvc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceSvc: preferenceSvc}
}

// ListPreferences 员工偏好列表；employee_id 为空时为本人
// GET /api/v1/preferences
func (h *PreferenceHandler) ListPreferences(c *gin.Context) {
	var req dto.PreferenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.preferenceSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreatePreference 登记偏好
// POST /api/v1/preferences
func (h *PreferenceHandler) CreatePreference(c *gin.Context) {
	var req dto.CreatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	p, err := h.preferenceSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.Created(c, p)
}

// UpdatePreference 更新偏好日期
// PUT /api/v1/preferences/:id
func (h *PreferenceHandler) UpdatePreference(c *gin.Context) {
	var req dto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	p, err := h.preferenceSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, p)
}

// DeletePreference 删除偏好
// DELETE /api/v1/preferences/:id
func (h *PreferenceHandler) DeletePreference(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.preferenceSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePreferenceError 统一处理偏好模块业务错误
func (h *PreferenceHandler) handlePreferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPreferenceNotFound):
		response.NotFound(c, 15001, "偏好不存在")
	case errors.Is(err, roster.ErrInvalidWeekday):
		response.BadRequest(c, 15003, "星期取值必须在 1-7 之间")
	case rejection(c, 15002, err):
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
