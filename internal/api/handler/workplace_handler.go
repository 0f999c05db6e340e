package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// WorkplaceHandler 工作场所模块 HTTP 处理器
type WorkplaceHandler struct {
	workplaceSvc service.WorkplaceService
}

// NewWorkplaceHandler 创建 WorkplaceHandler
func NewWorkplaceHandler(workplaceSvc service.WorkplaceService) *WorkplaceHandler {
	return &WorkplaceHandler{workplaceSvc: workplaceSvc}
}

// ListWorkplaces 获取工作场所列表
// GET /api/v1/workplaces
func (h *WorkplaceHandler) ListWorkplaces(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.workplaceSvc.List(c.Request.Context(), caller)
	if err != nil {
		h.handleWorkplaceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetWorkplace 获取工作场所详情
// GET /api/v1/workplaces/:id
func (h *WorkplaceHandler) GetWorkplace(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleWorkplaceError(c, err)
		return
	}

	response.OK(c, wp)
}

// CreateWorkplace 创建工作场所
// POST /api/v1/workplaces
func (h *WorkplaceHandler) CreateWorkplace(c *gin.Context) {
	var req dto.CreateWorkplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleWorkplaceError(c, err)
		return
	}

	response.Created(c, wp)
}

// UpdateWorkplace 更新工作场所
// PUT /api/v1/workplaces/:id
func (h *WorkplaceHandler) UpdateWorkplace(c *gin.Context) {
	var req dto.UpdateWorkplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleWorkplaceError(c, err)
		return
	}

	response.OK(c, wp)
}

// DeleteWorkplace 删除工作场所
// DELETE /api/v1/workplaces/:id
func (h *WorkplaceHandler) DeleteWorkplace(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.workplaceSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleWorkplaceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleWorkplaceError 统一处理工作场所模块业务错误
func (h *WorkplaceHandler) handleWorkplaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkplaceHasShifts):
		response.Conflict(c, 12002, "该工作场所下仍有班次，无法删除", "")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
