package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// AssignmentHandler 排班分配 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ProposeAssignment 试算分配，不落库
// POST /api/v1/assignments/propose
func (h *AssignmentHandler) ProposeAssignment(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	proposal, err := h.assignmentSvc.Propose(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, proposal)
}

// CommitAssignment 提交分配
// POST /api/v1/assignments
func (h *AssignmentHandler) CommitAssignment(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Commit(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// RevokeAssignment 撤销分配
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) RevokeAssignment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Revoke(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAssignments 分配列表
// GET /api/v1/assignments?employee_id=&workplace_id=&from=&to=
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.assignmentSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetBalance 员工月度工时汇总
// GET /api/v1/employees/:id/balance?year=2024&month=3
func (h *AssignmentHandler) GetBalance(c *gin.Context) {
	var req dto.BalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	balance, err := h.assignmentSvc.MonthlyBalance(c.Request.Context(), caller, c.Param("id"), req.Year, time.Month(req.Month))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, balance)
}

// ListAssignmentLogs 分配变更日志（分页）
// GET /api/v1/assignments/logs
func (h *AssignmentHandler) ListAssignmentLogs(c *gin.Context) {
	var req dto.AssignmentLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.assignmentSvc.ListLogs(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 19001, "分配记录不存在")
	case rejection(c, 19002, err):
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
