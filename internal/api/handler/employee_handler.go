package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// ListEmployees 员工列表（分页）
// GET /api/v1/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.employeeSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEmployee 员工详情（主管或本人）
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

// UpdateWorkplaces 设置员工所属工作场所
// PUT /api/v1/employees/:id/workplaces
func (h *EmployeeHandler) UpdateWorkplaces(c *gin.Context) {
	var req dto.UpdateEmployeeWorkplacesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.UpdateWorkplaces(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, emp)
}

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	if !handleCommonError(c, err) {
		response.InternalError(c)
	}
}
