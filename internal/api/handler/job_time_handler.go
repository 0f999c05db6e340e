package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// JobTimeHandler 年度工时配额 HTTP 处理器
type JobTimeHandler struct {
	jobTimeSvc service.JobTimeService
}

// NewJobTimeHandler 创建 JobTimeHandler
func NewJobTimeHandler(jobTimeSvc service.JobTimeService) *JobTimeHandler {
	return &JobTimeHandler{jobTimeSvc: jobTimeSvc}
}

// UpsertJobTime 设置员工年度配额（存在即覆盖）
// PUT /api/v1/job-times
func (h *JobTimeHandler) UpsertJobTime(c *gin.Context) {
	var req dto.UpsertJobTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	jt, err := h.jobTimeSvc.Upsert(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleJobTimeError(c, err)
		return
	}

	response.OK(c, jt)
}

// ListJobTimes 员工配额列表；带 year 时只返回该年，employee_id 为空时为本人
// GET /api/v1/job-times?employee_id=xxx&year=2024
func (h *JobTimeHandler) ListJobTimes(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	employeeID := c.DefaultQuery("employee_id", caller.EmployeeID)

	if c.Query("year") != "" {
		year, ok := parseYear(c)
		if !ok {
			return
		}
		jt, err := h.jobTimeSvc.Get(c.Request.Context(), caller, employeeID, year)
		if err != nil {
			h.handleJobTimeError(c, err)
			return
		}
		response.OK(c, jt)
		return
	}

	list, err := h.jobTimeSvc.ListByEmployee(c.Request.Context(), caller, employeeID)
	if err != nil {
		h.handleJobTimeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// DeleteJobTime 删除员工某年配额
// DELETE /api/v1/job-times?employee_id=xxx&year=2024
func (h *JobTimeHandler) DeleteJobTime(c *gin.Context) {
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		response.BadRequest(c, 10001, "employee_id 不能为空")
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.jobTimeSvc.Delete(c.Request.Context(), caller, employeeID, year); err != nil {
		h.handleJobTimeError(c, err)
		return
	}

	response.OK(c, nil)
}

// parseYear 解析 year 查询参数，失败时写入 400
func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, 10001, "年份无效")
		return 0, false
	}
	return year, true
}

func (h *JobTimeHandler) handleJobTimeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobTimeNotFound):
		response.NotFound(c, 17001, "该员工当年未设置工时配额")
	case errors.Is(err, service.ErrJobTimeInvalidHours):
		response.BadRequest(c, 17002, "月度配额不能为负数")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
