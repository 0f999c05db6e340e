package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── 缺勤模块 DTO ──

// CreateAbsenceRequest 登记缺勤请求，[start, end) 为半开区间
type CreateAbsenceRequest struct {
	EmployeeID  string          `json:"employee_id"  binding:"required,uuid"`
	Start       time.Time       `json:"start"        binding:"required"`
	End         time.Time       `json:"end"          binding:"required,gtfield=Start"`
	Type        string          `json:"type"         binding:"required,oneof=vacation sick_leave unpaid other"`
	HoursNumber decimal.Decimal `json:"hours_number"`
}

// UpdateAbsenceRequest 更新缺勤请求
type UpdateAbsenceRequest struct {
	Start       *time.Time       `json:"start"`
	End         *time.Time       `json:"end"`
	Type        *string          `json:"type"         binding:"omitempty,oneof=vacation sick_leave unpaid other"`
	HoursNumber *decimal.Decimal `json:"hours_number"`
}

// AbsenceListRequest 缺勤列表查询参数
type AbsenceListRequest struct {
	PaginationRequest
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
}

// AbsenceResponse 缺勤响应，附带员工摘要
type AbsenceResponse struct {
	ID          string          `json:"id"`
	Employee    EmployeeBrief   `json:"employee"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Type        string          `json:"type"`
	HoursNumber decimal.Decimal `json:"hours_number"`
}
