package dto

import "github.com/shopspring/decimal"

// ── 排班分配模块 DTO ──

// AssignmentRequest 试算 / 提交分配请求
type AssignmentRequest struct {
	EmployeeID  string `json:"employee_id"   binding:"required,uuid"`
	ShiftTypeID string `json:"shift_type_id" binding:"required,uuid"`
	Date        string `json:"date"          binding:"required,datetime=2006-01-02"`
}

// ProposalResponse 试算结果；admitted=false 时 reason 给出失败的检查项
type ProposalResponse struct {
	Admitted       bool            `json:"admitted"`
	Reason         string          `json:"reason,omitempty"`
	Message        string          `json:"message,omitempty"`
	Start          string          `json:"start,omitempty"`
	End            string          `json:"end,omitempty"`
	DeductedHours  decimal.Decimal `json:"deducted_hours"`
	RemainingSlots int             `json:"remaining_slots"`
}

// AssignmentResponse 分配响应，附带班次与员工摘要
type AssignmentResponse struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	Employee     *EmployeeBrief `json:"employee,omitempty"`
	ShiftType    ShiftTypeBrief `json:"shift_type"`
	Start        string         `json:"start"`
	End          string         `json:"end"`
	NegativeFlag bool           `json:"negative_flag"`
	CreatedAt    string         `json:"created_at"`
}

// AssignmentListRequest 分配列表查询参数
type AssignmentListRequest struct {
	EmployeeID  string `form:"employee_id"  binding:"omitempty,uuid"`
	WorkplaceID string `form:"workplace_id" binding:"omitempty,uuid"`
	From        string `form:"from"         binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to"           binding:"omitempty,datetime=2006-01-02"`
}

// BalanceRequest 月度工时查询参数
type BalanceRequest struct {
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// BalanceResponse 月度工时汇总；delta 为负表示欠时
type BalanceResponse struct {
	EmployeeID    string          `json:"employee_id"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	ExpectedHours decimal.Decimal `json:"expected_hours"`
	ActualHours   decimal.Decimal `json:"actual_hours"`
	DeltaHours    decimal.Decimal `json:"delta_hours"`
}

// AssignmentLogListRequest 分配日志查询参数
type AssignmentLogListRequest struct {
	PaginationRequest
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

// AssignmentLogResponse 分配日志响应
type AssignmentLogResponse struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	ShiftTypeID  string `json:"shift_type_id"`
	Action       string `json:"action"`
	Start        string `json:"start"`
	End          string `json:"end"`
	NegativeFlag bool   `json:"negative_flag"`
	OperatorID   string `json:"operator_id"`
	CreatedAt    string `json:"created_at"`
}

// ExportRosterRequest 月度排班表导出参数
type ExportRosterRequest struct {
	WorkplaceID string `form:"workplace_id" binding:"required,uuid"`
	Year        int    `form:"year"         binding:"required,min=2000,max=2100"`
	Month       int    `form:"month"        binding:"required,min=1,max=12"`
}
