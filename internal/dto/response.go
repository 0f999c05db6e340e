package dto

import "time"

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// Offset 分页偏移量
func (p *PaginationRequest) Offset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 读侧投影（关联实体摘要） ──

// ShiftTypeBrief 班次摘要
type ShiftTypeBrief struct {
	ID          string `json:"id"`
	WorkplaceID string `json:"workplace_id"`
	Name        string `json:"name"`
	HourStart   string `json:"hour_start"`
	HourEnd     string `json:"hour_end"`
	Color       string `json:"color"`
}

// EmployeeBrief 员工摘要
type EmployeeBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// ── 时间格式 ──

// DateLayout 日期参数格式
const DateLayout = time.DateOnly

// FormatTime RFC3339 输出
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
