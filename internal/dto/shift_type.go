package dto

// ── 班次定义模块 DTO ──

// CreateShiftTypeRequest 创建班次请求
// hour_start / hour_end 为 HH:MM，active_days 为 ISO 星期 1-7
type CreateShiftTypeRequest struct {
	WorkplaceID string `json:"workplace_id" binding:"required,uuid"`
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	HourStart   string `json:"hour_start"   binding:"required,clock"`
	HourEnd     string `json:"hour_end"     binding:"required,clock"`
	Demand      *int   `json:"demand"       binding:"required,min=0,max=1000"`
	Color       string `json:"color"        binding:"omitempty,hexcolor,max=7"`
	ActiveDays  []int  `json:"active_days"  binding:"required,min=1,weekdays"`
	IsUsed      *bool  `json:"is_used"`
}

// UpdateShiftTypeRequest 更新班次请求（乐观锁）
type UpdateShiftTypeRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=100"`
	HourStart  *string `json:"hour_start"  binding:"omitempty,clock"`
	HourEnd    *string `json:"hour_end"    binding:"omitempty,clock"`
	Demand     *int    `json:"demand"      binding:"omitempty,min=0,max=1000"`
	Color      *string `json:"color"       binding:"omitempty,hexcolor,max=7"`
	ActiveDays []int   `json:"active_days" binding:"omitempty,min=1,weekdays"`
	IsUsed     *bool   `json:"is_used"`
	Version    int     `json:"version"     binding:"required,min=1"`
}

// ShiftTypeListRequest 班次列表查询参数
type ShiftTypeListRequest struct {
	WorkplaceID string `form:"workplace_id" binding:"omitempty,uuid"`
	OnlyUsed    bool   `form:"only_used"`
}

// ShiftTypeResponse 班次信息响应
type ShiftTypeResponse struct {
	ID          string `json:"id"`
	WorkplaceID string `json:"workplace_id"`
	Name        string `json:"name"`
	HourStart   string `json:"hour_start"`
	HourEnd     string `json:"hour_end"`
	Demand      int    `json:"demand"`
	Color       string `json:"color"`
	ActiveDays  []int  `json:"active_days"`
	IsUsed      bool   `json:"is_used"`
	Version     int    `json:"version"`
}
