package dto

// ── 偏好模块 DTO ──

// CreatePreferenceRequest 登记偏好请求
// employee_id 为空时默认为调用者本人
type CreatePreferenceRequest struct {
	EmployeeID  string `json:"employee_id"   binding:"omitempty,uuid"`
	ShiftTypeID string `json:"shift_type_id" binding:"required,uuid"`
	ActiveDays  []int  `json:"active_days"   binding:"required,min=1,weekdays"`
}

// UpdatePreferenceRequest 更新偏好请求
type UpdatePreferenceRequest struct {
	ActiveDays []int `json:"active_days" binding:"required,min=1,weekdays"`
}

// PreferenceListRequest 偏好列表查询参数
type PreferenceListRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

// PreferenceResponse 偏好响应，附带班次摘要
type PreferenceResponse struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employee_id"`
	ShiftType  ShiftTypeBrief `json:"shift_type"`
	ActiveDays []int          `json:"active_days"`
}
