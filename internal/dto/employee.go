package dto

// ── 员工模块 DTO ──

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	WorkplaceID        string `form:"workplace_id"        binding:"omitempty,uuid"`
	Keyword            string `form:"keyword"             binding:"omitempty,max=50"`
	IncludeSupervisors bool   `form:"include_supervisors"`
}

// UpdateEmployeeWorkplacesRequest 设置员工所属工作场所
type UpdateEmployeeWorkplacesRequest struct {
	WorkplaceIDs []string `json:"workplace_ids" binding:"omitempty,dive,uuid"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	OrderNumber  int      `json:"order_number"`
	IsSupervisor bool     `json:"is_supervisor"`
	WorkplaceIDs []string `json:"workplace_ids"`
}
