package dto

// ── 工作场所模块 DTO ──

// CreateWorkplaceRequest 创建工作场所请求
type CreateWorkplaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateWorkplaceRequest 更新工作场所请求
type UpdateWorkplaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// WorkplaceResponse 工作场所响应
type WorkplaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
