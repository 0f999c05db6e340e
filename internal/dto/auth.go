package dto

// ── 会话模块 DTO ──

// SessionResponse 当前会话信息
// Token 由身份服务签发，这里只回显其声明与对应的员工
type SessionResponse struct {
	Employee       EmployeeResponse `json:"employee"`
	Role           string           `json:"role"`
	OrganizationID string           `json:"organization_id"`
	ExpiresAt      string           `json:"expires_at"`
}
