package dto

// ── 公休日模块 DTO ──

// CreateFreeDayRequest 创建公休日请求
type CreateFreeDayRequest struct {
	Day  string `json:"day"  binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateFreeDayRequest 更新公休日请求
type UpdateFreeDayRequest struct {
	Day  *string `json:"day"  binding:"omitempty,datetime=2006-01-02"`
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

// FreeDayListRequest 公休日列表查询参数
type FreeDayListRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// FreeDayResponse 公休日响应
type FreeDayResponse struct {
	ID   string `json:"id"`
	Day  string `json:"day"`
	Name string `json:"name"`
}

// ImportFreeDaysResponse ICS 导入结果；updated 为已存在、仅刷新名称的日期数
type ImportFreeDaysResponse struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Days     []string `json:"days"`
}

// ImportFreeDaysRequest ICS 导入参数；未上传文件时从 url 拉取
type ImportFreeDaysRequest struct {
	URL  string `form:"url"  binding:"omitempty,url"`
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}
