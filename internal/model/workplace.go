package model

// Workplace 工作场所表 — 对应 workplaces
type Workplace struct {
	WorkplaceID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"workplace_id"`
	OrganizationID string `gorm:"type:uuid;not null"                             json:"organization_id"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Workplace) TableName() string { return "workplaces" }
