package model

import "time"

// FreeDay 组织公休日表 — 对应 free_days
type FreeDay struct {
	FreeDayID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"free_day_id"`
	OrganizationID string    `gorm:"type:uuid;not null"                             json:"organization_id"`
	Day            time.Time `gorm:"type:date;not null"                             json:"day"`
	Name           string    `gorm:"type:varchar(100);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (FreeDay) TableName() string { return "free_days" }
