package model

// ShiftType 班次定义表 — 对应 shift_types
// HourStart/HourEnd 为当天的时钟时间（HH:MM[:SS]），不跨午夜
type ShiftType struct {
	ShiftTypeID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_type_id"`
	WorkplaceID string   `gorm:"type:uuid;not null"                             json:"workplace_id"`
	Name        string   `gorm:"type:varchar(100);not null"                     json:"name"`
	HourStart   string   `gorm:"type:time;not null"                             json:"hour_start"`
	HourEnd     string   `gorm:"type:time;not null"                             json:"hour_end"`
	Demand      int      `gorm:"not null"                                       json:"demand"`
	Color       string   `gorm:"type:varchar(7);not null"                       json:"color"`
	ActiveDays  IntArray `gorm:"type:int[];not null"                            json:"active_days"` // ISO 星期 1-7
	IsUsed      bool     `gorm:"not null"                                       json:"is_used"`
	VersionedModel

	// 关联
	Workplace *Workplace `gorm:"foreignKey:WorkplaceID;references:WorkplaceID" json:"workplace,omitempty"`
}

// TableName 指定表名
func (ShiftType) TableName() string { return "shift_types" }
