package model

// Preference 员工班次偏好表 — 对应 preferences
type Preference struct {
	PreferenceID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"preference_id"`
	EmployeeID   string   `gorm:"type:uuid;not null"                             json:"employee_id"`
	ShiftTypeID  string   `gorm:"type:uuid;not null"                             json:"shift_type_id"`
	ActiveDays   IntArray `gorm:"type:int[];not null"                            json:"active_days"`
	BaseModel

	// 关联
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID" json:"shift_type,omitempty"`
}

// TableName 指定表名
func (Preference) TableName() string { return "preferences" }
