package model

import "time"

// Assignment 排班分配表 — 对应 assignments
// 一条记录即员工承担某班次在某日的一个实例
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ShiftTypeID  string    `gorm:"type:uuid;not null"                             json:"shift_type_id"`
	EmployeeID   string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	Start        time.Time `gorm:"column:start_at;not null"                       json:"start"`
	End          time.Time `gorm:"column:end_at;not null"                         json:"end"`
	NegativeFlag bool      `gorm:"not null"                                       json:"negative_flag"`
	BaseModel

	// 关联
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID" json:"shift_type,omitempty"`
	Employee  *Employee  `gorm:"foreignKey:EmployeeID;references:EmployeeID"   json:"employee,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// 分配日志动作
const (
	AssignmentActionCommit = "commit"
	AssignmentActionRevoke = "revoke"
)

// AssignmentLog 排班分配变更记录 — 对应 assignment_logs（纯审计日志）
type AssignmentLog struct {
	LogID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	AssignmentID string    `gorm:"type:uuid;not null"                             json:"assignment_id"`
	EmployeeID   string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	ShiftTypeID  string    `gorm:"type:uuid;not null"                             json:"shift_type_id"`
	Action       string    `gorm:"type:varchar(20);not null"                      json:"action"` // commit | revoke
	Start        time.Time `gorm:"column:start_at;not null"                       json:"start"`
	End          time.Time `gorm:"column:end_at;not null"                         json:"end"`
	NegativeFlag bool      `gorm:"not null"                                       json:"negative_flag"`
	OperatorID   string    `gorm:"type:uuid;not null"                             json:"operator_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AssignmentLog) TableName() string { return "assignment_logs" }
