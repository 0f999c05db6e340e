package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 缺勤类型
const (
	AbsenceVacation  = "vacation"
	AbsenceSickLeave = "sick_leave"
	AbsenceUnpaid    = "unpaid"
	AbsenceOther     = "other"
)

// Absence 缺勤记录表 — 对应 absences
// [Start, End) 为半开区间；HoursNumber 为抵扣的计划工时
type Absence struct {
	AbsenceID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"absence_id"`
	EmployeeID  string          `gorm:"type:uuid;not null"                             json:"employee_id"`
	Start       time.Time       `gorm:"column:start_at;not null"                       json:"start"`
	End         time.Time       `gorm:"column:end_at;not null"                         json:"end"`
	Type        string          `gorm:"type:varchar(20);not null"                      json:"type"`
	HoursNumber decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"hours_number"`
	SoftDeleteModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Absence) TableName() string { return "absences" }
