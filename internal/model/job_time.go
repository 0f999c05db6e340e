package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobTime 员工年度工时配额表 — 对应 job_times
// 每个员工每年一行，按月存放应出勤小时数
type JobTime struct {
	JobTimeID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_time_id"`
	EmployeeID string          `gorm:"type:uuid;not null"                             json:"employee_id"`
	Year       int             `gorm:"type:smallint;not null"                         json:"year"`
	January    decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"january"`
	February   decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"february"`
	March      decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"march"`
	April      decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"april"`
	May        decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"may"`
	June       decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"june"`
	July       decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"july"`
	August     decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"august"`
	September  decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"september"`
	October    decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"october"`
	November   decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"november"`
	December   decimal.Decimal `gorm:"type:numeric(7,2);not null"                     json:"december"`
	BaseModel
}

// TableName 指定表名
func (JobTime) TableName() string { return "job_times" }

// Month 返回指定月份的配额
func (j *JobTime) Month(m time.Month) decimal.Decimal {
	if p := j.monthField(m); p != nil {
		return *p
	}
	return decimal.Zero
}

// SetMonth 设置指定月份的配额
func (j *JobTime) SetMonth(m time.Month, hours decimal.Decimal) {
	if p := j.monthField(m); p != nil {
		*p = hours
	}
}

func (j *JobTime) monthField(m time.Month) *decimal.Decimal {
	switch m {
	case time.January:
		return &j.January
	case time.February:
		return &j.February
	case time.March:
		return &j.March
	case time.April:
		return &j.April
	case time.May:
		return &j.May
	case time.June:
		return &j.June
	case time.July:
		return &j.July
	case time.August:
		return &j.August
	case time.September:
		return &j.September
	case time.October:
		return &j.October
	case time.November:
		return &j.November
	case time.December:
		return &j.December
	}
	return nil
}
