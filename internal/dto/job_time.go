package dto

import "github.com/shopspring/decimal"

// ── 工时配额模块 DTO ──

// MonthlyHours 十二个月的应出勤小时
type MonthlyHours struct {
	January   decimal.Decimal `json:"january"`
	February  decimal.Decimal `json:"february"`
	March     decimal.Decimal `json:"march"`
	April     decimal.Decimal `json:"april"`
	May       decimal.Decimal `json:"may"`
	June      decimal.Decimal `json:"june"`
	July      decimal.Decimal `json:"july"`
	August    decimal.Decimal `json:"august"`
	September decimal.Decimal `json:"september"`
	October   decimal.Decimal `json:"october"`
	November  decimal.Decimal `json:"november"`
	December  decimal.Decimal `json:"december"`
}

// UpsertJobTimeRequest 设置员工年度配额（存在即覆盖）
type UpsertJobTimeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Year       int    `json:"year"        binding:"required,min=2000,max=2100"`
	MonthlyHours
}

// JobTimeResponse 年度配额响应
type JobTimeResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	MonthlyHours
}
