package service

import (
	"errors"
	"time"

	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/pkg/jwt"
)

// ── 通用业务错误 ──

var (
	ErrForbidden   = errors.New("无权操作该员工的数据")
	ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// Caller 当前请求的调用者身份（来自访问令牌）
type Caller struct {
	EmployeeID     string
	OrganizationID string
	Role           string
}

// IsSupervisor 是否为主管
func (c Caller) IsSupervisor() bool {
	return c.Role == jwt.RoleSupervisor
}

// CanActFor 主管可操作组织内任意员工，普通员工仅限本人
func (c Caller) CanActFor(employeeID string) bool {
	return c.IsSupervisor() || c.EmployeeID == employeeID
}

// RosterSettings 排班时区与工作日设置
type RosterSettings struct {
	Location    *time.Location
	WorkingDays roster.ActiveDays
}

// parseDate 按排班时区解析 YYYY-MM-DD
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// parseOptionalDate 空串返回 nil
func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
