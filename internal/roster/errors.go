package roster

import "errors"

// 分配准入拒绝原因（业务可预期结果，不是系统故障）
var (
	ErrShiftInactive               = errors.New("班次已停用，不允许新增分配")
	ErrWorkplaceMismatch           = errors.New("员工不属于该班次所在的工作场所")
	ErrDayNotEligible              = errors.New("班次在该日期不开放")
	ErrDoubleBooked                = errors.New("员工在该时间段已有其他班次")
	ErrEmployeeAbsent              = errors.New("员工在该时间段缺勤")
	ErrDemandSaturated             = errors.New("班次人数已满")
	ErrPreferenceWorkplaceMismatch = errors.New("员工不属于该班次所在的工作场所，无法登记偏好")
	ErrPreferenceDaysNotSubset     = errors.New("偏好日期必须是班次开放日期的子集")
)

// 定义类校验错误
var (
	ErrInvalidWeekday    = errors.New("星期取值必须在 1-7 之间")
	ErrInvalidClock      = errors.New("时间格式无效，应为 HH:MM")
	ErrInvalidShiftHours = errors.New("班次开始时间必须早于结束时间")
)

// Reason 拒绝原因的稳定机器码
type Reason string

const (
	ReasonShiftInactive               Reason = "ShiftInactive"
	ReasonWorkplaceMismatch           Reason = "WorkplaceMismatch"
	ReasonDayNotEligible              Reason = "DayNotEligible"
	ReasonDoubleBooked                Reason = "DoubleBooked"
	ReasonEmployeeAbsent              Reason = "EmployeeAbsent"
	ReasonDemandSaturated             Reason = "DemandSaturated"
	ReasonPreferenceWorkplaceMismatch Reason = "PreferenceWorkplaceMismatch"
	ReasonPreferenceDaysNotSubset     Reason = "PreferenceDaysNotSubset"
)

var reasons = []struct {
	err    error
	reason Reason
}{
	{ErrShiftInactive, ReasonShiftInactive},
	{ErrWorkplaceMismatch, ReasonWorkplaceMismatch},
	{ErrDayNotEligible, ReasonDayNotEligible},
	{ErrDoubleBooked, ReasonDoubleBooked},
	{ErrEmployeeAbsent, ReasonEmployeeAbsent},
	{ErrDemandSaturated, ReasonDemandSaturated},
	{ErrPreferenceWorkplaceMismatch, ReasonPreferenceWorkplaceMismatch},
	{ErrPreferenceDaysNotSubset, ReasonPreferenceDaysNotSubset},
}

// ReasonOf 返回拒绝错误对应的机器码；非拒绝错误返回空串
func ReasonOf(err error) Reason {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// IsRejection 是否为业务拒绝
func IsRejection(err error) bool {
	return ReasonOf(err) != ""
}
