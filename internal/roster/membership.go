package roster

import "github.com/SaluSL/planimbly/internal/model"

// IsMember 员工是否属于工作场所
// 偏好登记与分配准入共用此判断
func IsMember(emp *model.Employee, workplaceID string) bool {
	for _, m := range emp.Memberships {
		if m.WorkplaceID == workplaceID {
			return true
		}
	}
	return false
}

// CheckPreference 校验偏好：员工须属于班次的工作场所，且偏好日期 ⊆ 班次开放日期
func CheckPreference(emp *model.Employee, st *model.ShiftType, days ActiveDays) error {
	if !IsMember(emp, st.WorkplaceID) {
		return ErrPreferenceWorkplaceMismatch
	}
	shiftDays, err := ActiveDaysOf(st.ActiveDays)
	if err != nil {
		return err
	}
	if !days.IsSubsetOf(shiftDays) {
		return ErrPreferenceDaysNotSubset
	}
	return nil
}
