package roster

import "github.com/SaluSL/planimbly/internal/model"

// RemainingSlots 班次实例剩余名额
// is_used=false 时恒为 0；不会返回负数
func RemainingSlots(st *model.ShiftType, committed int) int {
	if !st.IsUsed {
		return 0
	}
	if left := st.Demand - committed; left > 0 {
		return left
	}
	return 0
}
