package roster

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/model"
)

// Candidate 一次准入判断所需的全部事实
type Candidate struct {
	Employee *model.Employee
	Shift    *model.ShiftType
	Date     time.Time

	// Existing 员工在目标日期前后已提交的分配
	Existing []model.Assignment
	// Absences 员工与目标日期相关的缺勤
	Absences []model.Absence
	// Committed 该班次在目标日期已提交的人数
	Committed int
}

// Admission 准入结果
type Admission struct {
	Interval      Interval
	DeductedHours decimal.Decimal
}

// Validate 按顺序检查，首个失败即返回：
// 停用 → 工作场所 → 开放日 → 重复占用 → 缺勤 → 名额
// 只读，不产生任何副作用
func Validate(c Candidate, loc *time.Location) (Admission, error) {
	if !c.Shift.IsUsed {
		return Admission{}, ErrShiftInactive
	}
	if !IsMember(c.Employee, c.Shift.WorkplaceID) {
		return Admission{}, ErrWorkplaceMismatch
	}

	days, err := ActiveDaysOf(c.Shift.ActiveDays)
	if err != nil {
		return Admission{}, err
	}
	date := DateOf(c.Date, loc)
	if !days.IsActiveOn(date) {
		return Admission{}, ErrDayNotEligible
	}

	iv, err := ShiftInterval(c.Shift, date, loc)
	if err != nil {
		return Admission{}, err
	}

	for i := range c.Existing {
		if AssignmentInterval(&c.Existing[i]).Overlaps(iv) {
			return Admission{}, ErrDoubleBooked
		}
	}

	avail := ResolveAvailability(c.Absences, iv, loc)
	if !avail.Available {
		return Admission{}, ErrEmployeeAbsent
	}

	if RemainingSlots(c.Shift, c.Committed) <= 0 {
		return Admission{}, ErrDemandSaturated
	}

	return Admission{Interval: iv, DeductedHours: avail.DeductedHours}, nil
}
