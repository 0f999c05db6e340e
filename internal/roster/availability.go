package roster

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/model"
)

// Availability 员工在某区间的可用性
type Availability struct {
	Available     bool
	DeductedHours decimal.Decimal
	Blocking      []model.Absence
}

// AbsenceHoursByDate 将每条缺勤的 hours_number 平摊到其覆盖的日期上
// 时间上重叠的缺勤先合并为一段，段内同一天取最大份额只计一次；互不重叠的段按日累加
func AbsenceHoursByDate(absences []model.Absence, loc *time.Location) map[string]decimal.Decimal {
	sorted := make([]model.Absence, len(absences))
	copy(sorted, absences)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := make(map[string]decimal.Decimal)
	var (
		merged   map[string]decimal.Decimal
		mergedTo time.Time
	)
	flush := func() {
		for k, v := range merged {
			out[k] = out[k].Add(v)
		}
		merged = nil
	}
	for i := range sorted {
		a := &sorted[i]
		dates := coveredDates(Interval{Start: a.Start, End: a.End}, loc)
		if len(dates) == 0 {
			continue
		}
		if merged != nil && !a.Start.Before(mergedTo) {
			flush()
		}
		if merged == nil {
			merged = make(map[string]decimal.Decimal)
			mergedTo = a.End
		} else if a.End.After(mergedTo) {
			mergedTo = a.End
		}
		share := a.HoursNumber.DivRound(decimal.NewFromInt(int64(len(dates))), 4)
		for _, d := range dates {
			key := d.Format(time.DateOnly)
			if cur, ok := merged[key]; !ok || share.GreaterThan(cur) {
				merged[key] = share
			}
		}
	}
	flush()
	return out
}

// ResolveAvailability 判断员工在 iv 内是否可用
// 任一缺勤与 iv 重叠即不可用；DeductedHours 为 iv 所跨日期上的缺勤抵扣小时
func ResolveAvailability(absences []model.Absence, iv Interval, loc *time.Location) Availability {
	res := Availability{Available: true, DeductedHours: decimal.Zero}

	var relevant []model.Absence
	span := Interval{Start: DateOf(iv.Start, loc), End: DateOf(iv.End.Add(-time.Nanosecond), loc).AddDate(0, 0, 1)}
	for _, a := range absences {
		ai := Interval{Start: a.Start, End: a.End}
		if ai.Overlaps(iv) {
			res.Available = false
			res.Blocking = append(res.Blocking, a)
		}
		if ai.Overlaps(span) {
			relevant = append(relevant, a)
		}
	}

	perDate := AbsenceHoursByDate(relevant, loc)
	for _, d := range coveredDates(iv, loc) {
		if h, ok := perDate[d.Format(time.DateOnly)]; ok {
			res.DeductedHours = res.DeductedHours.Add(h)
		}
	}
	return res
}

// FreeDaySet 组织公休日集合，键为 yyyy-mm-dd
// 公休日不阻止分配，仅降低应出勤基线
type FreeDaySet map[string]string

// NewFreeDaySet 由公休日记录构造
// Day 为 DATE 列，按其字面日期取键，不做时区换算
func NewFreeDaySet(days []model.FreeDay) FreeDaySet {
	set := make(FreeDaySet, len(days))
	for _, d := range days {
		set[d.Day.Format(time.DateOnly)] = d.Name
	}
	return set
}

// Contains date（已处于排班时区）是否为公休日
func (s FreeDaySet) Contains(date time.Time) bool {
	_, ok := s[date.Format(time.DateOnly)]
	return ok
}
