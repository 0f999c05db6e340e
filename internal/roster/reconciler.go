package roster

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/model"
)

// MonthParams 构造员工月度账本所需的输入
type MonthParams struct {
	Year        int
	Month       time.Month
	Location    *time.Location
	Quota       decimal.Decimal // 当月配额，缺失时为 0
	WorkingDays ActiveDays
	FreeDays    FreeDaySet
	Absences    []model.Absence
}

// MonthLedger 员工-月度工时账本
// 每次由该月全部分配按时间顺序重算，不做增量累加
type MonthLedger struct {
	year        int
	month       time.Month
	loc         *time.Location
	quota       decimal.Decimal
	workingDays ActiveDays
	freeDays    FreeDaySet
	absence     map[string]decimal.Decimal
	nominal     int
}

// NewMonthLedger 创建月度账本
func NewMonthLedger(p MonthParams) *MonthLedger {
	l := &MonthLedger{
		year:        p.Year,
		month:       p.Month,
		loc:         p.Location,
		quota:       p.Quota,
		workingDays: p.WorkingDays,
		freeDays:    p.FreeDays,
		absence:     AbsenceHoursByDate(p.Absences, p.Location),
	}
	if l.freeDays == nil {
		l.freeDays = FreeDaySet{}
	}
	r := MonthRange(p.Year, p.Month, p.Location)
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		if l.workingDays.IsActiveOn(d) {
			l.nominal++
		}
	}
	return l
}

// NominalWorkingDays 当月名义工作日数（不扣除公休日）
func (l *MonthLedger) NominalWorkingDays() int {
	return l.nominal
}

// Contains t 是否落在本月
func (l *MonthLedger) Contains(t time.Time) bool {
	y, m, _ := t.In(l.loc).Date()
	return y == l.year && m == l.month
}

// ExpectedThrough 截至 date（含）的应出勤小时
// perDay × (已过工作日 − 其中公休日) − 已过日期的缺勤抵扣，下限为 0
func (l *MonthLedger) ExpectedThrough(date time.Time) decimal.Decimal {
	if l.nominal == 0 || l.quota.IsZero() {
		return decimal.Zero
	}

	r := MonthRange(l.year, l.month, l.loc)
	last := DateOf(date, l.loc)
	if last.Before(r.Start) {
		return decimal.Zero
	}
	if !last.Before(r.End) {
		last = r.End.AddDate(0, 0, -1)
	}

	working := 0
	deducted := decimal.Zero
	for d := r.Start; !d.After(last); d = d.AddDate(0, 0, 1) {
		if l.workingDays.IsActiveOn(d) && !l.freeDays.Contains(d) {
			working++
		}
		if h, ok := l.absence[d.Format(time.DateOnly)]; ok {
			deducted = deducted.Add(h)
		}
	}

	perDay := l.quota.Div(decimal.NewFromInt(int64(l.nominal)))
	expected := perDay.Mul(decimal.NewFromInt(int64(working))).Sub(deducted)
	if expected.IsNegative() {
		return decimal.Zero
	}
	return expected.Round(2)
}

// ExpectedTotal 全月应出勤小时
func (l *MonthLedger) ExpectedTotal() decimal.Decimal {
	r := MonthRange(l.year, l.month, l.loc)
	return l.ExpectedThrough(r.End.AddDate(0, 0, -1))
}

// FlagChange 重算后标记发生变化的分配
type FlagChange struct {
	AssignmentID string
	NegativeFlag bool
}

// SortAssignments 按 (start, created_at, assignment_id) 排序
func SortAssignments(as []model.Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := &as[i], &as[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.AssignmentID < b.AssignmentID
	})
}

// Recompute 对本月分配做一次顺序重算，原地更新 NegativeFlag
// 返回标记发生变化的记录；不属于本月的分配被忽略
func (l *MonthLedger) Recompute(as []model.Assignment) []FlagChange {
	SortAssignments(as)

	var changes []FlagChange
	actual := decimal.Zero
	for i := range as {
		a := &as[i]
		if !l.Contains(a.Start) {
			continue
		}
		actual = actual.Add(AssignmentInterval(a).Hours())
		flag := actual.LessThan(l.ExpectedThrough(a.Start))
		if flag != a.NegativeFlag {
			a.NegativeFlag = flag
			changes = append(changes, FlagChange{AssignmentID: a.AssignmentID, NegativeFlag: flag})
		}
	}
	return changes
}

// Balance 月度工时汇总
type Balance struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Delta    decimal.Decimal
}

// Balance 计算全月应出勤、实际与差额（差额为负表示欠时）
func (l *MonthLedger) Balance(as []model.Assignment) Balance {
	actual := decimal.Zero
	for i := range as {
		if l.Contains(as[i].Start) {
			actual = actual.Add(AssignmentInterval(&as[i]).Hours())
		}
	}
	expected := l.ExpectedTotal()
	return Balance{Expected: expected, Actual: actual, Delta: actual.Sub(expected)}
}
