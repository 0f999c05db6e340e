package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/model"
)

// Interval 半开时间区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps 两个半开区间是否重叠，首尾相接不算重叠
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Hours 区间时长（小时）
func (i Interval) Hours() decimal.Decimal {
	if !i.End.After(i.Start) {
		return decimal.Zero
	}
	minutes := decimal.NewFromInt(int64(i.End.Sub(i.Start) / time.Minute))
	return minutes.DivRound(decimal.NewFromInt(60), 4)
}

// AssignmentInterval 分配记录的时间区间
func AssignmentInterval(a *model.Assignment) Interval {
	return Interval{Start: a.Start, End: a.End}
}

// Clock 当天的时钟时间
type Clock struct {
	Hour, Minute, Second int
}

// ParseClock 解析 HH:MM 或 HH:MM:SS
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	vals := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		vals[i] = n
	}
	return Clock{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}

// Before c 是否早于 o
func (c Clock) Before(o Clock) bool {
	return c.seconds() < o.seconds()
}

// String 格式化为 HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// ValidateShiftHours 校验 hour_start < hour_end
func ValidateShiftHours(start, end string) error {
	s, err := ParseClock(start)
	if err != nil {
		return err
	}
	e, err := ParseClock(end)
	if err != nil {
		return err
	}
	if !s.Before(e) {
		return ErrInvalidShiftHours
	}
	return nil
}

// ShiftInterval 计算班次在指定日期的实例区间
func ShiftInterval(st *model.ShiftType, date time.Time, loc *time.Location) (Interval, error) {
	s, err := ParseClock(st.HourStart)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(st.HourEnd)
	if err != nil {
		return Interval{}, err
	}
	if !s.Before(e) {
		return Interval{}, ErrInvalidShiftHours
	}

	y, m, d := date.In(loc).Date()
	return Interval{
		Start: time.Date(y, m, d, s.Hour, s.Minute, s.Second, 0, loc),
		End:   time.Date(y, m, d, e.Hour, e.Minute, e.Second, 0, loc),
	}, nil
}

// DateOf 返回 t 在 loc 中所处日期的零点
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateKey 日期键 yyyy-mm-dd
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// MonthKey 月份键 yyyy-mm
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

// MonthRange 返回 loc 中某月的 [首日零点, 次月首日零点)
func MonthRange(year int, month time.Month, loc *time.Location) Interval {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Interval{Start: start, End: start.AddDate(0, 1, 0)}
}

// DayRange 返回 loc 中 date 所在日期的 [零点, 次日零点)
func DayRange(date time.Time, loc *time.Location) Interval {
	start := DateOf(date, loc)
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// coveredDates 返回区间覆盖到的所有日期（loc 中的零点）
func coveredDates(iv Interval, loc *time.Location) []time.Time {
	if !iv.End.After(iv.Start) {
		return nil
	}
	last := DateOf(iv.End.Add(-time.Nanosecond), loc)
	var out []time.Time
	for d := DateOf(iv.Start, loc); !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
