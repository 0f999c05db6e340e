package roster

import (
	"time"

	"github.com/SaluSL/planimbly/internal/model"
)

// ActiveDays 以 ISO 星期（1=周一 … 7=周日）为槽位的定长集合
// 第 d-1 位表示星期 d；零值为空集
type ActiveDays uint8

const allWeekdays ActiveDays = 1<<7 - 1

// NewActiveDays 由星期列表构造集合，重复值忽略
func NewActiveDays(days ...int) (ActiveDays, error) {
	var a ActiveDays
	for _, d := range days {
		if d < 1 || d > 7 {
			return 0, ErrInvalidWeekday
		}
		a |= 1 << (d - 1)
	}
	return a, nil
}

// ActiveDaysOf 从持久化的 INT[] 还原
func ActiveDaysOf(days model.IntArray) (ActiveDays, error) {
	return NewActiveDays(days...)
}

// ISOWeekday 返回 1-7，周日为 7
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Has 是否包含星期 d
func (a ActiveDays) Has(d int) bool {
	if d < 1 || d > 7 {
		return false
	}
	return a&(1<<(d-1)) != 0
}

// IsActiveOn 日期所在星期是否开放，date 应已处于排班时区
func (a ActiveDays) IsActiveOn(date time.Time) bool {
	return a.Has(ISOWeekday(date))
}

// Intersects 两个集合是否有交集
func (a ActiveDays) Intersects(b ActiveDays) bool {
	return a&b != 0
}

// IsSubsetOf a ⊆ b
func (a ActiveDays) IsSubsetOf(b ActiveDays) bool {
	return a&^b == 0
}

// IsEmpty 是否为空集
func (a ActiveDays) IsEmpty() bool {
	return a&allWeekdays == 0
}

// Days 升序返回包含的星期
func (a ActiveDays) Days() []int {
	out := make([]int, 0, 7)
	for d := 1; d <= 7; d++ {
		if a.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// IntArray 转为持久化形式
func (a ActiveDays) IntArray() model.IntArray {
	return model.IntArray(a.Days())
}
