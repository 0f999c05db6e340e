package service

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/SaluSL/planimbly/internal/model"
)

// ── 公休日 ICS 解析 ──────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 日历中的事件转为组织公休日：
//   - 全天事件 (VALUE=DATE) 覆盖 [DTSTART, DTEND) 的每一天
//   - 带时间的事件按排班时区取其所在日期
//   - RRULE 支持 DAILY / WEEKLY / YEARLY 与 COUNT / UNTIL / INTERVAL
//   - 同一日期出现多次时保留第一个名称
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize     = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout    = 30 * time.Second
	icsMaxOccurrences  = 366
	icsDefaultDayTitle = "公休日"
)

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseFreeDaysICS 解析 ICS 内容为公休日列表，按日期升序
// from/to 非 nil 时只保留 [from, to] 内的日期
func ParseFreeDaysICS(reader io.Reader, orgID string, loc *time.Location, from, to *time.Time) ([]model.FreeDay, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFreeDayICSInvalid, err)
	}

	names := make(map[string]string)
	for _, evt := range cal.Events() {
		name, dates, ok := parseFreeDayEvent(evt, loc)
		if !ok {
			continue
		}
		for _, d := range dates {
			if from != nil && d.Before(*from) {
				continue
			}
			if to != nil && d.After(*to) {
				continue
			}
			key := d.Format(time.DateOnly)
			if _, exists := names[key]; !exists {
				names[key] = name
			}
		}
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]model.FreeDay, 0, len(keys))
	for _, k := range keys {
		day, _ := time.ParseInLocation(time.DateOnly, k, loc)
		result = append(result, model.FreeDay{
			OrganizationID: orgID,
			Day:            day,
			Name:           names[k],
		})
	}
	return result, nil
}

// parseFreeDayEvent 解析单个 VEVENT，返回名称与覆盖的日期
func parseFreeDayEvent(evt *ics.VEvent, loc *time.Location) (string, []time.Time, bool) {
	name := icsDefaultDayTitle
	if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil && strings.TrimSpace(summary.Value) != "" {
		name = strings.TrimSpace(summary.Value)
	}
	if len(name) > 100 {
		name = name[:100]
	}

	dtStart, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return "", nil, false
	}
	first := dateIn(dtStart, loc)

	// 事件跨越的天数（全天事件 DTEND 为次日，不包含）
	span := 1
	if dtEnd, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil {
		last := dateIn(dtEnd, loc)
		if !allDay {
			last = dateIn(dtEnd.Add(-time.Nanosecond), loc).AddDate(0, 0, 1)
		}
		if n := daysBetween(first, last); n > 1 {
			span = n
		}
	}

	exDates := parseExDates(evt, loc)
	var dates []time.Time
	for _, occ := range expandOccurrences(evt, first) {
		if exDates[occ.Format("20060102")] {
			continue
		}
		for i := 0; i < span; i++ {
			dates = append(dates, occ.AddDate(0, 0, i))
		}
	}
	return name, dates, len(dates) > 0
}

// expandOccurrences 根据 RRULE 展开事件的每次发生日期；无 RRULE 时仅返回首日
func expandOccurrences(evt *ics.VEvent, first time.Time) []time.Time {
	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return []time.Time{first}
	}

	rule := parseRRule(rruleProp.Value)
	step := func(t time.Time, n int) time.Time { return t }
	switch rule.freq {
	case "DAILY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
	case "WEEKLY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }
	case "YEARLY":
		step = func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) }
	default:
		return []time.Time{first}
	}

	limit := icsMaxOccurrences
	if rule.count > 0 && rule.count < limit {
		limit = rule.count
	}

	var out []time.Time
	for i := 0; i < limit; i++ {
		cur := step(first, i*rule.interval)
		if !rule.until.IsZero() && cur.After(rule.until) {
			break
		}
		out = append(out, cur)
	}
	return out
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=YEARLY;COUNT=5;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	if r.interval < 1 {
		r.interval = 1
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			t, err := time.Parse("20060102T150405Z", v)
			if err != nil {
				t, err = time.ParseInLocation("20060102T150405", v, loc)
				if err != nil {
					t, err = time.ParseInLocation("20060102", v, loc)
				}
			}
			if err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，第二个返回值表示是否为全天日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.ParseInLocation("20060102", val, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}

	t, err := time.Parse("20060102T150405", val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
	}
	// 检查 TZID 参数
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if tzLoc, err := time.LoadLocation(v[0]); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), false, nil
			}
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), false, nil
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween 按日历日计算，避开夏令时切换带来的 23/25 小时
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
