package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
)

func setupTestFreeDayService() (FreeDayService, AssignmentService, *memStore) {
	store := newMemStore()
	seedRoster(store)
	locker := NewLocalLocker(time.Second)
	freeDays := NewFreeDayService(store.repository(), locker, testSettings(), newTestLogger())
	assignments := NewAssignmentService(store.repository(), locker, testSettings(), testTopic, newTestLogger())
	return freeDays, assignments, store
}

// icsLines 以 CRLF 拼接 ICS 行
func icsLines(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

var holidaysICS = icsLines(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//planimbly//test//PL",
	"BEGIN:VEVENT",
	"UID:new-year@test",
	"DTSTART;VALUE=DATE:20240101",
	"DTEND;VALUE=DATE:20240102",
	"RRULE:FREQ=YEARLY;COUNT=3",
	"SUMMARY:Nowy Rok",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:easter@test",
	"DTSTART;VALUE=DATE:20240331",
	"DTEND;VALUE=DATE:20240402",
	"SUMMARY:Wielkanoc",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:duplicate@test",
	"DTSTART;VALUE=DATE:20240101",
	"DTEND;VALUE=DATE:20240102",
	"SUMMARY:Duplikat",
	"END:VEVENT",
	"END:VCALENDAR",
)

func TestFreeDayService_Create_Duplicate(t *testing.T) {
	svc, _, store := setupTestFreeDayService()
	ctx := context.Background()

	created, err := svc.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-05-01", Name: "Święto Pracy"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if created.Day != "2024-05-01" {
		t.Errorf("日期错误: %s", created.Day)
	}

	if _, err := svc.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-05-01", Name: "重复"}); !errors.Is(err, ErrFreeDayExists) {
		t.Errorf("期望 ErrFreeDayExists，实际: %v", err)
	}
	if _, err := svc.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-13-01", Name: "错误"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
	if len(store.freeDays) != 1 {
		t.Errorf("期望 1 条公休日，实际 %d", len(store.freeDays))
	}
}

func TestFreeDayService_Update(t *testing.T) {
	svc, _, _ := setupTestFreeDayService()
	ctx := context.Background()

	first, err := svc.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-05-01", Name: "A"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-05-03", Name: "B"}); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	taken := "2024-05-03"
	if _, err := svc.Update(ctx, testSupervisor, first.ID, &dto.UpdateFreeDayRequest{Day: &taken}); !errors.Is(err, ErrFreeDayExists) {
		t.Errorf("期望 ErrFreeDayExists，实际: %v", err)
	}

	same, name := "2024-05-01", "Święto Pracy"
	resp, err := svc.Update(ctx, testSupervisor, first.ID, &dto.UpdateFreeDayRequest{Day: &same, Name: &name})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Name != name {
		t.Errorf("名称未更新: %+v", resp)
	}

	if _, err := svc.Update(ctx, testSupervisor, "missing", &dto.UpdateFreeDayRequest{Name: &name}); !errors.Is(err, ErrFreeDayNotFound) {
		t.Errorf("期望 ErrFreeDayNotFound，实际: %v", err)
	}
}

func TestFreeDayService_RecomputesNegativeFlag(t *testing.T) {
	freeDays, assignments, store := setupTestFreeDayService()
	ctx := context.Background()
	setQuota(store, "emp-1", 2024, time.March, 168)

	mon, err := assignments.Commit(ctx, testSupervisor, assignReq("emp-1", "st-morning", "2024-03-04"))
	if err != nil {
		t.Fatalf("Commit 应成功: %v", err)
	}
	if !mon.NegativeFlag {
		t.Fatal("期望 3 月 4 日欠时")
	}

	// 3 月 1 日改为公休日后，截至 3 月 4 日只有 1 个应出勤日
	fd, err := freeDays.Create(ctx, testSupervisor, &dto.CreateFreeDayRequest{Day: "2024-03-01", Name: "公休"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if storedAssignment(t, store, mon.ID).NegativeFlag {
		t.Error("新增公休日后欠时标记应被清除")
	}

	balance, err := assignments.MonthlyBalance(ctx, testSupervisor, "emp-1", 2024, time.March)
	if err != nil {
		t.Fatalf("MonthlyBalance 应成功: %v", err)
	}
	if !balance.ExpectedHours.Equal(decimal.NewFromInt(160)) {
		t.Errorf("期望应出勤 160，实际 %s", balance.ExpectedHours)
	}

	if err := freeDays.Delete(ctx, testSupervisor, fd.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if !storedAssignment(t, store, mon.ID).NegativeFlag {
		t.Error("删除公休日后应重新欠时")
	}
}

func TestFreeDayService_ImportICS(t *testing.T) {
	svc, _, store := setupTestFreeDayService()
	ctx := context.Background()

	store.freeDays["fd-old"] = &model.FreeDay{
		FreeDayID:      "fd-old",
		OrganizationID: testOrg,
		Day:            day("2024-04-01"),
		Name:           "旧名称",
	}

	resp, err := svc.ImportICS(ctx, testSupervisor, strings.NewReader(holidaysICS), &dto.ImportFreeDaysRequest{
		From: "2024-01-01",
		To:   "2024-12-31",
	})
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	if resp.Imported != 2 || resp.Updated != 1 {
		t.Errorf("期望新增 2 更新 1，实际 %+v", resp)
	}
	want := []string{"2024-01-01", "2024-03-31", "2024-04-01"}
	if strings.Join(resp.Days, ",") != strings.Join(want, ",") {
		t.Errorf("期望 %v，实际 %v", want, resp.Days)
	}

	if len(store.freeDays) != 3 {
		t.Errorf("期望 3 条公休日，实际 %d", len(store.freeDays))
	}
	if store.freeDays["fd-old"].Name != "Wielkanoc" {
		t.Errorf("已存在日期应刷新名称，实际 %s", store.freeDays["fd-old"].Name)
	}
}

func TestFreeDayService_ImportICS_Empty(t *testing.T) {
	svc, _, _ := setupTestFreeDayService()

	empty := icsLines("BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//planimbly//test//PL", "END:VCALENDAR")
	_, err := svc.ImportICS(context.Background(), testSupervisor, strings.NewReader(empty), &dto.ImportFreeDaysRequest{})
	if !errors.Is(err, ErrFreeDayICSEmpty) {
		t.Errorf("期望 ErrFreeDayICSEmpty，实际: %v", err)
	}
}

func TestParseFreeDaysICS(t *testing.T) {
	days, err := ParseFreeDaysICS(strings.NewReader(holidaysICS), testOrg, testLoc, nil, nil)
	if err != nil {
		t.Fatalf("ParseFreeDaysICS 应成功: %v", err)
	}

	want := map[string]string{
		"2024-01-01": "Nowy Rok",
		"2024-03-31": "Wielkanoc",
		"2024-04-01": "Wielkanoc",
		"2025-01-01": "Nowy Rok",
		"2026-01-01": "Nowy Rok",
	}
	if len(days) != len(want) {
		t.Fatalf("期望 %d 天，实际 %d", len(want), len(days))
	}
	for i, d := range days {
		key := d.Day.Format(time.DateOnly)
		if want[key] != d.Name {
			t.Errorf("%s 期望 %q，实际 %q", key, want[key], d.Name)
		}
		if d.OrganizationID != testOrg {
			t.Errorf("组织 ID 错误: %s", d.OrganizationID)
		}
		if i > 0 && !days[i-1].Day.Before(d.Day) {
			t.Error("结果应按日期升序")
		}
	}
}

func TestParseFreeDaysICS_ExDateAndTimedEvent(t *testing.T) {
	content := icsLines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//planimbly//test//PL",
		"BEGIN:VEVENT",
		"UID:weekly@test",
		"DTSTART;VALUE=DATE:20240506",
		"DTEND;VALUE=DATE:20240507",
		"RRULE:FREQ=WEEKLY;UNTIL=20240527",
		"EXDATE;VALUE=DATE:20240513",
		"SUMMARY:Inwentaryzacja",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:timed@test",
		"DTSTART:20240610T230000Z",
		"DTEND:20240611T010000Z",
		"SUMMARY:Nocna przerwa",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	days, err := ParseFreeDaysICS(strings.NewReader(content), testOrg, testLoc, nil, nil)
	if err != nil {
		t.Fatalf("ParseFreeDaysICS 应成功: %v", err)
	}

	got := make([]string, 0, len(days))
	for _, d := range days {
		got = append(got, d.Day.Format(time.DateOnly))
	}
	// 23:00Z 在华沙为次日 01:00，只覆盖 6 月 11 日
	want := []string{"2024-05-06", "2024-05-20", "2024-05-27", "2024-06-11"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}
