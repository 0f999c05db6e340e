package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SaluSL/planimbly/internal/dto"
)

func setupTestJobTimeService() (JobTimeService, AssignmentService, *memStore) {
	store := newMemStore()
	seedRoster(store)
	locker := NewLocalLocker(time.Second)
	jobTimes := NewJobTimeService(store.repository(), locker, testSettings(), newTestLogger())
	assignments := NewAssignmentService(store.repository(), locker, testSettings(), testTopic, newTestLogger())
	return jobTimes, assignments, store
}

func TestJobTimeService_Upsert_RecomputesYear(t *testing.T) {
	jobTimes, assignments, store := setupTestJobTimeService()
	ctx := context.Background()

	mon, err := assignments.Commit(ctx, testSupervisor, assignReq("emp-1", "st-morning", "2024-03-04"))
	if err != nil {
		t.Fatalf("Commit 应成功: %v", err)
	}
	if mon.NegativeFlag {
		t.Fatal("未设置配额时不应欠时")
	}

	resp, err := jobTimes.Upsert(ctx, testSupervisor, &dto.UpsertJobTimeRequest{
		EmployeeID:   "emp-1",
		Year:         2024,
		MonthlyHours: dto.MonthlyHours{March: decimal.RequireFromString("168.004")},
	})
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if !resp.March.Equal(decimal.NewFromInt(168)) {
		t.Errorf("期望 3 月配额四舍五入为 168，实际 %s", resp.March)
	}
	if !storedAssignment(t, store, mon.ID).NegativeFlag {
		t.Error("设置配额后 3 月 4 日应欠时")
	}

	if err := jobTimes.Delete(ctx, testSupervisor, "emp-1", 2024); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if storedAssignment(t, store, mon.ID).NegativeFlag {
		t.Error("删除配额后欠时标记应被清除")
	}
}

func TestJobTimeService_Upsert_NegativeHours(t *testing.T) {
	svc, _, store := setupTestJobTimeService()

	_, err := svc.Upsert(context.Background(), testSupervisor, &dto.UpsertJobTimeRequest{
		EmployeeID:   "emp-1",
		Year:         2024,
		MonthlyHours: dto.MonthlyHours{May: decimal.NewFromInt(-8)},
	})
	if !errors.Is(err, ErrJobTimeInvalidHours) {
		t.Errorf("期望 ErrJobTimeInvalidHours，实际: %v", err)
	}
	if len(store.jobTimes) != 0 {
		t.Error("不应写入配额")
	}
}

func TestJobTimeService_GetAndList(t *testing.T) {
	svc, _, store := setupTestJobTimeService()
	ctx := context.Background()
	setQuota(store, "emp-1", 2023, time.January, 160)
	setQuota(store, "emp-1", 2024, time.January, 168)

	if _, err := svc.Get(ctx, employeeCaller("emp-1"), "emp-1", 2025); !errors.Is(err, ErrJobTimeNotFound) {
		t.Errorf("期望 ErrJobTimeNotFound，实际: %v", err)
	}
	if _, err := svc.Get(ctx, employeeCaller("emp-2"), "emp-1", 2024); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}

	jt, err := svc.Get(ctx, employeeCaller("emp-1"), "emp-1", 2024)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if !jt.January.Equal(decimal.NewFromInt(168)) {
		t.Errorf("期望 168，实际 %s", jt.January)
	}

	list, err := svc.ListByEmployee(ctx, testSupervisor, "emp-1")
	if err != nil {
		t.Fatalf("ListByEmployee 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 个年度配额，实际 %d", len(list))
	}

	if err := svc.Delete(ctx, testSupervisor, "emp-1", 2030); !errors.Is(err, ErrJobTimeNotFound) {
		t.Errorf("期望 ErrJobTimeNotFound，实际: %v", err)
	}
}
