package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/roster"
)

func setupTestShiftTypeService() (ShiftTypeService, *memStore) {
	store := newMemStore()
	seedRoster(store)
	return NewShiftTypeService(store.repository(), newTestLogger()), store
}

func intPtr(n int) *int { return &n }

func TestShiftTypeService_Create(t *testing.T) {
	svc, _ := setupTestShiftTypeService()

	resp, err := svc.Create(context.Background(), testSupervisor, &dto.CreateShiftTypeRequest{
		WorkplaceID: "wp-1",
		Name:        "夜班",
		HourStart:   "18:00",
		HourEnd:     "23:30",
		Demand:      intPtr(0),
		ActiveDays:  []int{5, 6, 6},
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Color != defaultShiftColor {
		t.Errorf("期望默认颜色，实际 %s", resp.Color)
	}
	if resp.Demand != 0 || !resp.IsUsed || resp.Version != 1 {
		t.Errorf("返回值错误: %+v", resp)
	}
	if len(resp.ActiveDays) != 2 || resp.ActiveDays[0] != 5 || resp.ActiveDays[1] != 6 {
		t.Errorf("开放日应去重排序，实际 %v", resp.ActiveDays)
	}
}

func TestShiftTypeService_Create_Invalid(t *testing.T) {
	svc, _ := setupTestShiftTypeService()

	tests := []struct {
		name string
		req  dto.CreateShiftTypeRequest
		want error
	}{
		{"开始晚于结束", dto.CreateShiftTypeRequest{WorkplaceID: "wp-1", HourStart: "16:00", HourEnd: "08:00", Demand: intPtr(1), ActiveDays: []int{1}}, roster.ErrInvalidShiftHours},
		{"星期越界", dto.CreateShiftTypeRequest{WorkplaceID: "wp-1", HourStart: "08:00", HourEnd: "16:00", Demand: intPtr(1), ActiveDays: []int{8}}, roster.ErrInvalidWeekday},
		{"工作场所不存在", dto.CreateShiftTypeRequest{WorkplaceID: "wp-other", HourStart: "08:00", HourEnd: "16:00", Demand: intPtr(1), ActiveDays: []int{1}}, ErrWorkplaceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Create(context.Background(), testSupervisor, &req); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestShiftTypeService_Update_OptimisticLock(t *testing.T) {
	svc, store := setupTestShiftTypeService()
	ctx := context.Background()

	name := "早班"
	resp, err := svc.Update(ctx, testSupervisor, "st-morning", &dto.UpdateShiftTypeRequest{Name: &name, Demand: intPtr(3), Version: 1})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Version != 2 || store.shiftTypes["st-morning"].Demand != 3 {
		t.Errorf("更新后版本或人数错误: %+v", resp)
	}

	if _, err := svc.Update(ctx, testSupervisor, "st-morning", &dto.UpdateShiftTypeRequest{Name: &name, Version: 1}); !errors.Is(err, ErrShiftTypeConflict) {
		t.Errorf("旧版本期望 ErrShiftTypeConflict，实际: %v", err)
	}
}

func TestShiftTypeService_Update_InvalidHours(t *testing.T) {
	svc, _ := setupTestShiftTypeService()

	end := "07:00"
	_, err := svc.Update(context.Background(), testSupervisor, "st-morning", &dto.UpdateShiftTypeRequest{HourEnd: &end, Version: 1})
	if !errors.Is(err, roster.ErrInvalidShiftHours) {
		t.Errorf("期望 ErrInvalidShiftHours，实际: %v", err)
	}
}

func TestShiftTypeService_List_OnlyUsed(t *testing.T) {
	svc, _ := setupTestShiftTypeService()

	list, err := svc.List(context.Background(), testSupervisor, &dto.ShiftTypeListRequest{WorkplaceID: "wp-1", OnlyUsed: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 个启用班次，实际 %d", len(list))
	}
}
