package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SaluSL/planimbly/internal/dto"
)

func setupTestEmployeeService() (EmployeeService, *memStore) {
	store := newMemStore()
	seedRoster(store)
	return NewEmployeeService(store.repository(), newTestLogger()), store
}

func TestEmployeeService_List_ExcludesSupervisors(t *testing.T) {
	svc, _ := setupTestEmployeeService()

	list, total, err := svc.List(context.Background(), testSupervisor, &dto.EmployeeListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 4 || len(list) != 4 {
		t.Fatalf("期望 4 名员工，实际 total=%d len=%d", total, len(list))
	}
	for _, e := range list {
		if e.IsSupervisor {
			t.Errorf("默认不应包含主管: %+v", e)
		}
	}

	byWorkplace, _, err := svc.List(context.Background(), testSupervisor, &dto.EmployeeListRequest{WorkplaceID: "wp-2"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(byWorkplace) != 1 || byWorkplace[0].ID != "emp-x" {
		t.Errorf("按工作场所过滤错误: %+v", byWorkplace)
	}
}

func TestEmployeeService_GetByID(t *testing.T) {
	svc, _ := setupTestEmployeeService()
	ctx := context.Background()

	resp, err := svc.GetByID(ctx, employeeCaller("emp-1"), "emp-1")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if resp.FullName != "Jan emp-1" || len(resp.WorkplaceIDs) != 1 {
		t.Errorf("返回值错误: %+v", resp)
	}

	if _, err := svc.GetByID(ctx, employeeCaller("emp-1"), "emp-2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}

func TestEmployeeService_UpdateWorkplaces(t *testing.T) {
	svc, store := setupTestEmployeeService()
	ctx := context.Background()

	resp, err := svc.UpdateWorkplaces(ctx, testSupervisor, "emp-x", &dto.UpdateEmployeeWorkplacesRequest{
		WorkplaceIDs: []string{"wp-1", "wp-2", "wp-1"},
	})
	if err != nil {
		t.Fatalf("UpdateWorkplaces 应成功: %v", err)
	}
	if len(resp.WorkplaceIDs) != 2 || len(store.employees["emp-x"].Memberships) != 2 {
		t.Errorf("期望 2 个工作场所，实际 %+v", resp.WorkplaceIDs)
	}

	_, err = svc.UpdateWorkplaces(ctx, testSupervisor, "emp-x", &dto.UpdateEmployeeWorkplacesRequest{
		WorkplaceIDs: []string{"wp-other"},
	})
	if !errors.Is(err, ErrWorkplaceNotFound) {
		t.Errorf("其他组织的工作场所期望 ErrWorkplaceNotFound，实际: %v", err)
	}

	_, err = svc.UpdateWorkplaces(ctx, testSupervisor, "missing", &dto.UpdateEmployeeWorkplacesRequest{})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}
