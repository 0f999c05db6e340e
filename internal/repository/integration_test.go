//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/database"
	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
	"github.com/SaluSL/planimbly/pkg/jwt"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=planimbly password=planimbly dbname=planimbly_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// noopLocker 不做进程内互斥，只依赖数据库行锁
type noopLocker struct{}

func (noopLocker) Lock(context.Context, ...string) (func(), error) { return func() {}, nil }

type fixture struct {
	orgID      string
	workplace  *model.Workplace
	shiftType  *model.ShiftType
	employees  []*model.Employee
	supervisor service.Caller
}

// setupTestData 创建一个工作场所、demand=2 的全周班次与 n 名员工，返回清理函数
func setupTestData(t *testing.T, n int) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	f := &fixture{orgID: uuid.NewString()}

	f.workplace = &model.Workplace{WorkplaceID: uuid.NewString(), OrganizationID: f.orgID, Name: "前台"}
	if err := testDB.WithContext(ctx).Create(f.workplace).Error; err != nil {
		t.Fatalf("创建工作场所失败: %v", err)
	}

	f.shiftType = &model.ShiftType{
		ShiftTypeID: uuid.NewString(),
		WorkplaceID: f.workplace.WorkplaceID,
		Name:        "早班",
		HourStart:   "08:00",
		HourEnd:     "16:00",
		Demand:      2,
		Color:       "#3788d8",
		ActiveDays:  model.IntArray{1, 2, 3, 4, 5, 6, 7},
		IsUsed:      true,
	}
	f.shiftType.Version = 1
	if err := testDB.WithContext(ctx).Create(f.shiftType).Error; err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}

	for i := 0; i < n; i++ {
		e := &model.Employee{
			EmployeeID:     uuid.NewString(),
			OrganizationID: f.orgID,
			Username:       fmt.Sprintf("emp-%d-%d", i, time.Now().UnixNano()),
			FirstName:      "Jan",
			LastName:       fmt.Sprintf("K%d", i),
			IsActive:       true,
		}
		if err := testDB.WithContext(ctx).Create(e).Error; err != nil {
			t.Fatalf("创建员工失败: %v", err)
		}
		if err := testDB.WithContext(ctx).Create(&model.EmployeeWorkplace{EmployeeID: e.EmployeeID, WorkplaceID: f.workplace.WorkplaceID}).Error; err != nil {
			t.Fatalf("创建员工归属失败: %v", err)
		}
		f.employees = append(f.employees, e)
	}

	f.supervisor = service.Caller{EmployeeID: uuid.NewString(), OrganizationID: f.orgID, Role: jwt.RoleSupervisor}

	cleanup := func() {
		testDB.Exec("DELETE FROM assignment_logs WHERE shift_type_id = ?", f.shiftType.ShiftTypeID)
		testDB.Exec("DELETE FROM assignments WHERE shift_type_id = ?", f.shiftType.ShiftTypeID)
		testDB.Exec("DELETE FROM outbox_events WHERE payload->>'shift_type_id' = ?", f.shiftType.ShiftTypeID)
		testDB.Exec("DELETE FROM shift_types WHERE shift_type_id = ?", f.shiftType.ShiftTypeID)
		for _, e := range f.employees {
			testDB.Exec("DELETE FROM employees WHERE employee_id = ?", e.EmployeeID)
		}
		testDB.Exec("DELETE FROM workplaces WHERE workplace_id = ?", f.workplace.WorkplaceID)
	}
	return f, cleanup
}

func newAssignmentService(t *testing.T, locker service.Locker) service.AssignmentService {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatal(err)
	}
	days, _ := roster.NewActiveDays(1, 2, 3, 4, 5)
	settings := service.RosterSettings{Location: loc, WorkingDays: days}
	return service.NewAssignmentService(repository.NewRepository(testDB), locker, settings, "roster.assignments", zap.NewNop())
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	orgID := uuid.NewString()
	wp := &model.Workplace{WorkplaceID: uuid.NewString(), OrganizationID: orgID, Name: "回滚测试"}

	errBoom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Workplace.Create(ctx, wp); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("期望返回 boom，实际 %v", err)
	}

	if _, err := repo.Workplace.GetByID(ctx, orgID, wp.WorkplaceID); err == nil {
		testDB.Exec("DELETE FROM workplaces WHERE workplace_id = ?", wp.WorkplaceID)
		t.Fatal("期望回滚后查不到工作场所，但实际查到了")
	}
}

func TestTransaction_Commit(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	orgID := uuid.NewString()
	wp := &model.Workplace{WorkplaceID: uuid.NewString(), OrganizationID: orgID, Name: "提交测试"}
	defer testDB.Exec("DELETE FROM workplaces WHERE workplace_id = ?", wp.WorkplaceID)

	if err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Workplace.Create(ctx, wp)
	}); err != nil {
		t.Fatalf("事务提交失败: %v", err)
	}

	found, err := repo.Workplace.GetByID(ctx, orgID, wp.WorkplaceID)
	if err != nil {
		t.Fatalf("提交后查询失败: %v", err)
	}
	if found.Name != "提交测试" {
		t.Errorf("名称不符: %s", found.Name)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_ShiftType_ConflictDetected(t *testing.T) {
	f, cleanup := setupTestData(t, 0)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	copy1, _ := repo.ShiftType.GetByID(ctx, f.orgID, f.shiftType.ShiftTypeID)
	copy2, _ := repo.ShiftType.GetByID(ctx, f.orgID, f.shiftType.ShiftTypeID)

	copy1.Demand = 3
	if err := repo.ShiftType.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}
	if copy1.Version != 2 {
		t.Errorf("期望 version=2，实际 %d", copy1.Version)
	}

	copy2.Demand = 5
	if err := repo.ShiftType.Update(ctx, copy2); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 并发提交
// ═══════════════════════════════════════════════════════════

// 无进程锁时，仅靠 SELECT … FOR UPDATE 也不能超出 demand
func TestCommit_ConcurrentRespectsDemand(t *testing.T) {
	f, cleanup := setupTestData(t, 6)
	defer cleanup()

	svc := newAssignmentService(t, noopLocker{})
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		saturated int
		other     []error
	)
	for _, e := range f.employees {
		wg.Add(1)
		go func(employeeID string) {
			defer wg.Done()
			_, err := svc.Commit(ctx, f.supervisor, &dto.AssignmentRequest{
				EmployeeID:  employeeID,
				ShiftTypeID: f.shiftType.ShiftTypeID,
				Date:        "2030-03-04",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, roster.ErrDemandSaturated):
				saturated++
			default:
				other = append(other, err)
			}
		}(e.EmployeeID)
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("出现非预期错误: %v", other)
	}
	if admitted != 2 || saturated != 4 {
		t.Errorf("期望 2 条成功 4 条满员，实际成功 %d 满员 %d", admitted, saturated)
	}

	var count int64
	testDB.Model(&model.Assignment{}).Where("shift_type_id = ?", f.shiftType.ShiftTypeID).Count(&count)
	if count != 2 {
		t.Errorf("期望库中 2 条分配，实际 %d", count)
	}
}

func TestCommit_RevokeAndRecommitKeepsBalance(t *testing.T) {
	f, cleanup := setupTestData(t, 1)
	defer cleanup()

	svc := newAssignmentService(t, service.NewLocalLocker(time.Second))
	ctx := context.Background()
	emp := f.employees[0].EmployeeID
	req := &dto.AssignmentRequest{EmployeeID: emp, ShiftTypeID: f.shiftType.ShiftTypeID, Date: "2030-03-04"}

	first, err := svc.Commit(ctx, f.supervisor, req)
	if err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	before, err := svc.MonthlyBalance(ctx, f.supervisor, emp, 2030, time.March)
	if err != nil {
		t.Fatalf("查询工时失败: %v", err)
	}

	// 同一员工同一时段不可重复占用
	if _, err := svc.Commit(ctx, f.supervisor, req); !errors.Is(err, roster.ErrDoubleBooked) {
		t.Errorf("期望 ErrDoubleBooked，实际 %v", err)
	}

	if err := svc.Revoke(ctx, f.supervisor, first.ID); err != nil {
		t.Fatalf("撤销失败: %v", err)
	}
	if _, err := svc.Commit(ctx, f.supervisor, req); err != nil {
		t.Fatalf("重新提交失败: %v", err)
	}
	after, err := svc.MonthlyBalance(ctx, f.supervisor, emp, 2030, time.March)
	if err != nil {
		t.Fatalf("查询工时失败: %v", err)
	}

	if !before.ActualHours.Equal(after.ActualHours) || !before.DeltaHours.Equal(after.DeltaHours) {
		t.Errorf("撤销后重提交工时不一致: before=%+v after=%+v", before, after)
	}

	var logs int64
	testDB.Model(&model.AssignmentLog{}).Where("shift_type_id = ?", f.shiftType.ShiftTypeID).Count(&logs)
	if logs != 3 {
		t.Errorf("期望 3 条分配日志（提交、撤销、提交），实际 %d", logs)
	}
}
