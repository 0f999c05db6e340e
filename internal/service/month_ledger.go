package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
)

// monthLedgers 从存储装配员工-月度账本，并把重算结果写回
type monthLedgers struct {
	settings RosterSettings
	logger   *zap.Logger
}

// build 装配账本：配额缺失时按 0 处理
func (m *monthLedgers) build(ctx context.Context, repo *repository.Repository, orgID, employeeID string, year int, month time.Month) (*roster.MonthLedger, error) {
	loc := m.settings.Location
	r := roster.MonthRange(year, month, loc)

	quota := decimal.Zero
	jt, err := repo.JobTime.Get(ctx, employeeID, year)
	switch {
	case err == nil:
		quota = jt.Month(month)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("查询工时配额失败: %w", err)
	}

	lastDay := r.End.AddDate(0, 0, -1)
	freeDays, err := repo.FreeDay.List(ctx, orgID, &r.Start, &lastDay)
	if err != nil {
		return nil, fmt.Errorf("查询公休日失败: %w", err)
	}

	absences, err := repo.Absence.ListOverlapping(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("查询缺勤失败: %w", err)
	}

	return roster.NewMonthLedger(roster.MonthParams{
		Year:        year,
		Month:       month,
		Location:    loc,
		Quota:       quota,
		WorkingDays: m.settings.WorkingDays,
		FreeDays:    roster.NewFreeDaySet(freeDays),
		Absences:    absences,
	}), nil
}

// monthAssignments 员工某月的全部分配
func (m *monthLedgers) monthAssignments(ctx context.Context, repo *repository.Repository, employeeID string, year int, month time.Month) ([]model.Assignment, error) {
	r := roster.MonthRange(year, month, m.settings.Location)
	as, err := repo.Assignment.ListByEmployeeRange(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("查询月度分配失败: %w", err)
	}
	return as, nil
}

// recompute 顺序重算员工某月全部分配的欠时标记，仅写回发生变化的行
// 返回重算后（已排序）的分配
func (m *monthLedgers) recompute(ctx context.Context, repo *repository.Repository, orgID, employeeID string, year int, month time.Month) ([]model.Assignment, error) {
	ledger, err := m.build(ctx, repo, orgID, employeeID, year, month)
	if err != nil {
		return nil, err
	}
	as, err := m.monthAssignments(ctx, repo, employeeID, year, month)
	if err != nil {
		return nil, err
	}

	changes := ledger.Recompute(as)
	for _, c := range changes {
		if err := repo.Assignment.UpdateNegativeFlag(ctx, c.AssignmentID, c.NegativeFlag); err != nil {
			return nil, fmt.Errorf("更新欠时标记失败: %w", err)
		}
	}
	if len(changes) > 0 {
		m.logger.Debug("欠时标记已重算",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("changed", len(changes)),
		)
	}
	return as, nil
}

// recomputeSpan 重算 [from, to) 覆盖到的每个月
func (m *monthLedgers) recomputeSpan(ctx context.Context, repo *repository.Repository, orgID, employeeID string, from, to time.Time) error {
	loc := m.settings.Location
	if !to.After(from) {
		to = from.Add(time.Nanosecond)
	}
	last := roster.DateOf(to.Add(-time.Nanosecond), loc)
	for cur := time.Date(from.In(loc).Year(), from.In(loc).Month(), 1, 0, 0, 0, 0, loc); !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		if _, err := m.recompute(ctx, repo, orgID, employeeID, cur.Year(), cur.Month()); err != nil {
			return err
		}
	}
	return nil
}

// spanLockKeys [from, to) 覆盖到的每个员工-月度锁 key
func spanLockKeys(employeeID string, from, to time.Time, loc *time.Location) []string {
	if !to.After(from) {
		to = from.Add(time.Nanosecond)
	}
	last := roster.DateOf(to.Add(-time.Nanosecond), loc)
	var keys []string
	for cur := time.Date(from.In(loc).Year(), from.In(loc).Month(), 1, 0, 0, 0, 0, loc); !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		keys = append(keys, employeeLockKey(employeeID, roster.MonthKey(cur, loc)))
	}
	return keys
}
