package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/pkg/logger"
)

// ── 排班分配模块业务错误 ──

var (
	ErrAssignmentNotFound = errors.New("分配记录不存在")
)

// AssignmentService 排班分配业务接口
//
// 说明：
//   - Propose 只读试算，不加锁，结果仅供参考
//   - Commit / Revoke 持有班次实例锁与员工-月度锁，在事务内重新校验、写入并顺序重算欠时标记
//   - 准入拒绝以 roster.Err* 返回，可用 roster.ReasonOf 取机器码
type AssignmentService interface {
	Propose(ctx context.Context, caller Caller, req *dto.AssignmentRequest) (*dto.ProposalResponse, error)
	Commit(ctx context.Context, caller Caller, req *dto.AssignmentRequest) (*dto.AssignmentResponse, error)
	Revoke(ctx context.Context, caller Caller, id string) error
	MonthlyBalance(ctx context.Context, caller Caller, employeeID string, year int, month time.Month) (*dto.BalanceResponse, error)
	List(ctx context.Context, caller Caller, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	ListLogs(ctx context.Context, caller Caller, req *dto.AssignmentLogListRequest) ([]dto.AssignmentLogResponse, int64, error)
}

type assignmentService struct {
	repo       *repository.Repository
	locker     Locker
	ledgers    *monthLedgers
	eventTopic string
	balances   singleflight.Group
	logger     *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, locker Locker, settings RosterSettings, eventTopic string, logger *zap.Logger) AssignmentService {
	return &assignmentService{
		repo:       repo,
		locker:     locker,
		ledgers:    &monthLedgers{settings: settings, logger: logger},
		eventTopic: eventTopic,
		logger:     logger,
	}
}

// ────────────────────── Propose ──────────────────────

func (s *assignmentService) Propose(ctx context.Context, caller Caller, req *dto.AssignmentRequest) (*dto.ProposalResponse, error) {
	if !caller.CanActFor(req.EmployeeID) {
		return nil, ErrForbidden
	}
	date, err := parseDate(req.Date, s.location())
	if err != nil {
		return nil, err
	}

	st, err := s.loadShiftType(ctx, s.repo, caller.OrganizationID, req.ShiftTypeID, false)
	if err != nil {
		return nil, err
	}
	emp, err := s.loadEmployee(ctx, s.repo, caller.OrganizationID, req.EmployeeID, false)
	if err != nil {
		return nil, err
	}

	cand, err := s.gather(ctx, s.repo, emp, st, date)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProposalResponse{RemainingSlots: roster.RemainingSlots(st, cand.Committed)}
	adm, err := roster.Validate(cand, s.location())
	if err != nil {
		if !roster.IsRejection(err) {
			return nil, err
		}
		resp.Reason = string(roster.ReasonOf(err))
		resp.Message = err.Error()
		return resp, nil
	}

	resp.Admitted = true
	resp.Start = dto.FormatTime(adm.Interval.Start)
	resp.End = dto.FormatTime(adm.Interval.End)
	resp.DeductedHours = adm.DeductedHours
	return resp, nil
}

// ────────────────────── Commit ──────────────────────

func (s *assignmentService) Commit(ctx context.Context, caller Caller, req *dto.AssignmentRequest) (*dto.AssignmentResponse, error) {
	if !caller.CanActFor(req.EmployeeID) {
		return nil, ErrForbidden
	}
	loc := s.location()
	date, err := parseDate(req.Date, loc)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx,
		shiftLockKey(req.ShiftTypeID, roster.DateKey(date, loc)),
		employeeLockKey(req.EmployeeID, roster.MonthKey(date, loc)),
	)
	if err != nil {
		if isLockTimeout(err) {
			s.logger.Warn("获取分配锁超时",
				zap.String("employee_id", req.EmployeeID),
				zap.String("shift_type_id", req.ShiftTypeID),
				zap.String("date", req.Date),
			)
		}
		return nil, err
	}
	defer unlock()

	var (
		created *model.Assignment
		st      *model.ShiftType
		emp     *model.Employee
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if st, err = s.loadShiftType(ctx, tx, caller.OrganizationID, req.ShiftTypeID, true); err != nil {
			return err
		}
		if emp, err = s.loadEmployee(ctx, tx, caller.OrganizationID, req.EmployeeID, true); err != nil {
			return err
		}

		cand, err := s.gather(ctx, tx, emp, st, date)
		if err != nil {
			return err
		}
		adm, err := roster.Validate(cand, loc)
		if err != nil {
			return err
		}

		now := time.Now()
		a := &model.Assignment{
			AssignmentID: uuid.NewString(),
			ShiftTypeID:  st.ShiftTypeID,
			EmployeeID:   emp.EmployeeID,
			Start:        adm.Interval.Start,
			End:          adm.Interval.End,
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		a.CreatedBy = &caller.EmployeeID
		a.UpdatedBy = &caller.EmployeeID

		if err := tx.Assignment.Create(ctx, a); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return roster.ErrDoubleBooked
			}
			return fmt.Errorf("写入分配失败: %w", err)
		}

		month, err := s.ledgers.recompute(ctx, tx, caller.OrganizationID, emp.EmployeeID, date.Year(), date.Month())
		if err != nil {
			return err
		}
		for i := range month {
			if month[i].AssignmentID == a.AssignmentID {
				a.NegativeFlag = month[i].NegativeFlag
			}
		}

		if err := s.record(ctx, tx, caller, a, model.AssignmentActionCommit, EventAssignmentCommitted); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		if roster.IsRejection(err) {
			s.logger.Info("分配被拒绝",
				zap.String("request_id", logger.RequestIDFrom(ctx)),
				zap.String("employee_id", req.EmployeeID),
				zap.String("shift_type_id", req.ShiftTypeID),
				zap.String("date", req.Date),
				zap.String("reason", string(roster.ReasonOf(err))),
			)
			return nil, err
		}
		if !errors.Is(err, ErrShiftTypeNotFound) && !errors.Is(err, ErrEmployeeNotFound) {
			s.logger.Error("提交分配失败", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("分配已提交",
		zap.String("assignment_id", created.AssignmentID),
		zap.String("employee_id", created.EmployeeID),
		zap.String("shift_type_id", created.ShiftTypeID),
		zap.Bool("negative_flag", created.NegativeFlag),
	)

	created.ShiftType = st
	created.Employee = emp
	return toAssignmentResponse(created), nil
}

// ────────────────────── Revoke ──────────────────────

// Revoke 删除分配并重算该员工当月其余分配的欠时标记
func (s *assignmentService) Revoke(ctx context.Context, caller Caller, id string) error {
	a, err := s.get(ctx, s.repo, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	if !caller.CanActFor(a.EmployeeID) {
		return ErrForbidden
	}

	loc := s.location()
	unlock, err := s.locker.Lock(ctx,
		shiftLockKey(a.ShiftTypeID, roster.DateKey(a.Start, loc)),
		employeeLockKey(a.EmployeeID, roster.MonthKey(a.Start, loc)),
	)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 加锁后重新读取，防止并发撤销
		cur, err := s.get(ctx, tx, caller.OrganizationID, id)
		if err != nil {
			return err
		}
		if err := tx.Assignment.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除分配失败: %w", err)
		}

		start := cur.Start.In(loc)
		if _, err := s.ledgers.recompute(ctx, tx, caller.OrganizationID, cur.EmployeeID, start.Year(), start.Month()); err != nil {
			return err
		}
		return s.record(ctx, tx, caller, cur, model.AssignmentActionRevoke, EventAssignmentRevoked)
	})
	if err != nil {
		if !errors.Is(err, ErrAssignmentNotFound) {
			s.logger.Error("撤销分配失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("分配已撤销", zap.String("assignment_id", id), zap.String("employee_id", a.EmployeeID))
	return nil
}

// ────────────────────── MonthlyBalance ──────────────────────

func (s *assignmentService) MonthlyBalance(ctx context.Context, caller Caller, employeeID string, year int, month time.Month) (*dto.BalanceResponse, error) {
	if !caller.CanActFor(employeeID) {
		return nil, ErrForbidden
	}
	if _, err := s.loadEmployee(ctx, s.repo, caller.OrganizationID, employeeID, false); err != nil {
		return nil, err
	}

	// 同一员工-月份的并发查询合并为一次计算
	key := fmt.Sprintf("%s:%s:%04d-%02d", caller.OrganizationID, employeeID, year, int(month))
	// 合并后的计算不随首个请求取消
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.balances.Do(key, func() (interface{}, error) {
		ledger, err := s.ledgers.build(shared, s.repo, caller.OrganizationID, employeeID, year, month)
		if err != nil {
			return nil, err
		}
		as, err := s.ledgers.monthAssignments(shared, s.repo, employeeID, year, month)
		if err != nil {
			return nil, err
		}
		return ledger.Balance(as), nil
	})
	if err != nil {
		s.logger.Error("计算月度工时失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	b := v.(roster.Balance)
	return &dto.BalanceResponse{
		EmployeeID:    employeeID,
		Year:          year,
		Month:         int(month),
		ExpectedHours: b.Expected,
		ActualHours:   b.Actual,
		DeltaHours:    b.Delta,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, caller Caller, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	employeeID := req.EmployeeID
	if !caller.IsSupervisor() {
		if employeeID != "" && employeeID != caller.EmployeeID {
			return nil, ErrForbidden
		}
		employeeID = caller.EmployeeID
	}

	loc := s.location()
	from, err := parseOptionalDate(req.From, loc)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(req.To, loc)
	if err != nil {
		return nil, err
	}
	if to != nil {
		// 结束日期包含当天
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	list, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{
		OrganizationID: caller.OrganizationID,
		EmployeeID:     employeeID,
		WorkplaceID:    req.WorkplaceID,
		From:           from,
		To:             to,
	})
	if err != nil {
		s.logger.Error("列出分配失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssignmentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── ListLogs ──────────────────────

func (s *assignmentService) ListLogs(ctx context.Context, caller Caller, req *dto.AssignmentLogListRequest) ([]dto.AssignmentLogResponse, int64, error) {
	employeeID := req.EmployeeID
	if !caller.IsSupervisor() {
		if employeeID != "" && employeeID != caller.EmployeeID {
			return nil, 0, ErrForbidden
		}
		employeeID = caller.EmployeeID
	}

	logs, total, err := s.repo.AssignmentLog.List(ctx, caller.OrganizationID, employeeID,
		repository.Page{Offset: req.Offset(), Limit: req.GetPageSize()})
	if err != nil {
		s.logger.Error("列出分配日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.AssignmentLogResponse{
			ID:           l.LogID,
			AssignmentID: l.AssignmentID,
			EmployeeID:   l.EmployeeID,
			ShiftTypeID:  l.ShiftTypeID,
			Action:       l.Action,
			Start:        dto.FormatTime(l.Start),
			End:          dto.FormatTime(l.End),
			NegativeFlag: l.NegativeFlag,
			OperatorID:   l.OperatorID,
			CreatedAt:    dto.FormatTime(l.CreatedAt),
		})
	}
	return result, total, nil
}

// ── 辅助函数 ──

func (s *assignmentService) location() *time.Location {
	return s.ledgers.settings.Location
}

// gather 收集目标日期的准入事实
func (s *assignmentService) gather(ctx context.Context, repo *repository.Repository, emp *model.Employee, st *model.ShiftType, date time.Time) (roster.Candidate, error) {
	day := roster.DayRange(date, s.location())

	existing, err := repo.Assignment.ListByEmployeeRange(ctx, emp.EmployeeID, day.Start, day.End)
	if err != nil {
		return roster.Candidate{}, fmt.Errorf("查询员工已有分配失败: %w", err)
	}
	absences, err := repo.Absence.ListOverlapping(ctx, emp.EmployeeID, day.Start, day.End)
	if err != nil {
		return roster.Candidate{}, fmt.Errorf("查询员工缺勤失败: %w", err)
	}
	committed, err := repo.Assignment.CountByShiftRange(ctx, st.ShiftTypeID, day.Start, day.End)
	if err != nil {
		return roster.Candidate{}, fmt.Errorf("统计班次已分配人数失败: %w", err)
	}

	return roster.Candidate{
		Employee:  emp,
		Shift:     st,
		Date:      date,
		Existing:  existing,
		Absences:  absences,
		Committed: int(committed),
	}, nil
}

// record 在同一事务内写入审计日志与外发事件
func (s *assignmentService) record(ctx context.Context, tx *repository.Repository, caller Caller, a *model.Assignment, action, eventType string) error {
	if err := tx.AssignmentLog.Create(ctx, &model.AssignmentLog{
		AssignmentID: a.AssignmentID,
		EmployeeID:   a.EmployeeID,
		ShiftTypeID:  a.ShiftTypeID,
		Action:       action,
		Start:        a.Start,
		End:          a.End,
		NegativeFlag: a.NegativeFlag,
		OperatorID:   caller.EmployeeID,
		CreatedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("写入分配日志失败: %w", err)
	}

	event, err := newAssignmentEvent(ctx, s.eventTopic, eventType, a, caller)
	if err != nil {
		return fmt.Errorf("构造外发事件失败: %w", err)
	}
	if err := tx.Outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("写入外发事件失败: %w", err)
	}
	return nil
}

func (s *assignmentService) get(ctx context.Context, repo *repository.Repository, orgID, id string) (*model.Assignment, error) {
	a, err := repo.Assignment.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("查询分配失败: %w", err)
	}
	return a, nil
}

func (s *assignmentService) loadShiftType(ctx context.Context, repo *repository.Repository, orgID, id string, forUpdate bool) (*model.ShiftType, error) {
	get := repo.ShiftType.GetByID
	if forUpdate {
		get = repo.ShiftType.GetForUpdate
	}
	st, err := get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	return st, nil
}

func (s *assignmentService) loadEmployee(ctx context.Context, repo *repository.Repository, orgID, id string, forUpdate bool) (*model.Employee, error) {
	get := repo.Employee.GetByID
	if forUpdate {
		get = repo.Employee.GetForUpdate
	}
	emp, err := get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	return emp, nil
}

func toAssignmentResponse(a *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:           a.AssignmentID,
		EmployeeID:   a.EmployeeID,
		ShiftType:    toShiftTypeBrief(a.ShiftType),
		Start:        dto.FormatTime(a.Start),
		End:          dto.FormatTime(a.End),
		NegativeFlag: a.NegativeFlag,
		CreatedAt:    dto.FormatTime(a.CreatedAt),
	}
	if resp.ShiftType.ID == "" {
		resp.ShiftType.ID = a.ShiftTypeID
	}
	if a.Employee != nil {
		brief := toEmployeeBrief(a.Employee)
		resp.Employee = &brief
	}
	return resp
}
