package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
)

// ── 缺勤模块业务错误 ──

var (
	ErrAbsenceNotFound      = errors.New("缺勤记录不存在")
	ErrAbsenceInvalidPeriod = errors.New("缺勤开始时间必须早于结束时间")
	ErrAbsenceInvalidHours  = errors.New("缺勤抵扣工时不能为负数")
)

// AbsenceService 缺勤业务接口
// 缺勤变化会改变月度应出勤基线，写入后重算受影响月份的欠时标记
type AbsenceService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateAbsenceRequest) (*dto.AbsenceResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.AbsenceResponse, error)
	List(ctx context.Context, caller Caller, req *dto.AbsenceListRequest) ([]dto.AbsenceResponse, int64, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateAbsenceRequest) (*dto.AbsenceResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type absenceService struct {
	repo    *repository.Repository
	locker  Locker
	ledgers *monthLedgers
	logger  *zap.Logger
}

// NewAbsenceService 创建 AbsenceService 实例
func NewAbsenceService(repo *repository.Repository, locker Locker, settings RosterSettings, logger *zap.Logger) AbsenceService {
	return &absenceService{
		repo:    repo,
		locker:  locker,
		ledgers: &monthLedgers{settings: settings, logger: logger},
		logger:  logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *absenceService) Create(ctx context.Context, caller Caller, req *dto.CreateAbsenceRequest) (*dto.AbsenceResponse, error) {
	if !req.Start.Before(req.End) {
		return nil, ErrAbsenceInvalidPeriod
	}
	if req.HoursNumber.IsNegative() {
		return nil, ErrAbsenceInvalidHours
	}
	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	a := &model.Absence{
		EmployeeID:  emp.EmployeeID,
		Start:       req.Start,
		End:         req.End,
		Type:        req.Type,
		HoursNumber: req.HoursNumber,
	}
	a.CreatedBy = &caller.EmployeeID
	a.UpdatedBy = &caller.EmployeeID

	err = s.withRecompute(ctx, caller.OrganizationID, a.EmployeeID, a.Start, a.End, func(tx *repository.Repository) error {
		return tx.Absence.Create(ctx, a)
	})
	if err != nil {
		s.logger.Error("创建缺勤失败", zap.Error(err))
		return nil, err
	}

	a.Employee = emp
	return toAbsenceResponse(a), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *absenceService) GetByID(ctx context.Context, caller Caller, id string) (*dto.AbsenceResponse, error) {
	a, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanActFor(a.EmployeeID) {
		return nil, ErrForbidden
	}
	return toAbsenceResponse(a), nil
}

func (s *absenceService) get(ctx context.Context, orgID, id string) (*model.Absence, error) {
	a, err := s.repo.Absence.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAbsenceNotFound
		}
		s.logger.Error("查询缺勤失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ────────────────────── List ──────────────────────

func (s *absenceService) List(ctx context.Context, caller Caller, req *dto.AbsenceListRequest) ([]dto.AbsenceResponse, int64, error) {
	employeeID := req.EmployeeID
	if !caller.IsSupervisor() {
		if employeeID != "" && employeeID != caller.EmployeeID {
			return nil, 0, ErrForbidden
		}
		employeeID = caller.EmployeeID
	}

	loc := s.ledgers.settings.Location
	from, err := parseOptionalDate(req.From, loc)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(req.To, loc)
	if err != nil {
		return nil, 0, err
	}
	if to != nil {
		// 结束日期包含当天
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	list, total, err := s.repo.Absence.List(ctx, repository.AbsenceFilter{
		OrganizationID: caller.OrganizationID,
		EmployeeID:     employeeID,
		From:           from,
		To:             to,
		Page:           repository.Page{Offset: req.Offset(), Limit: req.GetPageSize()},
	})
	if err != nil {
		s.logger.Error("列出缺勤失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AbsenceResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAbsenceResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *absenceService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateAbsenceRequest) (*dto.AbsenceResponse, error) {
	a, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	oldStart, oldEnd := a.Start, a.End

	if req.Start != nil {
		a.Start = *req.Start
	}
	if req.End != nil {
		a.End = *req.End
	}
	if !a.Start.Before(a.End) {
		return nil, ErrAbsenceInvalidPeriod
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.HoursNumber != nil {
		if req.HoursNumber.IsNegative() {
			return nil, ErrAbsenceInvalidHours
		}
		a.HoursNumber = *req.HoursNumber
	}
	a.UpdatedBy = &caller.EmployeeID

	// 新旧区间覆盖的月份都需要重算
	from, to := minTime(oldStart, a.Start), maxTime(oldEnd, a.End)
	err = s.withRecompute(ctx, caller.OrganizationID, a.EmployeeID, from, to, func(tx *repository.Repository) error {
		return tx.Absence.Update(ctx, a)
	})
	if err != nil {
		s.logger.Error("更新缺勤失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAbsenceResponse(a), nil
}

// ────────────────────── Delete ──────────────────────

func (s *absenceService) Delete(ctx context.Context, caller Caller, id string) error {
	a, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}

	err = s.withRecompute(ctx, caller.OrganizationID, a.EmployeeID, a.Start, a.End, func(tx *repository.Repository) error {
		return tx.Absence.Delete(ctx, id, caller.EmployeeID)
	})
	if err != nil {
		s.logger.Error("删除缺勤失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// withRecompute 持有员工-月度锁，在同一事务内写入并重算 [from, to) 覆盖的月份
func (s *absenceService) withRecompute(ctx context.Context, orgID, employeeID string, from, to time.Time, write func(tx *repository.Repository) error) error {
	unlock, err := s.locker.Lock(ctx, spanLockKeys(employeeID, from, to, s.ledgers.settings.Location)...)
	if err != nil {
		return err
	}
	defer unlock()

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := write(tx); err != nil {
			return err
		}
		return s.ledgers.recomputeSpan(ctx, tx, orgID, employeeID, from, to)
	})
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func toAbsenceResponse(a *model.Absence) *dto.AbsenceResponse {
	brief := toEmployeeBrief(a.Employee)
	if brief.ID == "" {
		brief.ID = a.EmployeeID
	}
	return &dto.AbsenceResponse{
		ID:          a.AbsenceID,
		Employee:    brief,
		Start:       dto.FormatTime(a.Start),
		End:         dto.FormatTime(a.End),
		Type:        a.Type,
		HoursNumber: a.HoursNumber,
	}
}
