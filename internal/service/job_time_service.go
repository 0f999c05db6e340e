package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
)

// ── 工时配额模块业务错误 ──

var (
	ErrJobTimeNotFound     = errors.New("该员工当年未设置工时配额")
	ErrJobTimeInvalidHours = errors.New("月度配额不能为负数")
)

// JobTimeService 员工年度工时配额业务接口
type JobTimeService interface {
	// Upsert 覆盖设置员工某年十二个月的配额，并重算该年全部月份的欠时标记
	Upsert(ctx context.Context, caller Caller, req *dto.UpsertJobTimeRequest) (*dto.JobTimeResponse, error)
	Get(ctx context.Context, caller Caller, employeeID string, year int) (*dto.JobTimeResponse, error)
	ListByEmployee(ctx context.Context, caller Caller, employeeID string) ([]dto.JobTimeResponse, error)
	Delete(ctx context.Context, caller Caller, employeeID string, year int) error
}

type jobTimeService struct {
	repo    *repository.Repository
	locker  Locker
	ledgers *monthLedgers
	logger  *zap.Logger
}

// NewJobTimeService 创建 JobTimeService 实例
func NewJobTimeService(repo *repository.Repository, locker Locker, settings RosterSettings, logger *zap.Logger) JobTimeService {
	return &jobTimeService{
		repo:    repo,
		locker:  locker,
		ledgers: &monthLedgers{settings: settings, logger: logger},
		logger:  logger,
	}
}

// ────────────────────── Upsert ──────────────────────

func (s *jobTimeService) Upsert(ctx context.Context, caller Caller, req *dto.UpsertJobTimeRequest) (*dto.JobTimeResponse, error) {
	if _, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, req.EmployeeID); err != nil {
		return nil, err
	}

	jt := &model.JobTime{EmployeeID: req.EmployeeID, Year: req.Year}
	for m, h := range monthlyHoursOf(&req.MonthlyHours) {
		if h.IsNegative() {
			return nil, ErrJobTimeInvalidHours
		}
		jt.SetMonth(m, h.Round(2))
	}
	jt.CreatedBy = &caller.EmployeeID
	jt.UpdatedBy = &caller.EmployeeID

	err := s.withYearRecompute(ctx, caller.OrganizationID, req.EmployeeID, req.Year, func(tx *repository.Repository) error {
		return tx.JobTime.Upsert(ctx, jt)
	})
	if err != nil {
		s.logger.Error("设置工时配额失败",
			zap.String("employee_id", req.EmployeeID),
			zap.Int("year", req.Year),
			zap.Error(err),
		)
		return nil, err
	}
	return toJobTimeResponse(jt), nil
}

// ────────────────────── Get ──────────────────────

func (s *jobTimeService) Get(ctx context.Context, caller Caller, employeeID string, year int) (*dto.JobTimeResponse, error) {
	if !caller.CanActFor(employeeID) {
		return nil, ErrForbidden
	}
	if _, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID); err != nil {
		return nil, err
	}

	jt, err := s.repo.JobTime.Get(ctx, employeeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobTimeNotFound
		}
		s.logger.Error("查询工时配额失败", zap.Error(err))
		return nil, err
	}
	return toJobTimeResponse(jt), nil
}

// ────────────────────── ListByEmployee ──────────────────────

func (s *jobTimeService) ListByEmployee(ctx context.Context, caller Caller, employeeID string) ([]dto.JobTimeResponse, error) {
	if !caller.CanActFor(employeeID) {
		return nil, ErrForbidden
	}
	if _, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID); err != nil {
		return nil, err
	}

	list, err := s.repo.JobTime.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("列出工时配额失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.JobTimeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toJobTimeResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *jobTimeService) Delete(ctx context.Context, caller Caller, employeeID string, year int) error {
	if _, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID); err != nil {
		return err
	}
	if _, err := s.repo.JobTime.Get(ctx, employeeID, year); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobTimeNotFound
		}
		s.logger.Error("查询工时配额失败", zap.Error(err))
		return err
	}

	err := s.withYearRecompute(ctx, caller.OrganizationID, employeeID, year, func(tx *repository.Repository) error {
		return tx.JobTime.Delete(ctx, employeeID, year)
	})
	if err != nil {
		s.logger.Error("删除工时配额失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func (s *jobTimeService) withYearRecompute(ctx context.Context, orgID, employeeID string, year int, write func(tx *repository.Repository) error) error {
	loc := s.ledgers.settings.Location
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)

	unlock, err := s.locker.Lock(ctx, spanLockKeys(employeeID, from, to, loc)...)
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

func monthlyHoursOf(h *dto.MonthlyHours) map[time.Month]decimal.Decimal {
	return map[time.Month]decimal.Decimal{
		time.January:   h.January,
		time.February:  h.February,
		time.March:     h.March,
		time.April:     h.April,
		time.May:       h.May,
		time.June:      h.June,
		time.July:      h.July,
		time.August:    h.August,
		time.September: h.September,
		time.October:   h.October,
		time.November:  h.November,
		time.December:  h.December,
	}
}

func toJobTimeResponse(jt *model.JobTime) *dto.JobTimeResponse {
	return &dto.JobTimeResponse{
		ID:         jt.JobTimeID,
		EmployeeID: jt.EmployeeID,
		Year:       jt.Year,
		MonthlyHours: dto.MonthlyHours{
			January:   jt.January,
			February:  jt.February,
			March:     jt.March,
			April:     jt.April,
			May:       jt.May,
			June:      jt.June,
			July:      jt.July,
			August:    jt.August,
			September: jt.September,
			October:   jt.October,
			November:  jt.November,
			December:  jt.December,
		},
	}
}
