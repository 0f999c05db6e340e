package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
)

// ── 公休日模块业务错误 ──

var (
	ErrFreeDayNotFound   = errors.New("公休日不存在")
	ErrFreeDayExists     = errors.New("该日期已登记为公休日")
	ErrFreeDayICSEmpty   = errors.New("ICS 中没有可导入的日期")
	ErrFreeDayICSInvalid = errors.New("ICS 格式解析失败")
)

// FreeDayService 组织公休日业务接口
// 公休日改变组织内所有员工的月度应出勤基线，写入后重算受影响月份
type FreeDayService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateFreeDayRequest) (*dto.FreeDayResponse, error)
	List(ctx context.Context, caller Caller, req *dto.FreeDayListRequest) ([]dto.FreeDayResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateFreeDayRequest) (*dto.FreeDayResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
	ImportICS(ctx context.Context, caller Caller, reader io.Reader, req *dto.ImportFreeDaysRequest) (*dto.ImportFreeDaysResponse, error)
}

type freeDayService struct {
	repo    *repository.Repository
	locker  Locker
	ledgers *monthLedgers
	logger  *zap.Logger
}

// NewFreeDayService 创建 FreeDayService 实例
func NewFreeDayService(repo *repository.Repository, locker Locker, settings RosterSettings, logger *zap.Logger) FreeDayService {
	return &freeDayService{
		repo:    repo,
		locker:  locker,
		ledgers: &monthLedgers{settings: settings, logger: logger},
		logger:  logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *freeDayService) Create(ctx context.Context, caller Caller, req *dto.CreateFreeDayRequest) (*dto.FreeDayResponse, error) {
	day, err := parseDate(req.Day, s.location())
	if err != nil {
		return nil, err
	}
	if err := s.ensureVacant(ctx, caller.OrganizationID, day, ""); err != nil {
		return nil, err
	}

	d := &model.FreeDay{
		OrganizationID: caller.OrganizationID,
		Day:            day,
		Name:           req.Name,
	}
	d.CreatedBy = &caller.EmployeeID
	d.UpdatedBy = &caller.EmployeeID

	err = s.withOrgRecompute(ctx, caller.OrganizationID, []time.Time{day}, func(tx *repository.Repository) error {
		return tx.FreeDay.Create(ctx, d)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFreeDayExists
		}
		s.logger.Error("创建公休日失败", zap.Error(err))
		return nil, err
	}
	return toFreeDayResponse(d), nil
}

// ────────────────────── List ──────────────────────

func (s *freeDayService) List(ctx context.Context, caller Caller, req *dto.FreeDayListRequest) ([]dto.FreeDayResponse, error) {
	from, err := parseOptionalDate(req.From, s.location())
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(req.To, s.location())
	if err != nil {
		return nil, err
	}

	list, err := s.repo.FreeDay.List(ctx, caller.OrganizationID, from, to)
	if err != nil {
		s.logger.Error("列出公休日失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.FreeDayResponse, 0, len(list))
	for i := range list {
		result = append(result, *toFreeDayResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *freeDayService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateFreeDayRequest) (*dto.FreeDayResponse, error) {
	d, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	affected := []time.Time{d.Day}

	if req.Day != nil {
		day, err := parseDate(*req.Day, s.location())
		if err != nil {
			return nil, err
		}
		if err := s.ensureVacant(ctx, caller.OrganizationID, day, d.FreeDayID); err != nil {
			return nil, err
		}
		d.Day = day
		affected = append(affected, day)
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	d.UpdatedBy = &caller.EmployeeID

	err = s.withOrgRecompute(ctx, caller.OrganizationID, affected, func(tx *repository.Repository) error {
		return tx.FreeDay.Update(ctx, d)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrFreeDayExists
		}
		s.logger.Error("更新公休日失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toFreeDayResponse(d), nil
}

// ────────────────────── Delete ──────────────────────

func (s *freeDayService) Delete(ctx context.Context, caller Caller, id string) error {
	d, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	err = s.withOrgRecompute(ctx, caller.OrganizationID, []time.Time{d.Day}, func(tx *repository.Repository) error {
		return tx.FreeDay.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除公休日失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ImportICS ──────────────────────

// ImportICS 从 ICS 日历批量导入公休日；已存在的日期只刷新名称
func (s *freeDayService) ImportICS(ctx context.Context, caller Caller, reader io.Reader, req *dto.ImportFreeDaysRequest) (*dto.ImportFreeDaysResponse, error) {
	loc := s.location()
	from, err := parseOptionalDate(req.From, loc)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(req.To, loc)
	if err != nil {
		return nil, err
	}

	days, err := ParseFreeDaysICS(reader, caller.OrganizationID, loc, from, to)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, ErrFreeDayICSEmpty
	}

	first, last := days[0].Day, days[len(days)-1].Day
	existing, err := s.repo.FreeDay.List(ctx, caller.OrganizationID, &first, &last)
	if err != nil {
		s.logger.Error("查询已有公休日失败", zap.Error(err))
		return nil, err
	}
	present := roster.NewFreeDaySet(existing)

	resp := &dto.ImportFreeDaysResponse{Days: make([]string, 0, len(days))}
	dates := make([]time.Time, 0, len(days))
	for i := range days {
		days[i].CreatedBy = &caller.EmployeeID
		days[i].UpdatedBy = &caller.EmployeeID
		if present.Contains(days[i].Day) {
			resp.Updated++
		} else {
			resp.Imported++
		}
		resp.Days = append(resp.Days, days[i].Day.Format(time.DateOnly))
		dates = append(dates, days[i].Day)
	}

	err = s.withOrgRecompute(ctx, caller.OrganizationID, dates, func(tx *repository.Repository) error {
		_, err := tx.FreeDay.UpsertBatch(ctx, days)
		return err
	})
	if err != nil {
		s.logger.Error("导入公休日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 公休日导入完成",
		zap.String("organization_id", caller.OrganizationID),
		zap.Int("imported", resp.Imported),
		zap.Int("updated", resp.Updated),
	)
	return resp, nil
}

// ── 辅助函数 ──

func (s *freeDayService) location() *time.Location {
	return s.ledgers.settings.Location
}

func (s *freeDayService) get(ctx context.Context, orgID, id string) (*model.FreeDay, error) {
	d, err := s.repo.FreeDay.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFreeDayNotFound
		}
		s.logger.Error("查询公休日失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// ensureVacant 同一组织同一日期只能有一条公休日（exceptID 为正在修改的记录）
func (s *freeDayService) ensureVacant(ctx context.Context, orgID string, day time.Time, exceptID string) error {
	list, err := s.repo.FreeDay.List(ctx, orgID, &day, &day)
	if err != nil {
		s.logger.Error("查询公休日失败", zap.Error(err))
		return err
	}
	for _, d := range list {
		if d.FreeDayID != exceptID {
			return ErrFreeDayExists
		}
	}
	return nil
}

// withOrgRecompute 持有组织内全部员工相关月份的锁，在同一事务内写入并重算
func (s *freeDayService) withOrgRecompute(ctx context.Context, orgID string, dates []time.Time, write func(tx *repository.Repository) error) error {
	loc := s.location()
	months := make(map[string]time.Time)
	for _, d := range dates {
		first := time.Date(d.In(loc).Year(), d.In(loc).Month(), 1, 0, 0, 0, 0, loc)
		months[roster.MonthKey(first, loc)] = first
	}

	employees, _, err := s.repo.Employee.List(ctx, repository.EmployeeFilter{
		OrganizationID:     orgID,
		IncludeSupervisors: true,
	})
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(employees)*len(months))
	for _, e := range employees {
		for key := range months {
			keys = append(keys, employeeLockKey(e.EmployeeID, key))
		}
	}
	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := write(tx); err != nil {
			return err
		}
		for _, e := range employees {
			for _, first := range months {
				if _, err := s.ledgers.recompute(ctx, tx, orgID, e.EmployeeID, first.Year(), first.Month()); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func toFreeDayResponse(d *model.FreeDay) *dto.FreeDayResponse {
	return &dto.FreeDayResponse{
		ID:   d.FreeDayID,
		Day:  d.Day.Format(time.DateOnly),
		Name: d.Name,
	}
}
