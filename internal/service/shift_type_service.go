package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

// ── 班次定义模块业务错误 ──

var (
	ErrShiftTypeNotFound = errors.New("班次不存在")
	ErrShiftTypeConflict = errors.New("班次已被其他人修改，请刷新后重试")
)

const defaultShiftColor = "#3788d8"

// ShiftTypeService 班次定义业务接口
type ShiftTypeService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.ShiftTypeResponse, error)
	List(ctx context.Context, caller Caller, req *dto.ShiftTypeListRequest) ([]dto.ShiftTypeResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type shiftTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftTypeService 创建 ShiftTypeService 实例
func NewShiftTypeService(repo *repository.Repository, logger *zap.Logger) ShiftTypeService {
	return &shiftTypeService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftTypeService) Create(ctx context.Context, caller Caller, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	if err := roster.ValidateShiftHours(req.HourStart, req.HourEnd); err != nil {
		return nil, err
	}
	days, err := roster.NewActiveDays(req.ActiveDays...)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Workplace.GetByID(ctx, caller.OrganizationID, req.WorkplaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkplaceNotFound
		}
		s.logger.Error("查询工作场所失败", zap.Error(err))
		return nil, err
	}

	st := &model.ShiftType{
		WorkplaceID: req.WorkplaceID,
		Name:        req.Name,
		HourStart:   req.HourStart,
		HourEnd:     req.HourEnd,
		Demand:      *req.Demand,
		Color:       req.Color,
		ActiveDays:  days.IntArray(),
		IsUsed:      true,
	}
	if st.Color == "" {
		st.Color = defaultShiftColor
	}
	if req.IsUsed != nil {
		st.IsUsed = *req.IsUsed
	}
	st.Version = 1
	st.CreatedBy = &caller.EmployeeID
	st.UpdatedBy = &caller.EmployeeID

	if err := s.repo.ShiftType.Create(ctx, st); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftTypeService) GetByID(ctx context.Context, caller Caller, id string) (*dto.ShiftTypeResponse, error) {
	st, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

func (s *shiftTypeService) get(ctx context.Context, orgID, id string) (*model.ShiftType, error) {
	st, err := s.repo.ShiftType.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return st, nil
}

// ────────────────────── List ──────────────────────

func (s *shiftTypeService) List(ctx context.Context, caller Caller, req *dto.ShiftTypeListRequest) ([]dto.ShiftTypeResponse, error) {
	list, err := s.repo.ShiftType.List(ctx, repository.ShiftTypeFilter{
		OrganizationID: caller.OrganizationID,
		WorkplaceID:    req.WorkplaceID,
		OnlyUsed:       req.OnlyUsed,
	})
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftTypeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toShiftTypeResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 修改班次定义；已提交的分配保持原有时间区间
func (s *shiftTypeService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	st, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if st.Version != req.Version {
		return nil, ErrShiftTypeConflict
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.HourStart != nil {
		st.HourStart = *req.HourStart
	}
	if req.HourEnd != nil {
		st.HourEnd = *req.HourEnd
	}
	if err := roster.ValidateShiftHours(st.HourStart, st.HourEnd); err != nil {
		return nil, err
	}
	if req.Demand != nil {
		st.Demand = *req.Demand
	}
	if req.Color != nil {
		st.Color = *req.Color
	}
	if req.ActiveDays != nil {
		days, err := roster.NewActiveDays(req.ActiveDays...)
		if err != nil {
			return nil, err
		}
		st.ActiveDays = days.IntArray()
	}
	if req.IsUsed != nil {
		st.IsUsed = *req.IsUsed
	}
	st.UpdatedBy = &caller.EmployeeID

	if err := s.repo.ShiftType.Update(ctx, st); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrShiftTypeConflict
		}
		s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftTypeService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.get(ctx, caller.OrganizationID, id); err != nil {
		return err
	}
	if err := s.repo.ShiftType.Delete(ctx, id, caller.EmployeeID); err != nil {
		s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// formatClock 数据库 TIME 列返回 HH:MM:SS，对外统一为 HH:MM
func formatClock(s string) string {
	c, err := roster.ParseClock(s)
	if err != nil {
		return s
	}
	return c.String()
}

func toShiftTypeResponse(st *model.ShiftType) *dto.ShiftTypeResponse {
	days := []int(st.ActiveDays.Normalize())
	return &dto.ShiftTypeResponse{
		ID:          st.ShiftTypeID,
		WorkplaceID: st.WorkplaceID,
		Name:        st.Name,
		HourStart:   formatClock(st.HourStart),
		HourEnd:     formatClock(st.HourEnd),
		Demand:      st.Demand,
		Color:       st.Color,
		ActiveDays:  days,
		IsUsed:      st.IsUsed,
		Version:     st.Version,
	}
}

func toShiftTypeBrief(st *model.ShiftType) dto.ShiftTypeBrief {
	if st == nil {
		return dto.ShiftTypeBrief{}
	}
	return dto.ShiftTypeBrief{
		ID:          st.ShiftTypeID,
		WorkplaceID: st.WorkplaceID,
		Name:        st.Name,
		HourStart:   formatClock(st.HourStart),
		HourEnd:     formatClock(st.HourEnd),
		Color:       st.Color,
	}
}
