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
)

// ── 偏好模块业务错误 ──

var (
	ErrPreferenceNotFound = errors.New("偏好不存在")
)

// PreferenceService 员工班次偏好业务接口
type PreferenceService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreatePreferenceRequest) (*dto.PreferenceResponse, error)
	List(ctx context.Context, caller Caller, req *dto.PreferenceListRequest) ([]dto.PreferenceResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type preferenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(repo *repository.Repository, logger *zap.Logger) PreferenceService {
	return &preferenceService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *preferenceService) Create(ctx context.Context, caller Caller, req *dto.CreatePreferenceRequest) (*dto.PreferenceResponse, error) {
	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = caller.EmployeeID
	}
	if !caller.CanActFor(employeeID) {
		return nil, ErrForbidden
	}

	days, err := roster.NewActiveDays(req.ActiveDays...)
	if err != nil {
		return nil, err
	}

	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID)
	if err != nil {
		return nil, err
	}
	st, err := s.loadShiftType(ctx, caller.OrganizationID, req.ShiftTypeID)
	if err != nil {
		return nil, err
	}
	if err := roster.CheckPreference(emp, st, days); err != nil {
		s.logger.Info("偏好登记被拒绝",
			zap.String("employee_id", employeeID),
			zap.String("shift_type_id", st.ShiftTypeID),
			zap.String("reason", string(roster.ReasonOf(err))),
		)
		return nil, err
	}

	p := &model.Preference{
		EmployeeID:  employeeID,
		ShiftTypeID: st.ShiftTypeID,
		ActiveDays:  days.IntArray(),
	}
	p.CreatedBy = &caller.EmployeeID
	p.UpdatedBy = &caller.EmployeeID

	if err := s.repo.Preference.Create(ctx, p); err != nil {
		s.logger.Error("创建偏好失败", zap.Error(err))
		return nil, err
	}
	p.ShiftType = st
	return toPreferenceResponse(p), nil
}

// ────────────────────── List ──────────────────────

func (s *preferenceService) List(ctx context.Context, caller Caller, req *dto.PreferenceListRequest) ([]dto.PreferenceResponse, error) {
	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = caller.EmployeeID
	}
	if !caller.CanActFor(employeeID) {
		return nil, ErrForbidden
	}
	if _, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID); err != nil {
		return nil, err
	}

	list, err := s.repo.Preference.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("列出偏好失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PreferenceResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPreferenceResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *preferenceService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	p, emp, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	days, err := roster.NewActiveDays(req.ActiveDays...)
	if err != nil {
		return nil, err
	}
	st, err := s.loadShiftType(ctx, caller.OrganizationID, p.ShiftTypeID)
	if err != nil {
		return nil, err
	}
	if err := roster.CheckPreference(emp, st, days); err != nil {
		return nil, err
	}

	p.ActiveDays = days.IntArray()
	p.UpdatedBy = &caller.EmployeeID
	if err := s.repo.Preference.Update(ctx, p); err != nil {
		s.logger.Error("更新偏好失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	p.ShiftType = st
	return toPreferenceResponse(p), nil
}

// ────────────────────── Delete ──────────────────────

func (s *preferenceService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, _, err := s.getOwned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Preference.Delete(ctx, id); err != nil {
		s.logger.Error("删除偏好失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// getOwned 读取偏好并确认调用者有权操作（员工须在同一组织内）
func (s *preferenceService) getOwned(ctx context.Context, caller Caller, id string) (*model.Preference, *model.Employee, error) {
	p, err := s.repo.Preference.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPreferenceNotFound
		}
		s.logger.Error("查询偏好失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}

	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, p.EmployeeID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, nil, ErrPreferenceNotFound
		}
		return nil, nil, err
	}
	if !caller.CanActFor(p.EmployeeID) {
		return nil, nil, ErrForbidden
	}
	return p, emp, nil
}

func (s *preferenceService) loadShiftType(ctx context.Context, orgID, id string) (*model.ShiftType, error) {
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

func toPreferenceResponse(p *model.Preference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		ID:         p.PreferenceID,
		EmployeeID: p.EmployeeID,
		ShiftType:  toShiftTypeBrief(p.ShiftType),
		ActiveDays: []int(p.ActiveDays.Normalize()),
	}
}
