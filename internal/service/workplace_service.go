package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
)

// ── 工作场所模块业务错误 ──

var (
	ErrWorkplaceNotFound  = errors.New("工作场所不存在")
	ErrWorkplaceHasShifts = errors.New("工作场所下仍有班次定义，无法删除")
)

// WorkplaceService 工作场所业务接口
type WorkplaceService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateWorkplaceRequest) (*dto.WorkplaceResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.WorkplaceResponse, error)
	List(ctx context.Context, caller Caller) ([]dto.WorkplaceResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateWorkplaceRequest) (*dto.WorkplaceResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type workplaceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkplaceService 创建 WorkplaceService 实例
func NewWorkplaceService(repo *repository.Repository, logger *zap.Logger) WorkplaceService {
	return &workplaceService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *workplaceService) Create(ctx context.Context, caller Caller, req *dto.CreateWorkplaceRequest) (*dto.WorkplaceResponse, error) {
	wp := &model.Workplace{
		OrganizationID: caller.OrganizationID,
		Name:           req.Name,
	}
	wp.CreatedBy = &caller.EmployeeID
	wp.UpdatedBy = &caller.EmployeeID

	if err := s.repo.Workplace.Create(ctx, wp); err != nil {
		s.logger.Error("创建工作场所失败", zap.Error(err))
		return nil, err
	}
	return toWorkplaceResponse(wp), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workplaceService) GetByID(ctx context.Context, caller Caller, id string) (*dto.WorkplaceResponse, error) {
	wp, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return toWorkplaceResponse(wp), nil
}

func (s *workplaceService) get(ctx context.Context, orgID, id string) (*model.Workplace, error) {
	wp, err := s.repo.Workplace.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkplaceNotFound
		}
		s.logger.Error("查询工作场所失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return wp, nil
}

// ────────────────────── List ──────────────────────

func (s *workplaceService) List(ctx context.Context, caller Caller) ([]dto.WorkplaceResponse, error) {
	list, err := s.repo.Workplace.List(ctx, caller.OrganizationID)
	if err != nil {
		s.logger.Error("列出工作场所失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkplaceResponse, 0, len(list))
	for i := range list {
		result = append(result, *toWorkplaceResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *workplaceService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateWorkplaceRequest) (*dto.WorkplaceResponse, error) {
	wp, err := s.get(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	wp.Name = req.Name
	wp.UpdatedBy = &caller.EmployeeID
	if err := s.repo.Workplace.Update(ctx, wp); err != nil {
		s.logger.Error("更新工作场所失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toWorkplaceResponse(wp), nil
}

// ────────────────────── Delete ──────────────────────

func (s *workplaceService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.get(ctx, caller.OrganizationID, id); err != nil {
		return err
	}

	count, err := s.repo.ShiftType.CountByWorkplace(ctx, id)
	if err != nil {
		s.logger.Error("统计工作场所班次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrWorkplaceHasShifts
	}

	if err := s.repo.Workplace.Delete(ctx, id, caller.EmployeeID); err != nil {
		s.logger.Error("删除工作场所失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func toWorkplaceResponse(wp *model.Workplace) *dto.WorkplaceResponse {
	return &dto.WorkplaceResponse{
		ID:        wp.WorkplaceID,
		Name:      wp.Name,
		CreatedAt: dto.FormatTime(wp.CreatedAt),
		UpdatedAt: dto.FormatTime(wp.UpdatedAt),
	}
}
