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

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound = errors.New("员工不存在")
)

// EmployeeService 员工业务接口
// 员工账号由身份服务维护，这里只负责查询与工作场所归属
type EmployeeService interface {
	GetByID(ctx context.Context, caller Caller, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, caller Caller, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	UpdateWorkplaces(ctx context.Context, caller Caller, id string, req *dto.UpdateEmployeeWorkplacesRequest) (*dto.EmployeeResponse, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, caller Caller, id string) (*dto.EmployeeResponse, error) {
	if !caller.CanActFor(id) {
		return nil, ErrForbidden
	}
	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, caller Caller, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	list, total, err := s.repo.Employee.List(ctx, repository.EmployeeFilter{
		OrganizationID:     caller.OrganizationID,
		WorkplaceID:        req.WorkplaceID,
		IncludeSupervisors: req.IncludeSupervisors,
		Keyword:            req.Keyword,
		Page:               repository.Page{Offset: req.Offset(), Limit: req.GetPageSize()},
	})
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EmployeeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEmployeeResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── UpdateWorkplaces ──────────────────────

func (s *employeeService) UpdateWorkplaces(ctx context.Context, caller Caller, id string, req *dto.UpdateEmployeeWorkplacesRequest) (*dto.EmployeeResponse, error) {
	ids := uniqueStrings(req.WorkplaceIDs)

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Employee.GetForUpdate(ctx, caller.OrganizationID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		for _, wpID := range ids {
			if _, err := tx.Workplace.GetByID(ctx, caller.OrganizationID, wpID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrWorkplaceNotFound
				}
				return err
			}
		}
		return tx.Employee.ReplaceWorkplaces(ctx, id, ids)
	})
	if err != nil {
		if !errors.Is(err, ErrEmployeeNotFound) && !errors.Is(err, ErrWorkplaceNotFound) {
			s.logger.Error("更新员工工作场所失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// ── 辅助函数 ──

func loadEmployee(ctx context.Context, repo *repository.Repository, logger *zap.Logger, orgID, id string) (*model.Employee, error) {
	emp, err := repo.Employee.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

func toEmployeeResponse(e *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:           e.EmployeeID,
		Username:     e.Username,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Email:        e.Email,
		OrderNumber:  e.OrderNumber,
		IsSupervisor: e.IsSupervisor,
		WorkplaceIDs: e.WorkplaceIDs(),
	}
}

func toEmployeeBrief(e *model.Employee) dto.EmployeeBrief {
	if e == nil {
		return dto.EmployeeBrief{}
	}
	return dto.EmployeeBrief{ID: e.EmployeeID, Username: e.Username, FullName: e.FullName()}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
