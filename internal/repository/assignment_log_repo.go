package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
)

// AssignmentLogRepository 分配变更日志数据访问接口
type AssignmentLogRepository interface {
	Create(ctx context.Context, log *model.AssignmentLog) error
	List(ctx context.Context, orgID, employeeID string, p Page) ([]model.AssignmentLog, int64, error)
}

type assignmentLogRepo struct {
	db *gorm.DB
}

// NewAssignmentLogRepo 创建 AssignmentLogRepository 实例
func NewAssignmentLogRepo(db *gorm.DB) AssignmentLogRepository {
	return &assignmentLogRepo{db: db}
}

func (r *assignmentLogRepo) Create(ctx context.Context, log *model.AssignmentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *assignmentLogRepo) List(ctx context.Context, orgID, employeeID string, p Page) ([]model.AssignmentLog, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.AssignmentLog{}).
		Scopes(employeeInOrganization("assignment_logs.employee_id", orgID))
	if employeeID != "" {
		db = db.Where("assignment_logs.employee_id = ?", employeeID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AssignmentLog
	err := paginate(db, p).
		Order("assignment_logs.created_at DESC").
		Find(&logs).Error
	return logs, total, err
}
