package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
)

// AssignmentFilter 分配列表筛选条件
type AssignmentFilter struct {
	OrganizationID string
	EmployeeID     string
	WorkplaceID    string
	ShiftTypeID    string
	From           *time.Time
	To             *time.Time
}

// AssignmentRepository 排班分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, orgID, id string) (*model.Assignment, error)
	Delete(ctx context.Context, id string) error
	// ListByEmployeeRange 返回员工与 [from, to) 重叠的分配，按开始时间排序
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.Assignment, error)
	// CountByShiftRange 统计班次在 [from, to) 内开始的分配数
	CountByShiftRange(ctx context.Context, shiftTypeID string, from, to time.Time) (int64, error)
	List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error)
	UpdateNegativeFlag(ctx context.Context, id string, flag bool) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func includeDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("ShiftType", "Employee").Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, orgID, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Scopes(employeeInOrganization("assignments.employee_id", orgID)).
		Preload("ShiftType", includeDeleted).
		Where("assignments.assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete 物理删除；撤销的审计由 assignment_logs 记录
func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND start_at < ? AND end_at > ?", employeeID, to, from).
		Order("start_at ASC, created_at ASC, assignment_id ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) CountByShiftRange(ctx context.Context, shiftTypeID string, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("shift_type_id = ? AND start_at >= ? AND start_at < ?", shiftTypeID, from, to).
		Count(&n).Error
	return n, err
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	db := r.db.WithContext(ctx).
		Scopes(employeeInOrganization("assignments.employee_id", filter.OrganizationID))

	if filter.EmployeeID != "" {
		db = db.Where("assignments.employee_id = ?", filter.EmployeeID)
	}
	if filter.ShiftTypeID != "" {
		db = db.Where("assignments.shift_type_id = ?", filter.ShiftTypeID)
	}
	if filter.WorkplaceID != "" {
		db = db.Where("assignments.shift_type_id IN (?)",
			r.db.Model(&model.ShiftType{}).Unscoped().
				Select("shift_type_id").
				Where("workplace_id = ?", filter.WorkplaceID))
	}
	if filter.From != nil {
		db = db.Where("assignments.end_at > ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("assignments.start_at < ?", *filter.To)
	}

	var list []model.Assignment
	err := db.
		Preload("ShiftType", includeDeleted).
		Preload("ShiftType.Workplace", includeDeleted).
		Preload("Employee").
		Order("assignments.start_at ASC, assignments.created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) UpdateNegativeFlag(ctx context.Context, id string, flag bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"negative_flag": flag,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}
