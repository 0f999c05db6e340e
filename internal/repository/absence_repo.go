package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
)

// AbsenceFilter 缺勤列表筛选条件
type AbsenceFilter struct {
	OrganizationID string
	EmployeeID     string
	From           *time.Time
	To             *time.Time
	Page
}

// AbsenceRepository 缺勤数据访问接口
type AbsenceRepository interface {
	Create(ctx context.Context, a *model.Absence) error
	GetByID(ctx context.Context, orgID, id string) (*model.Absence, error)
	List(ctx context.Context, filter AbsenceFilter) ([]model.Absence, int64, error)
	// ListOverlapping 返回与 [from, to) 重叠的缺勤
	ListOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]model.Absence, error)
	Update(ctx context.Context, a *model.Absence) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type absenceRepo struct {
	db *gorm.DB
}

// NewAbsenceRepo 创建 AbsenceRepository 实例
func NewAbsenceRepo(db *gorm.DB) AbsenceRepository {
	return &absenceRepo{db: db}
}

func employeeInOrganization(column, orgID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Employee{}).
				Select("employee_id").
				Where("organization_id = ?", orgID))
	}
}

func (r *absenceRepo) Create(ctx context.Context, a *model.Absence) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(a).Error
}

func (r *absenceRepo) GetByID(ctx context.Context, orgID, id string) (*model.Absence, error) {
	var a model.Absence
	err := r.db.WithContext(ctx).
		Scopes(employeeInOrganization("absences.employee_id", orgID)).
		Preload("Employee").
		Where("absences.absence_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *absenceRepo) List(ctx context.Context, filter AbsenceFilter) ([]model.Absence, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Absence{}).
		Scopes(employeeInOrganization("absences.employee_id", filter.OrganizationID))

	if filter.EmployeeID != "" {
		db = db.Where("absences.employee_id = ?", filter.EmployeeID)
	}
	if filter.To != nil {
		db = db.Where("absences.start_at < ?", *filter.To)
	}
	if filter.From != nil {
		db = db.Where("absences.end_at > ?", *filter.From)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Absence
	err := paginate(db, filter.Page).
		Preload("Employee").
		Order("absences.start_at ASC").
		Find(&list).Error
	return list, total, err
}

func (r *absenceRepo) ListOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]model.Absence, error) {
	var list []model.Absence
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND start_at < ? AND end_at > ?", employeeID, to, from).
		Order("start_at ASC").
		Find(&list).Error
	return list, err
}

func (r *absenceRepo) Update(ctx context.Context, a *model.Absence) error {
	return r.db.WithContext(ctx).
		Model(&model.Absence{}).
		Where("absence_id = ?", a.AbsenceID).
		Updates(map[string]interface{}{
			"start_at":     a.Start,
			"end_at":       a.End,
			"type":         a.Type,
			"hours_number": a.HoursNumber,
			"updated_by":   a.UpdatedBy,
		}).Error
}

func (r *absenceRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Absence{}).
		Where("absence_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
