package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaluSL/planimbly/internal/model"
)

// EmployeeFilter 员工列表筛选条件
type EmployeeFilter struct {
	OrganizationID     string
	WorkplaceID        string
	IncludeSupervisors bool
	Keyword            string
	Page
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	GetByID(ctx context.Context, orgID, id string) (*model.Employee, error)
	// GetForUpdate 在事务内对员工行加 FOR UPDATE 锁，串行化同一员工的分配写入
	GetForUpdate(ctx context.Context, orgID, id string) (*model.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]model.Employee, int64, error)
	ReplaceWorkplaces(ctx context.Context, employeeID string, workplaceIDs []string) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByID(ctx context.Context, orgID, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Where("employee_id = ? AND organization_id = ?", id, orgID).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetForUpdate(ctx context.Context, orgID, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
		Where("employee_id = ? AND organization_id = ?", id, orgID).
		First(&emp).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		Find(&emp.Memberships).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) List(ctx context.Context, filter EmployeeFilter) ([]model.Employee, int64, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employees.organization_id = ?", filter.OrganizationID)

	if !filter.IncludeSupervisors {
		db = db.Where("employees.is_supervisor = ?", false)
	}
	if filter.WorkplaceID != "" {
		db = db.Where("EXISTS (SELECT 1 FROM employee_workplaces ew WHERE ew.employee_id = employees.employee_id AND ew.workplace_id = ?)", filter.WorkplaceID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("(employees.username ILIKE ? OR employees.first_name ILIKE ? OR employees.last_name ILIKE ?)", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Employee
	err := paginate(db, filter.Page).
		Preload("Memberships").
		Order("employees.order_number ASC, employees.last_name ASC").
		Find(&list).Error
	return list, total, err
}

func (r *employeeRepo) ReplaceWorkplaces(ctx context.Context, employeeID string, workplaceIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("employee_id = ?", employeeID).Delete(&model.EmployeeWorkplace{}).Error; err != nil {
		return err
	}
	if len(workplaceIDs) == 0 {
		return nil
	}

	rows := make([]model.EmployeeWorkplace, 0, len(workplaceIDs))
	for _, wid := range workplaceIDs {
		rows = append(rows, model.EmployeeWorkplace{EmployeeID: employeeID, WorkplaceID: wid})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
