package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaluSL/planimbly/internal/model"
)

// JobTimeRepository 年度工时配额数据访问接口
type JobTimeRepository interface {
	// Upsert 按 (employee_id, year) 插入或覆盖十二个月的配额
	Upsert(ctx context.Context, jt *model.JobTime) error
	Get(ctx context.Context, employeeID string, year int) (*model.JobTime, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.JobTime, error)
	Delete(ctx context.Context, employeeID string, year int) error
}

type jobTimeRepo struct {
	db *gorm.DB
}

// NewJobTimeRepo 创建 JobTimeRepository 实例
func NewJobTimeRepo(db *gorm.DB) JobTimeRepository {
	return &jobTimeRepo{db: db}
}

var jobTimeMonthColumns = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func (r *jobTimeRepo) Upsert(ctx context.Context, jt *model.JobTime) error {
	updates := append(append([]string{}, jobTimeMonthColumns...), "updated_at", "updated_by")
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(jt).Error
}

func (r *jobTimeRepo) Get(ctx context.Context, employeeID string, year int) (*model.JobTime, error) {
	var jt model.JobTime
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&jt).Error
	if err != nil {
		return nil, err
	}
	return &jt, nil
}

func (r *jobTimeRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.JobTime, error) {
	var list []model.JobTime
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC").
		Find(&list).Error
	return list, err
}

func (r *jobTimeRepo) Delete(ctx context.Context, employeeID string, year int) error {
	return r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Delete(&model.JobTime{}).Error
}
