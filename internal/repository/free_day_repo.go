package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaluSL/planimbly/internal/model"
)

// FreeDayRepository 公休日数据访问接口
type FreeDayRepository interface {
	Create(ctx context.Context, d *model.FreeDay) error
	GetByID(ctx context.Context, orgID, id string) (*model.FreeDay, error)
	// List 返回 [from, to] 内的公休日，参数为 nil 时不限制
	List(ctx context.Context, orgID string, from, to *time.Time) ([]model.FreeDay, error)
	Update(ctx context.Context, d *model.FreeDay) error
	Delete(ctx context.Context, id string) error
	// UpsertBatch 按 (organization_id, day) 批量插入，已存在时更新名称
	UpsertBatch(ctx context.Context, days []model.FreeDay) (int64, error)
}

type freeDayRepo struct {
	db *gorm.DB
}

// NewFreeDayRepo 创建 FreeDayRepository 实例
func NewFreeDayRepo(db *gorm.DB) FreeDayRepository {
	return &freeDayRepo{db: db}
}

func (r *freeDayRepo) Create(ctx context.Context, d *model.FreeDay) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *freeDayRepo) GetByID(ctx context.Context, orgID, id string) (*model.FreeDay, error) {
	var d model.FreeDay
	err := r.db.WithContext(ctx).
		Where("free_day_id = ? AND organization_id = ?", id, orgID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *freeDayRepo) List(ctx context.Context, orgID string, from, to *time.Time) ([]model.FreeDay, error) {
	db := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if from != nil {
		db = db.Where("day >= ?", from.Format(time.DateOnly))
	}
	if to != nil {
		db = db.Where("day <= ?", to.Format(time.DateOnly))
	}

	var list []model.FreeDay
	err := db.Order("day ASC").Find(&list).Error
	return list, err
}

func (r *freeDayRepo) Update(ctx context.Context, d *model.FreeDay) error {
	return r.db.WithContext(ctx).
		Model(&model.FreeDay{}).
		Where("free_day_id = ?", d.FreeDayID).
		Updates(map[string]interface{}{
			"day":        d.Day,
			"name":       d.Name,
			"updated_by": d.UpdatedBy,
		}).Error
}

func (r *freeDayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("free_day_id = ?", id).
		Delete(&model.FreeDay{}).Error
}

func (r *freeDayRepo) UpsertBatch(ctx context.Context, days []model.FreeDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at", "updated_by"}),
		}).
		CreateInBatches(&days, 100)
	return result.RowsAffected, result.Error
}
