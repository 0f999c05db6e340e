package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
)

// WorkplaceRepository 工作场所数据访问接口
type WorkplaceRepository interface {
	Create(ctx context.Context, wp *model.Workplace) error
	GetByID(ctx context.Context, orgID, id string) (*model.Workplace, error)
	List(ctx context.Context, orgID string) ([]model.Workplace, error)
	Update(ctx context.Context, wp *model.Workplace) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type workplaceRepo struct {
	db *gorm.DB
}

// NewWorkplaceRepo 创建 WorkplaceRepository 实例
func NewWorkplaceRepo(db *gorm.DB) WorkplaceRepository {
	return &workplaceRepo{db: db}
}

func (r *workplaceRepo) Create(ctx context.Context, wp *model.Workplace) error {
	return r.db.WithContext(ctx).Create(wp).Error
}

func (r *workplaceRepo) GetByID(ctx context.Context, orgID, id string) (*model.Workplace, error) {
	var wp model.Workplace
	err := r.db.WithContext(ctx).
		Where("workplace_id = ? AND organization_id = ?", id, orgID).
		First(&wp).Error
	if err != nil {
		return nil, err
	}
	return &wp, nil
}

func (r *workplaceRepo) List(ctx context.Context, orgID string) ([]model.Workplace, error) {
	var list []model.Workplace
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *workplaceRepo) Update(ctx context.Context, wp *model.Workplace) error {
	return r.db.WithContext(ctx).
		Model(wp).
		Updates(map[string]interface{}{
			"name":       wp.Name,
			"updated_by": wp.UpdatedBy,
		}).Error
}

func (r *workplaceRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Workplace{}).
		Where("workplace_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
