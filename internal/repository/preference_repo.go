package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
)

// PreferenceRepository 班次偏好数据访问接口
type PreferenceRepository interface {
	Create(ctx context.Context, p *model.Preference) error
	GetByID(ctx context.Context, id string) (*model.Preference, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.Preference, error)
	ListByShiftType(ctx context.Context, shiftTypeID string) ([]model.Preference, error)
	Update(ctx context.Context, p *model.Preference) error
	Delete(ctx context.Context, id string) error
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) Create(ctx context.Context, p *model.Preference) error {
	return r.db.WithContext(ctx).Omit("ShiftType").Create(p).Error
}

func (r *preferenceRepo) GetByID(ctx context.Context, id string) (*model.Preference, error) {
	var p model.Preference
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("preference_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.Preference, error) {
	var list []model.Preference
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("employee_id = ?", employeeID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *preferenceRepo) ListByShiftType(ctx context.Context, shiftTypeID string) ([]model.Preference, error) {
	var list []model.Preference
	err := r.db.WithContext(ctx).
		Where("shift_type_id = ?", shiftTypeID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *preferenceRepo) Update(ctx context.Context, p *model.Preference) error {
	return r.db.WithContext(ctx).
		Model(&model.Preference{}).
		Where("preference_id = ?", p.PreferenceID).
		Updates(map[string]interface{}{
			"active_days": p.ActiveDays,
			"updated_by":  p.UpdatedBy,
		}).Error
}

func (r *preferenceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("preference_id = ?", id).
		Delete(&model.Preference{}).Error
}
