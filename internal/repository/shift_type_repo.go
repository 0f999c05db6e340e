package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaluSL/planimbly/internal/model"
	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

// ShiftTypeFilter 班次列表筛选条件
type ShiftTypeFilter struct {
	OrganizationID string
	WorkplaceID    string
	OnlyUsed       bool
}

// ShiftTypeRepository 班次定义数据访问接口
type ShiftTypeRepository interface {
	Create(ctx context.Context, st *model.ShiftType) error
	GetByID(ctx context.Context, orgID, id string) (*model.ShiftType, error)
	// GetForUpdate 在事务内对班次行加 FOR UPDATE 锁
	GetForUpdate(ctx context.Context, orgID, id string) (*model.ShiftType, error)
	List(ctx context.Context, filter ShiftTypeFilter) ([]model.ShiftType, error)
	Update(ctx context.Context, st *model.ShiftType) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountByWorkplace(ctx context.Context, workplaceID string) (int64, error)
}

type shiftTypeRepo struct {
	db *gorm.DB
}

// NewShiftTypeRepo 创建 ShiftTypeRepository 实例
func NewShiftTypeRepo(db *gorm.DB) ShiftTypeRepository {
	return &shiftTypeRepo{db: db}
}

// inOrganization 通过工作场所限定组织范围
func inOrganization(orgID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("shift_types.workplace_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Workplace{}).
				Select("workplace_id").
				Where("organization_id = ?", orgID))
	}
}

func (r *shiftTypeRepo) Create(ctx context.Context, st *model.ShiftType) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *shiftTypeRepo) GetByID(ctx context.Context, orgID, id string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := r.db.WithContext(ctx).
		Scopes(inOrganization(orgID)).
		Preload("Workplace").
		Where("shift_types.shift_type_id = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepo) GetForUpdate(ctx context.Context, orgID, id string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
		Scopes(inOrganization(orgID)).
		Where("shift_types.shift_type_id = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepo) List(ctx context.Context, filter ShiftTypeFilter) ([]model.ShiftType, error) {
	db := r.db.WithContext(ctx).Scopes(inOrganization(filter.OrganizationID))
	if filter.WorkplaceID != "" {
		db = db.Where("shift_types.workplace_id = ?", filter.WorkplaceID)
	}
	if filter.OnlyUsed {
		db = db.Where("shift_types.is_used = ?", true)
	}

	var list []model.ShiftType
	err := db.Order("shift_types.hour_start ASC, shift_types.name ASC").Find(&list).Error
	return list, err
}

// Update 乐观锁更新
func (r *shiftTypeRepo) Update(ctx context.Context, st *model.ShiftType) error {
	oldVersion := st.Version
	result := r.db.WithContext(ctx).
		Model(&model.ShiftType{}).
		Where("shift_type_id = ? AND version = ?", st.ShiftTypeID, oldVersion).
		Updates(map[string]interface{}{
			"name":        st.Name,
			"hour_start":  st.HourStart,
			"hour_end":    st.HourEnd,
			"demand":      st.Demand,
			"color":       st.Color,
			"active_days": st.ActiveDays,
			"is_used":     st.IsUsed,
			"updated_by":  st.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	st.Version = oldVersion + 1
	return nil
}

func (r *shiftTypeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ShiftType{}).
		Where("shift_type_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *shiftTypeRepo) CountByWorkplace(ctx context.Context, workplaceID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ShiftType{}).
		Where("workplace_id = ?", workplaceID).
		Count(&n).Error
	return n, err
}
