package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Workplace     WorkplaceRepository
	Employee      EmployeeRepository
	ShiftType     ShiftTypeRepository
	Preference    PreferenceRepository
	Absence       AbsenceRepository
	JobTime       JobTimeRepository
	FreeDay       FreeDayRepository
	Assignment    AssignmentRepository
	AssignmentLog AssignmentLogRepository
	Outbox        OutboxRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Workplace:     NewWorkplaceRepo(db),
		Employee:      NewEmployeeRepo(db),
		ShiftType:     NewShiftTypeRepo(db),
		Preference:    NewPreferenceRepo(db),
		Absence:       NewAbsenceRepo(db),
		JobTime:       NewJobTimeRepo(db),
		FreeDay:       NewFreeDayRepo(db),
		Assignment:    NewAssignmentRepo(db),
		AssignmentLog: NewAssignmentLogRepo(db),
		Outbox:        NewOutboxRepo(db),
	}
}

// Transaction 在同一数据库事务内执行 fn，fn 返回错误即回滚
// 未绑定数据库连接（单元测试中的 mock 聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Page 分页参数
type Page struct {
	Offset int
	Limit  int
}

func paginate(db *gorm.DB, p Page) *gorm.DB {
	if p.Limit > 0 {
		db = db.Offset(p.Offset).Limit(p.Limit)
	}
	return db
}
