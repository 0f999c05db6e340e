package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaluSL/planimbly/internal/model"
)

// OutboxRepository 事务外发事件数据访问接口
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	// ListPending 取出待投递事件；多个 worker 并行时以 SKIP LOCKED 互不争抢
	ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepo struct {
	db *gorm.DB
}

// NewOutboxRepo 创建 OutboxRepository 实例
func NewOutboxRepo(db *gorm.DB) OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *outboxRepo) ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ?", []string{model.OutboxStatusPending, model.OutboxStatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= NOW()").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *outboxRepo) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.OutboxStatusSent,
			"processed_at":  gorm.Expr("NOW()"),
			"error_message": nil,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.OutboxStatusFailed,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": reason,
			"next_retry_at": gorm.Expr("NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds')"),
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}
