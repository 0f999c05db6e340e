package model

import "time"

// Outbox 状态
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEvent 事务外发事件表 — 对应 outbox_events
// 与业务写入同事务落库，由 worker 异步投递到 Kafka
type OutboxEvent struct {
	ID            string     `gorm:"type:uuid;primaryKey"                      json:"id"`
	RequestID     string     `gorm:"type:varchar(64);not null"                 json:"request_id"`
	AggregateType string     `gorm:"type:varchar(50);not null"                 json:"aggregate_type"`
	AggregateID   string     `gorm:"type:uuid;not null"                        json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(100);not null"                json:"event_type"`
	Topic         string     `gorm:"type:varchar(200);not null"                json:"topic"`
	Payload       []byte     `gorm:"type:jsonb;not null"                       json:"payload"`
	Status        string     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	RetryCount    int        `gorm:"not null;default:0"                        json:"retry_count"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ErrorMessage  *string    `gorm:"type:varchar(500)"                         json:"error_message,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"updated_at"`
}

// TableName 指定表名
func (OutboxEvent) TableName() string { return "outbox_events" }
