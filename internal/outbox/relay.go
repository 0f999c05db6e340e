package outbox

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultBatchSize    = 50
)

// MessageWriter Kafka 写入端，*kafkago.Writer 满足该接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Relay 轮询 outbox_events 并投递到 Kafka
// 投递语义为至少一次，消费方按 outbox id 幂等
type Relay struct {
	repo         repository.OutboxRepository
	writer       MessageWriter
	pollInterval time.Duration
	batchSize    int
	logger       *zap.Logger
}

// NewRelay 创建 Relay
func NewRelay(repo repository.OutboxRepository, writer MessageWriter, pollInterval time.Duration, batchSize int, logger *zap.Logger) *Relay {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Relay{
		repo:         repo,
		writer:       writer,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger.Named("outbox.relay"),
	}
}

// Run 阻塞运行直到 ctx 取消
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox 投递已启动", zap.Duration("poll_interval", r.pollInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox 投递已停止")
			return
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				r.logger.Error("处理 outbox 事件失败", zap.Error(err))
			}
		}
	}
}

// ProcessBatch 投递一批待发送事件，返回成功条数
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	events, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	sent := 0
	for _, event := range events {
		if err := r.writer.WriteMessages(ctx, toMessage(event)); err != nil {
			r.logger.Warn("投递 outbox 事件失败",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Error(err),
			)
			if mErr := r.repo.MarkFailed(ctx, event.ID, err.Error()); mErr != nil {
				r.logger.Error("标记 outbox 失败状态失败", zap.String("outbox_id", event.ID), zap.Error(mErr))
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			r.logger.Error("标记 outbox 已发送失败", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		sent++
	}

	r.logger.Debug("outbox 批次完成", zap.Int("total", len(events)), zap.Int("sent", sent))
	return sent, nil
}

func toMessage(event model.OutboxEvent) kafkago.Message {
	return kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}
}
