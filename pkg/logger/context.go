package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithRequestID 将请求 ID 写入 context，供下游日志与外发事件使用
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFrom 读取请求 ID，不存在时返回空串
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// FromContext 返回附带 request_id 字段的日志器
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
