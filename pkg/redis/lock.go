package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

const lockPrefix = "lock:"

// 仅当持有者 token 一致时才删除，避免误删他人续上的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker 基于 SET NX PX 的分布式锁
type Locker struct {
	client   *Client
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
	newToken func() string
}

// NewLocker 创建分布式锁
// ttl 为单把锁的过期时间，wait 为获取全部锁的最长等待时间
func (c *Client) NewLocker(ttl, wait time.Duration) *Locker {
	return &Locker{
		client:   c,
		ttl:      ttl,
		wait:     wait,
		interval: 50 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

// Lock 按字典序依次获取所有 key，任一失败则释放已获取的锁
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupSorted(keys)
	token := l.newToken()

	deadline := time.Now().Add(l.wait)
	held := make([]string, 0, len(sorted))

	for _, key := range sorted {
		if err := l.acquire(ctx, lockPrefix+key, token, deadline); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, lockPrefix+key)
	}

	return func() { l.release(held, token) }, nil
}

func (l *Locker) acquire(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("获取分布式锁失败: %w", err)
		}
		if ok {
			return nil
		}
		if !time.Now().Add(l.interval).Before(deadline) {
			return pkgerrors.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
}

func (l *Locker) release(keys []string, token string) {
	// 释放与请求上下文解耦，请求取消后仍需归还锁
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{keys[i]}, token).Err(); err != nil {
			l.client.logger.Warn("释放分布式锁失败", zap.String("key", keys[i]), zap.Error(err))
		}
	}
}

func dedupSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
