package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

// Locker 排班互斥边界
// 一次获取多个 key，按字典序加锁以避免死锁；返回的函数释放全部 key
type Locker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

// shiftLockKey 班次实例锁：shift:<id>:<yyyy-mm-dd>
func shiftLockKey(shiftTypeID, day string) string {
	return "shift:" + shiftTypeID + ":" + day
}

// employeeLockKey 员工月度锁：employee:<id>:<yyyy-mm>
func employeeLockKey(employeeID, month string) string {
	return "employee:" + employeeID + ":" + month
}

// LocalLocker 进程内按 key 互斥的锁，单实例部署或测试时使用
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker 创建进程内锁；wait<=0 表示只受请求 context 约束
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock), wait: wait}
}

// Lock 按序获取全部 key，超时返回 ErrLockTimeout
func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	sorted := sortedUnique(keys)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	held := make([]string, 0, len(sorted))
	for _, key := range sorted {
		kl := l.acquireRef(key)
		select {
		case kl.ch <- struct{}{}:
			held = append(held, key)
		case <-waitCtx.Done():
			l.releaseRef(key)
			l.unlock(held)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, pkgerrors.ErrLockTimeout
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.unlock(held) }) }, nil
}

func (l *LocalLocker) acquireRef(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *LocalLocker) releaseRef(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *LocalLocker) unlock(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		kl := l.locks[keys[i]]
		l.mu.Unlock()
		<-kl.ch
		l.releaseRef(keys[i])
	}
}

func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
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

// isLockTimeout 是否为获取锁超时
func isLockTimeout(err error) bool {
	return errors.Is(err, pkgerrors.ErrLockTimeout)
}
