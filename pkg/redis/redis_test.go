package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

func newMockClient(t *testing.T) (*Client, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	return Wrap(rdb, zap.NewNop()), mock
}

func TestLocker_AcquiresInSortedOrderAndReleasesReversed(t *testing.T) {
	c, mock := newMockClient(t)
	l := c.NewLocker(10*time.Second, time.Second)
	l.newToken = func() string { return "tok-1" }

	mock.ExpectSetNX("lock:employee:e1:2024-03", "tok-1", 10*time.Second).SetVal(true)
	mock.ExpectSetNX("lock:shift:s1:2024-03-04", "tok-1", 10*time.Second).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:shift:s1:2024-03-04"}, "tok-1").SetVal(int64(1))
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:employee:e1:2024-03"}, "tok-1").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "shift:s1:2024-03-04", "employee:e1:2024-03", "shift:s1:2024-03-04")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_TimeoutReleasesHeldKeys(t *testing.T) {
	c, mock := newMockClient(t)
	l := c.NewLocker(10*time.Second, 0)
	l.newToken = func() string { return "tok-2" }

	mock.ExpectSetNX("lock:a", "tok-2", 10*time.Second).SetVal(true)
	mock.ExpectSetNX("lock:b", "tok-2", 10*time.Second).SetVal(false)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"lock:a"}, "tok-2").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "b", "a")
	assert.Nil(t, unlock)
	assert.True(t, errors.Is(err, pkgerrors.ErrLockTimeout))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_RedisErrorIsWrapped(t *testing.T) {
	c, mock := newMockClient(t)
	l := c.NewLocker(time.Second, time.Second)
	l.newToken = func() string { return "tok-3" }

	mock.ExpectSetNX("lock:a", "tok-3", time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), "a")
	require.Error(t, err)
	assert.False(t, errors.Is(err, pkgerrors.ErrLockTimeout))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBlacklist(t *testing.T) {
	c, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectSet("token:blacklist:jti-1", "1", time.Minute).SetVal("OK")
	mock.ExpectExists("token:blacklist:jti-1").SetVal(1)
	mock.ExpectExists("token:blacklist:jti-2").SetVal(0)

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))
	// 已过期的 token 不写入
	require.NoError(t, c.BlacklistToken(ctx, "jti-old", 0))

	hit, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = c.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckRateLimit(t *testing.T) {
	c, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(1)
	mock.ExpectExpire("ratelimit:ip:1.2.3.4", time.Minute).SetVal(true)
	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(2)
	mock.ExpectIncr("ratelimit:ip:1.2.3.4").SetVal(3)

	for i, want := range []bool{true, true, false} {
		ok, err := c.CheckRateLimit(ctx, "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "第 %d 次请求", i+1)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
