package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis 只实现 GET/SET/DEL, 其它命令调用会 panic
type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewRedisCache(rdb, "session:")

	var got string
	assert.ErrorIs(t, c.Get(ctx, "transactionCount", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "transactionCount", "3", 0))
	assert.Equal(t, `"3"`, rdb.data["session:transactionCount"], "value is JSON under the prefixed key")
	require.NoError(t, c.Get(ctx, "transactionCount", &got))
	assert.Equal(t, "3", got)

	// 负数 TTL 视为不过期
	require.NoError(t, c.Set(ctx, "k", 1, -time.Second))
	assert.Equal(t, time.Duration(0), rdb.ttls["session:k"])
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.Equal(t, time.Minute, rdb.ttls["session:k"])

	require.NoError(t, c.Delete(ctx, "transactionCount"))
	assert.ErrorIs(t, c.Get(ctx, "transactionCount", &got), ErrCacheMiss)
}

func TestRedisCacheError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	c := NewRedisCache(rdb, "session:")

	var got string
	err := c.Get(context.Background(), "transactionCount", &got)
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, c.Set(context.Background(), "transactionCount", "1", 0))
}

func TestMultiLevelCacheOverRedis(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	m := NewMultiLevelCache(NewMemoryCache(time.Minute, time.Minute), NewRedisCache(rdb, "session:"))

	require.NoError(t, m.Set(ctx, "transactionCount", "5", 0))
	assert.Equal(t, `"5"`, rdb.data["session:transactionCount"])

	// L2 写失败时不写 L1
	rdb.err = errors.New("READONLY")
	assert.Error(t, m.Set(ctx, "transactionCount", "6", 0))
	rdb.err = nil

	var got string
	require.NoError(t, m.Get(ctx, "transactionCount", &got))
	assert.Equal(t, "5", got)
}
