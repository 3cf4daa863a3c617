package cache

import (
	"context"
	"errors"
	"time"
)

// MultiLevelCache 实现多级缓存 (L1: Memory, L2: Redis/DB)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// 先写 L2，成功后再写 L1，避免 L1 里留下 L2 没有的值
	if err := m.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	localTTL := ttl / 2
	if ttl <= 0 {
		localTTL = time.Minute
	}
	_ = m.local.Set(ctx, key, value, localTTL)
	return nil
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	// 1. 查 L1
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	// 2. 查 L2
	err := m.remote.Get(ctx, key, target)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return ErrCacheMiss
		}
		return err
	}

	// L2 Hit -> 回写 L1
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
