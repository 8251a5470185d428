package cache

import (
	"context"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
)

type Manager[T any] struct {
	cache *cache.Cache[T]
}

var (
	rateWindowManager *Manager[[]int64]
)

func init() {
	windowClient := gocache.New(gocache.NoExpiration, 10*time.Minute)
	rateWindowManager = &Manager[[]int64]{
		cache: cache.New[[]int64](go_cache.NewGoCache(windowClient)),
	}
}

// RateWindowManager 滑动窗口时间戳集合，按用户 TTL 过期
func RateWindowManager() *Manager[[]int64] {
	return rateWindowManager
}

func (m *Manager[T]) SetWithExpiration(key string, value T, expir time.Duration) error {
	timeout, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	return m.cache.Set(timeout, key, value, store.WithExpiration(expir))
}

func (m *Manager[T]) GetValue(key string) (value T, err error) {
	timeout, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	const errorMessage = "value not found"
	value, err = m.cache.Get(timeout, key)
	if err != nil && strings.Contains(err.Error(), errorMessage) {
		err = nil
		return
	}
	return
}
