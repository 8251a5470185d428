package admission

import (
	"fmt"
	"sync"
	"time"

	"github.com/reusedev/design-hub/internal/modules/cache"
)

// RateWindow 每用户滑动窗口计数。窗口内容是毫秒时间戳集合，存放在带 TTL 的
// 内存缓存里；trim-count-insert 序列靠每用户互斥锁保证原子，同一用户的并发
// 请求不会越过上限。
type RateWindow struct {
	window time.Duration
	store  *cache.Manager[[]int64]

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewRateWindow(window time.Duration) *RateWindow {
	return &RateWindow{
		window: window,
		store:  cache.RateWindowManager(),
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (w *RateWindow) userLock(uid int64) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		w.locks[uid] = l
	}
	return l
}

func key(uid int64) string {
	return fmt.Sprintf("gen_img_rate_limit:user:%d", uid)
}

// Admit 淘汰窗口外的时间戳后计数；达到上限则拒绝且不记录本次请求，
// 否则记录并放行。返回剩余额度与重置秒数提示。
func (w *RateWindow) Admit(uid int64, maxRequests int) (ok bool, remaining int, resetIn int) {
	l := w.userLock(uid)
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	windowStart := now.Add(-w.window).UnixMilli()

	stamps, err := w.store.GetValue(key(uid))
	if err != nil {
		// 计数存储异常时不限流，与原始实现一致
		return true, maxRequests, int(w.window.Seconds())
	}
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts > windowStart {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxRequests {
		resetIn = int(time.UnixMilli(kept[0]).Add(w.window).Sub(now).Seconds()) + 1
		_ = w.store.SetWithExpiration(key(uid), kept, w.window+time.Second)
		return false, 0, resetIn
	}

	kept = append(kept, now.UnixMilli())
	_ = w.store.SetWithExpiration(key(uid), kept, w.window+time.Second)
	remaining = maxRequests - len(kept)
	resetIn = int(time.UnixMilli(kept[0]).Add(w.window).Sub(now).Seconds()) + 1
	return true, remaining, resetIn
}
