package admission

import (
	"errors"
	"fmt"
	"time"

	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/logs"
)

const (
	// RateWindowSeconds 滑动窗口 4 小时
	RateWindowSeconds = 14400
	// StaleThreshold 活跃 Result 超过 30 分钟未更新视为卡死
	StaleThreshold = 30 * time.Minute
)

// 档位上限。level 3 的限流上限为无限。
var (
	rateCeiling        = map[int]int{0: 50, 1: 100, 2: 200}
	concurrencyCeiling = map[int]int{0: 3, 1: 4, 2: 6, 3: 10}
)

var ErrConcurrencyLimited = errors.New("concurrency limit reached")

// RateLimitedError 附带窗口重置提示，供 HTTP 层返回给调用方
type RateLimitedError struct {
	ResetIn int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, reset in %ds", e.ResetIn)
}

// Controller 入场控制：限流闸门 + 并发闸门，二者任一拒绝则任务不创建。
// 并发闸门只在入场时刻做 advisory 判定，不占坑。
type Controller struct {
	store  dao.Store
	window *RateWindow
}

func NewController(store dao.Store) *Controller {
	return &Controller{
		store:  store,
		window: NewRateWindow(RateWindowSeconds * time.Second),
	}
}

// Admit 两道闸门都通过才放行。拒绝以可区分的错误返回：
// *RateLimitedError 或 ErrConcurrencyLimited。
func (c *Controller) Admit(uid int64) error {
	level, err := c.store.SubscriptionLevel(uid)
	if err != nil {
		logs.Logger.Err(err).Int64("uid", uid).Msg("query subscription level")
		level = 0
	}

	if err := c.admitRate(uid, level); err != nil {
		return err
	}
	return c.admitConcurrency(uid, level)
}

func (c *Controller) admitRate(uid int64, level int) error {
	max, ok := rateCeiling[level]
	if !ok {
		// level 3 不限流
		return nil
	}
	admitted, remaining, resetIn := c.window.Admit(uid, max)
	if !admitted {
		logs.Logger.Warn().Int64("uid", uid).Int("reset_in", resetIn).Msg("rate limit exceeded")
		return &RateLimitedError{ResetIn: resetIn}
	}
	logs.Logger.Debug().Int64("uid", uid).Int("remaining", remaining).Msg("rate gate passed")
	return nil
}

func (c *Controller) admitConcurrency(uid int64, level int) error {
	max := concurrencyCeiling[level]
	if max == 0 {
		max = concurrencyCeiling[0]
	}

	// 先做惰性超时清理，卡死的 Result 不再占并发额度
	stale, err := c.store.StaleActiveResults(uid, time.Now().Add(-StaleThreshold))
	if err != nil {
		logs.Logger.Err(err).Int64("uid", uid).Msg("scan stale results")
	} else if len(stale) > 0 {
		ids := make([]int64, 0, len(stale))
		for _, r := range stale {
			ids = append(ids, r.Id)
		}
		logs.Logger.Warn().Int64("uid", uid).Int("count", len(ids)).Msg("cleaning up timeout results")
		if err := c.store.ForceFailResults(ids); err != nil {
			logs.Logger.Err(err).Int64("uid", uid).Msg("force fail stale results")
		}
	}

	count, err := c.store.ActiveResultCount(uid)
	if err != nil {
		logs.Logger.Err(err).Int64("uid", uid).Msg("count active results")
		// 出错时不限流
		return nil
	}
	if count >= int64(max) {
		logs.Logger.Warn().Int64("uid", uid).Int64("active", count).Int("limit", max).Msg("concurrency limit reached")
		return ErrConcurrencyLimited
	}
	return nil
}
