package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/dispatch"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
)

const (
	// ShortThreshold 待生成/失败状态的拾起阈值
	ShortThreshold = 10 * time.Second
	// LongThreshold 生成中状态的拾起阈值，worker 挂死的场景
	LongThreshold = 600 * time.Second
)

// Sweeper 补偿扫描：周期性拾起卡住或失败的 Result 重新投递，
// 预算耗尽的做死信处理。
type Sweeper struct {
	store      dao.Store
	dispatcher *dispatch.Dispatcher
	interval   time.Duration

	running sync.Mutex
}

func New(store dao.Store, dispatcher *dispatch.Dispatcher, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
	}
}

func (s *Sweeper) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep 单轮扫描。上一轮还没结束时跳过本轮。
func (s *Sweeper) Sweep() {
	if !s.running.TryLock() {
		logs.Logger.Info().Msg("previous sweep still running, skipping this execution")
		return
	}
	defer s.running.Unlock()

	now := time.Now()
	candidates, err := s.store.CompensationCandidates(now.Add(-ShortThreshold), now.Add(-LongThreshold), dispatch.RetryBudget)
	if err != nil {
		logs.Logger.Err(err).Msg("scan compensation candidates")
		return
	}
	if len(candidates) == 0 {
		return
	}
	logs.Logger.Info().Int("count", len(candidates)).Msg("compensating stuck generation results")

	for _, result := range candidates {
		// 防御性复查：预算已耗尽的直接死信
		if result.FailCount >= dispatch.RetryBudget {
			if err := s.store.UpdateResultStatus(result.Id, model.ResultStatusFailed); err != nil {
				logs.Logger.Err(err).Int64("result_id", result.Id).Msg("dead-letter result")
			}
			continue
		}
		if _, err := s.store.TaskById(result.GenId); err != nil {
			logs.Logger.Err(err).Int64("task_id", result.GenId).Int64("result_id", result.Id).
				Msg("task not found for result")
			continue
		}
		logs.Logger.Info().Int64("result_id", result.Id).Int("fail_count", result.FailCount).
			Msg("scheduling compensation")
		s.dispatcher.AttemptGeneration(result.Id)
	}
}
