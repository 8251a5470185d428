package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/internal/modules/provider"
	"github.com/reusedev/design-hub/internal/modules/queue"
	"github.com/reusedev/design-hub/internal/modules/storage"
)

// RetryBudget 单个 Result 的失败重试预算，耗尽即死信
const RetryBudget = 3

const relocateTimeout = 60 * time.Second

type CreateTaskResult struct {
	TaskId           int64            `json:"taskId"`
	Status           model.TaskStatus `json:"status"`
	EstimatedSeconds int              `json:"estimatedSeconds"`
}

// Dispatcher 创建 Task+Result 并把生成尝试投递到有界 worker 池。
// 入场检查由 Admission Controller 在调用前完成，这里不重复校验。
type Dispatcher struct {
	store            dao.Store
	bindings         provider.Bindings
	relocator        storage.Relocator
	pool             *queue.Pool
	estimatedSeconds int
}

func New(store dao.Store, bindings provider.Bindings, relocator storage.Relocator, pool *queue.Pool, estimatedSeconds int) *Dispatcher {
	return &Dispatcher{
		store:            store,
		bindings:         bindings,
		relocator:        relocator,
		pool:             pool,
		estimatedSeconds: estimatedSeconds,
	}
}

// CreateTask 事务内落库一个 Task 和固定 N 条 Result，再为每条 Result
// 异步投递一次生成尝试。生成不在调用方关键路径上，落库成功即返回。
func (d *Dispatcher) CreateTask(task *model.GenTask, styles []string) (CreateTaskResult, error) {
	k, ok := kind.ByType(task.Type, task.VariationType)
	if !ok {
		return CreateTaskResult{}, fmt.Errorf("unsupported task type: %d, variation_type: %d", task.Type, task.VariationType)
	}
	now := time.Now()
	task.Status = model.TaskStatusPending
	task.CreatedAt = now
	task.UpdatedAt = now

	results := make([]*model.GenResult, 0, k.FanOut())
	for i := 0; i < k.FanOut(); i++ {
		r := &model.GenResult{
			Uid:       task.Uid,
			Prompt:    task.Prompt,
			Status:    model.ResultStatusPending,
			ResultPic: "",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if i < len(styles) {
			r.Style = styles[i]
		}
		results = append(results, r)
	}
	if err := d.store.CreateTaskWithResults(task, results); err != nil {
		logs.Logger.Err(err).Int64("uid", task.Uid).Str("kind", k.Name()).Msg("create task failed")
		return CreateTaskResult{}, err
	}

	for _, r := range results {
		d.AttemptGeneration(r.Id)
	}
	logs.Logger.Info().Int64("task_id", task.Id).Str("kind", k.Name()).Int("fan_out", len(results)).Msg("task created")
	return CreateTaskResult{
		TaskId:           task.Id,
		Status:           task.Status,
		EstimatedSeconds: d.estimatedSeconds,
	}, nil
}

// AttemptGeneration 把一次生成尝试投递到 worker 池。Dispatcher 和
// Sweeper 共用这条路径。队列满时丢弃，Result 停留在当前状态，
// 由补偿扫描在 10 秒后重新拾起。
func (d *Dispatcher) AttemptGeneration(resultId int64) {
	if !d.pool.Submit(&attemptTask{d: d, resultId: resultId}) {
		logs.Logger.Warn().Int64("result_id", resultId).Msg("worker pool saturated, attempt dropped")
	}
}

type attemptTask struct {
	d        *Dispatcher
	resultId int64
}

func (t *attemptTask) Execute(ctx context.Context) error {
	t.d.attempt(ctx, t.resultId)
	return nil
}

// attempt 单次生成尝试。provider 与转存的错误都收敛为 Result 的
// 失败状态，不向外传播。
func (d *Dispatcher) attempt(ctx context.Context, resultId int64) {
	result, err := d.store.ResultById(resultId)
	if err != nil {
		logs.Logger.Err(err).Int64("result_id", resultId).Msg("result record not found")
		return
	}
	task, err := d.store.TaskById(result.GenId)
	if err != nil {
		logs.Logger.Err(err).Int64("task_id", result.GenId).Int64("result_id", resultId).Msg("task record not found")
		return
	}
	k, ok := kind.ByType(task.Type, task.VariationType)
	if !ok {
		logs.Logger.Error().Int("type", task.Type).Int("variation_type", task.VariationType).
			Int64("result_id", resultId).Msg("unsupported task type")
		return
	}
	adapter, ok := d.bindings.For(k)
	if !ok {
		logs.Logger.Error().Str("kind", k.Name()).Int64("result_id", resultId).Msg("no provider bound")
		return
	}

	if task.Status == model.TaskStatusPending {
		if err := d.store.UpdateTaskStatus(task.Id, model.TaskStatusGenerating); err != nil {
			logs.Logger.Err(err).Int64("task_id", task.Id).Msg("promote task to generating")
		}
	}
	if err := d.store.UpdateResultStatus(result.Id, model.ResultStatusGenerating); err != nil {
		logs.Logger.Err(err).Int64("result_id", result.Id).Msg("mark result generating")
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, k.Timeout())
	transientURL, err := adapter.Generate(genCtx, task, result)
	cancel()
	if err != nil {
		logs.Logger.Err(err).Int64("result_id", result.Id).Int64("task_id", task.Id).
			Str("kind", k.Name()).Msg("generation failed")
		d.recordFailure(result.Id)
		return
	}

	resultPic := transientURL
	relocateCtx, cancel := context.WithTimeout(ctx, relocateTimeout)
	durableURL, err := d.relocator.Relocate(relocateCtx, transientURL, fmt.Sprintf("%s/%d", k.Name(), result.Id))
	cancel()
	if err != nil {
		// 软保证：转存失败降级保留供应商 URL，后续可能 404
		logs.Logger.Warn().Err(err).Int64("result_id", result.Id).Msg("relocate failed, keeping transient url")
	} else {
		resultPic = durableURL
	}

	if err := d.store.SaveResultSuccess(result.Id, resultPic); err != nil {
		logs.Logger.Err(err).Int64("result_id", result.Id).Msg("save result success")
		return
	}
	logs.Logger.Info().Int64("result_id", result.Id).Int64("task_id", task.Id).Msg("generation completed")
	d.ReconcileTask(task.Id)
}

func (d *Dispatcher) recordFailure(resultId int64) {
	if err := d.store.SaveResultFailure(resultId); err != nil {
		logs.Logger.Err(err).Int64("result_id", resultId).Msg("save result failure")
	}
}

// ReconcileTask 幂等回卷：所有同级 Result 都成功时把 Task 推到成功。
// 谓词单调，成功后不会回退，并发重放无害。
func (d *Dispatcher) ReconcileTask(taskId int64) {
	results, err := d.store.ResultsByTaskId(taskId)
	if err != nil {
		logs.Logger.Err(err).Int64("task_id", taskId).Msg("scan sibling results")
		return
	}
	if len(results) == 0 {
		return
	}
	for _, r := range results {
		if r.Status != model.ResultStatusSucceeded {
			return
		}
	}
	if err := d.store.UpdateTaskStatus(taskId, model.TaskStatusSucceeded); err != nil {
		logs.Logger.Err(err).Int64("task_id", taskId).Msg("promote task to succeeded")
		return
	}
	logs.Logger.Info().Int64("task_id", taskId).Msg("all results succeeded, task complete")
}
