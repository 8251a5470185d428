package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/kind"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/internal/modules/provider"
	"github.com/reusedev/design-hub/internal/modules/queue"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	dao.Store

	mu      sync.Mutex
	nextId  int64
	tasks   map[int64]model.GenTask
	results map[int64]model.GenResult
}

func newMemStore() *memStore {
	return &memStore{
		tasks:   make(map[int64]model.GenTask),
		results: make(map[int64]model.GenResult),
	}
}

func (s *memStore) CreateTaskWithResults(task *model.GenTask, results []*model.GenResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	task.Id = s.nextId
	s.tasks[task.Id] = *task
	for _, r := range results {
		s.nextId++
		r.Id = s.nextId
		r.GenId = task.Id
		s.results[r.Id] = *r
	}
	return nil
}

func (s *memStore) TaskById(id int64) (model.GenTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return model.GenTask{}, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (s *memStore) ResultById(id int64) (model.GenResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[id]
	if !ok {
		return model.GenResult{}, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (s *memStore) ResultsByTaskId(taskId int64) ([]model.GenResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret []model.GenResult
	for _, r := range s.results {
		if r.GenId == taskId {
			ret = append(ret, r)
		}
	}
	return ret, nil
}

func (s *memStore) UpdateTaskStatus(id int64, status model.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := s.tasks[id]
	task.Status = status
	task.UpdatedAt = time.Now()
	s.tasks[id] = task
	return nil
}

func (s *memStore) UpdateResultStatus(id int64, status model.ResultStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.results[id]
	result.Status = status
	result.UpdatedAt = time.Now()
	s.results[id] = result
	return nil
}

func (s *memStore) SaveResultSuccess(id int64, resultPic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.results[id]
	result.Status = model.ResultStatusSucceeded
	result.ResultPic = resultPic
	result.FailCount = 0
	result.UpdatedAt = time.Now()
	s.results[id] = result
	return nil
}

func (s *memStore) SaveResultFailure(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.results[id]
	result.Status = model.ResultStatusFailed
	result.FailCount++
	result.UpdatedAt = time.Now()
	s.results[id] = result
	return nil
}

func (s *memStore) resultIds(taskId int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, r := range s.results {
		if r.GenId == taskId {
			ids = append(ids, r.Id)
		}
	}
	return ids
}

type adapterFunc func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error)

func (f adapterFunc) Generate(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
	return f(ctx, task, result)
}

type relocatorFunc func(ctx context.Context, transientURL string, hint string) (string, error)

func (f relocatorFunc) Relocate(ctx context.Context, transientURL string, hint string) (string, error) {
	return f(ctx, transientURL, hint)
}

func allBindings(a provider.Adapter) provider.Bindings {
	b := provider.Bindings{}
	for _, k := range kind.All() {
		b[k] = a
	}
	return b
}

func keepTransient(ctx context.Context, transientURL string, hint string) (string, error) {
	return transientURL, nil
}

func newTestDispatcher(store dao.Store, adapter provider.Adapter, relocator relocatorFunc) *Dispatcher {
	return New(store, allBindings(adapter), relocator, queue.NewPool(64, 1), 60)
}

func TestCreateTaskFanOut(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		return "https://supplier/img.png", nil
	}), keepTransient)

	t.Run("文生图扇出5", func(t *testing.T) {
		task := &model.GenTask{Uid: 1, Type: 1, VariationType: 0, Prompt: "a dress"}
		styles := []string{"s1", "s2", "s3", "s4", "s5"}
		ret, err := d.CreateTask(task, styles)
		require.NoError(t, err)
		require.Equal(t, model.TaskStatusPending, ret.Status)
		require.Equal(t, 60, ret.EstimatedSeconds)

		results, err := store.ResultsByTaskId(ret.TaskId)
		require.NoError(t, err)
		require.Len(t, results, 5)
		got := make(map[string]bool)
		for _, r := range results {
			require.Equal(t, model.ResultStatusPending, r.Status)
			got[r.Style] = true
		}
		for _, s := range styles {
			require.True(t, got[s])
		}
	})

	t.Run("单结果管线扇出1", func(t *testing.T) {
		task := &model.GenTask{Uid: 1, Type: 4, VariationType: 1, HexColor: "#ff0000"}
		ret, err := d.CreateTask(task, nil)
		require.NoError(t, err)
		results, err := store.ResultsByTaskId(ret.TaskId)
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("未知管线拒绝", func(t *testing.T) {
		task := &model.GenTask{Uid: 1, Type: 9, VariationType: 9}
		_, err := d.CreateTask(task, nil)
		require.Error(t, err)
	})
}

func TestAttemptSuccess(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		return "https://supplier/tmp.png", nil
	}), func(ctx context.Context, transientURL string, hint string) (string, error) {
		return "https://oss/durable.png", nil
	})

	task := &model.GenTask{Uid: 1, Type: 4, VariationType: 3}
	ret, err := d.CreateTask(task, nil)
	require.NoError(t, err)
	resultId := store.resultIds(ret.TaskId)[0]

	d.attempt(context.Background(), resultId)

	result, err := store.ResultById(resultId)
	require.NoError(t, err)
	require.Equal(t, model.ResultStatusSucceeded, result.Status)
	require.Equal(t, "https://oss/durable.png", result.ResultPic)

	// 唯一的 Result 成功，Task 回卷为成功
	got, err := store.TaskById(ret.TaskId)
	require.NoError(t, err)
	require.Equal(t, model.TaskStatusSucceeded, got.Status)
}

func TestAttemptRelocateFallback(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		return "https://supplier/tmp.png", nil
	}), func(ctx context.Context, transientURL string, hint string) (string, error) {
		return "", errors.New("oss unavailable")
	})

	task := &model.GenTask{Uid: 1, Type: 4, VariationType: 3}
	ret, err := d.CreateTask(task, nil)
	require.NoError(t, err)
	resultId := store.resultIds(ret.TaskId)[0]

	d.attempt(context.Background(), resultId)

	result, err := store.ResultById(resultId)
	require.NoError(t, err)
	require.Equal(t, model.ResultStatusSucceeded, result.Status)
	require.Equal(t, "https://supplier/tmp.png", result.ResultPic)
}

func TestAttemptFailure(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		return "", errors.New("supplier 500")
	}), keepTransient)

	task := &model.GenTask{Uid: 1, Type: 2, VariationType: 2, Prompt: "swap jacket"}
	ret, err := d.CreateTask(task, nil)
	require.NoError(t, err)
	resultId := store.resultIds(ret.TaskId)[0]

	d.attempt(context.Background(), resultId)

	result, err := store.ResultById(resultId)
	require.NoError(t, err)
	require.Equal(t, model.ResultStatusFailed, result.Status)
	require.Equal(t, 1, result.FailCount)

	// Task 没有终态失败，停留在生成中等补偿
	got, err := store.TaskById(ret.TaskId)
	require.NoError(t, err)
	require.Equal(t, model.TaskStatusGenerating, got.Status)

	// 连续失败累计计数
	d.attempt(context.Background(), resultId)
	result, _ = store.ResultById(resultId)
	require.Equal(t, 2, result.FailCount)
}

func TestReconcileTaskMonotonic(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		return "https://supplier/tmp.png", nil
	}), keepTransient)

	task := &model.GenTask{Uid: 1, Type: 1, VariationType: 0, Prompt: "p"}
	ret, err := d.CreateTask(task, []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	ids := store.resultIds(ret.TaskId)
	require.Len(t, ids, 5)

	// 部分成功不回卷
	require.NoError(t, store.SaveResultSuccess(ids[0], "pic"))
	d.ReconcileTask(ret.TaskId)
	got, _ := store.TaskById(ret.TaskId)
	require.NotEqual(t, model.TaskStatusSucceeded, got.Status)

	for _, id := range ids[1:] {
		require.NoError(t, store.SaveResultSuccess(id, "pic"))
	}
	d.ReconcileTask(ret.TaskId)
	got, _ = store.TaskById(ret.TaskId)
	require.Equal(t, model.TaskStatusSucceeded, got.Status)

	// 幂等重放无害
	d.ReconcileTask(ret.TaskId)
	got, _ = store.TaskById(ret.TaskId)
	require.Equal(t, model.TaskStatusSucceeded, got.Status)
}

func TestAttemptRecoversAfterRepeatedFailures(t *testing.T) {
	store := newMemStore()
	attempts := 0
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", errors.New("supplier flaky")
		}
		return "https://supplier/ok.png", nil
	}), keepTransient)

	task := &model.GenTask{Uid: 1, Type: 1, VariationType: 0, Prompt: "p"}
	ret, err := d.CreateTask(task, []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	ids := store.resultIds(ret.TaskId)

	// 其余 4 个先成功
	for _, id := range ids[1:] {
		require.NoError(t, store.SaveResultSuccess(id, "pic"))
	}

	// 第 1 个连续失败两次后第三次成功，fail_count 0→1→2→清零
	d.attempt(context.Background(), ids[0])
	d.attempt(context.Background(), ids[0])
	result, _ := store.ResultById(ids[0])
	require.Equal(t, 2, result.FailCount)
	require.Equal(t, model.ResultStatusFailed, result.Status)

	d.attempt(context.Background(), ids[0])
	result, _ = store.ResultById(ids[0])
	require.Equal(t, model.ResultStatusSucceeded, result.Status)
	require.Equal(t, 0, result.FailCount)

	got, _ := store.TaskById(ret.TaskId)
	require.Equal(t, model.TaskStatusSucceeded, got.Status)
}

func TestAttemptMissingRecords(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, adapterFunc(func(ctx context.Context, task model.GenTask, result model.GenResult) (string, error) {
		t.Fatal("adapter should not be called")
		return "", nil
	}), keepTransient)

	// 不存在的 Result，静默放弃
	d.attempt(context.Background(), 404)
}
