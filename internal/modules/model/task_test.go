package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllFailed(t *testing.T) {
	const budget = 3

	t.Run("无Result不算失败", func(t *testing.T) {
		task := GenTask{}
		require.False(t, task.AllFailed(budget))
	})

	t.Run("全部耗尽预算", func(t *testing.T) {
		task := GenTask{Results: []GenResult{
			{Status: ResultStatusFailed, FailCount: 3},
			{Status: ResultStatusFailed, FailCount: 4},
		}}
		require.True(t, task.AllFailed(budget))
	})

	t.Run("失败但预算未耗尽", func(t *testing.T) {
		task := GenTask{Results: []GenResult{
			{Status: ResultStatusFailed, FailCount: 2},
		}}
		require.False(t, task.AllFailed(budget))
	})

	t.Run("存在成功的Result", func(t *testing.T) {
		task := GenTask{Results: []GenResult{
			{Status: ResultStatusFailed, FailCount: 3},
			{Status: ResultStatusSucceeded},
		}}
		require.False(t, task.AllFailed(budget))
	})
}

func TestResultStatus(t *testing.T) {
	require.True(t, ResultStatusPending.Active())
	require.True(t, ResultStatusGenerating.Active())
	require.False(t, ResultStatusSucceeded.Active())
	require.False(t, ResultStatusFailed.Active())

	require.True(t, ResultStatusSucceeded.Terminal(0, 3))
	require.True(t, ResultStatusFailed.Terminal(3, 3))
	require.False(t, ResultStatusFailed.Terminal(2, 3))
	require.False(t, ResultStatusGenerating.Terminal(3, 3))
}

func TestDeepCopy(t *testing.T) {
	task := GenTask{
		Id:     1,
		Uid:    7,
		Prompt: "a red dress",
		Results: []GenResult{
			{Id: 11, Status: ResultStatusSucceeded, ResultPic: "https://img/a.png"},
		},
	}
	cp := task.DeepCopy()
	cp.Results[0].ResultPic = "changed"
	require.Equal(t, "https://img/a.png", task.Results[0].ResultPic)
}
