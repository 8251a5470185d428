package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateWindowAdmit(t *testing.T) {
	w := NewRateWindow(time.Hour)
	const uid = int64(90001)

	ok, remaining, _ := w.Admit(uid, 2)
	require.True(t, ok)
	require.Equal(t, 1, remaining)

	ok, remaining, _ = w.Admit(uid, 2)
	require.True(t, ok)
	require.Equal(t, 0, remaining)

	ok, _, resetIn := w.Admit(uid, 2)
	require.False(t, ok)
	require.Greater(t, resetIn, 0)
	require.LessOrEqual(t, resetIn, 3601)

	// 拒绝不计入窗口，重复拒绝的 resetIn 不会后移
	ok, _, resetIn2 := w.Admit(uid, 2)
	require.False(t, ok)
	require.LessOrEqual(t, resetIn2, resetIn)
}

func TestRateWindowSliding(t *testing.T) {
	w := NewRateWindow(100 * time.Millisecond)
	const uid = int64(90002)

	ok, _, _ := w.Admit(uid, 1)
	require.True(t, ok)
	ok, _, _ = w.Admit(uid, 1)
	require.False(t, ok)

	// 窗口滑过后旧时间戳被淘汰，额度恢复
	time.Sleep(150 * time.Millisecond)
	ok, _, _ = w.Admit(uid, 1)
	require.True(t, ok)
}

func TestRateWindowIsolatedPerUser(t *testing.T) {
	w := NewRateWindow(time.Hour)

	ok, _, _ := w.Admit(90003, 1)
	require.True(t, ok)
	ok, _, _ = w.Admit(90003, 1)
	require.False(t, ok)

	ok, _, _ = w.Admit(90004, 1)
	require.True(t, ok)
}
