package admission

import (
	"errors"
	"testing"
	"time"

	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	dao.Store

	level    int
	levelErr error
	active   int64
	stale    []model.GenResult

	forceFailed [][]int64
}

func (s *fakeStore) SubscriptionLevel(uid int64) (int, error) {
	return s.level, s.levelErr
}

func (s *fakeStore) ActiveResultCount(uid int64) (int64, error) {
	return s.active, nil
}

func (s *fakeStore) StaleActiveResults(uid int64, before time.Time) ([]model.GenResult, error) {
	return s.stale, nil
}

func (s *fakeStore) ForceFailResults(ids []int64) error {
	s.forceFailed = append(s.forceFailed, ids)
	s.active -= int64(len(ids))
	s.stale = nil
	return nil
}

func TestConcurrencyGate(t *testing.T) {
	cases := []struct {
		name   string
		level  int
		active int64
		allow  bool
	}{
		{"免费档满额", 0, 3, false},
		{"免费档未满", 0, 2, true},
		{"档位1满额", 1, 4, false},
		{"档位1未满", 1, 3, true},
		{"档位2满额", 2, 6, false},
		{"档位3满额", 3, 10, false},
		{"档位3未满", 3, 9, true},
		{"未知档位按免费档", 7, 3, false},
	}
	for i, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := &fakeStore{level: c.level, active: c.active}
			ctl := NewController(store)
			err := ctl.Admit(int64(80100 + i))
			if c.allow {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrConcurrencyLimited)
			}
		})
	}
}

func TestConcurrencyGateLazyCleanup(t *testing.T) {
	// 3 个活跃里 1 个已卡死超过 30 分钟，清理后额度恢复
	store := &fakeStore{
		level:  0,
		active: 3,
		stale:  []model.GenResult{{Id: 42, Status: model.ResultStatusGenerating}},
	}
	ctl := NewController(store)
	require.NoError(t, ctl.Admit(80201))
	require.Equal(t, [][]int64{{42}}, store.forceFailed)
}

func TestRateGate(t *testing.T) {
	store := &fakeStore{level: 0}
	ctl := NewController(store)
	const uid = int64(80301)

	for i := 0; i < 50; i++ {
		require.NoError(t, ctl.Admit(uid))
	}
	err := ctl.Admit(uid)
	var rateErr *RateLimitedError
	require.True(t, errors.As(err, &rateErr))
	require.Greater(t, rateErr.ResetIn, 0)
}

func TestRateGateTiers(t *testing.T) {
	t.Run("档位1上限100", func(t *testing.T) {
		store := &fakeStore{level: 1}
		ctl := NewController(store)
		const uid = int64(80401)
		for i := 0; i < 100; i++ {
			require.NoError(t, ctl.Admit(uid))
		}
		var rateErr *RateLimitedError
		require.True(t, errors.As(ctl.Admit(uid), &rateErr))
	})

	t.Run("档位2上限200", func(t *testing.T) {
		store := &fakeStore{level: 2}
		ctl := NewController(store)
		const uid = int64(80403)
		for i := 0; i < 200; i++ {
			require.NoError(t, ctl.Admit(uid))
		}
		var rateErr *RateLimitedError
		require.True(t, errors.As(ctl.Admit(uid), &rateErr))
	})

	t.Run("档位3不限流", func(t *testing.T) {
		store := &fakeStore{level: 3}
		ctl := NewController(store)
		const uid = int64(80402)
		for i := 0; i < 250; i++ {
			require.NoError(t, ctl.Admit(uid))
		}
	})
}

func TestSubscriptionLookupFailureDefaultsToFree(t *testing.T) {
	store := &fakeStore{levelErr: errors.New("db gone"), active: 3}
	ctl := NewController(store)
	require.ErrorIs(t, ctl.Admit(80501), ErrConcurrencyLimited)
}
