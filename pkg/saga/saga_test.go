package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(log *[]string, name string, err error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		*log = append(*log, name)
		return err
	}
}

func TestSaga_Execute(t *testing.T) {
	t.Run("全部成功不补偿", func(t *testing.T) {
		var log []string
		err := NewSaga("checkout", time.Second).
			AddStep("创建会话", recorder(&log, "创建会话", nil), recorder(&log, "过期会话", nil)).
			AddStep("保存订单", recorder(&log, "保存订单", nil), nil).
			Execute(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"创建会话", "保存订单"}, log)
	})

	t.Run("失败后逆序补偿已执行步骤", func(t *testing.T) {
		var log []string
		boom := errors.New("db down")
		err := NewSaga("checkout", time.Second).
			AddStep("A", recorder(&log, "A", nil), recorder(&log, "undo A", nil)).
			AddStep("B", recorder(&log, "B", nil), recorder(&log, "undo B", nil)).
			AddStep("C", recorder(&log, "C", boom), recorder(&log, "undo C", nil)).
			Execute(context.Background())

		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"A", "B", "C", "undo B", "undo A"}, log)
	})

	t.Run("补偿失败继续执行其余补偿", func(t *testing.T) {
		var log []string
		err := NewSaga("checkout", 0).
			AddStep("A", recorder(&log, "A", nil), recorder(&log, "undo A", nil)).
			AddStep("B", recorder(&log, "B", nil), recorder(&log, "undo B", errors.New("expire failed"))).
			AddStep("C", recorder(&log, "C", errors.New("fail")), nil).
			Execute(context.Background())

		require.Error(t, err)
		assert.Equal(t, []string{"A", "B", "C", "undo B", "undo A"}, log)
	})
}

func TestSaga_Timeout(t *testing.T) {
	var log []string
	slow := func(ctx context.Context) error {
		log = append(log, "slow")
		<-ctx.Done()
		return nil
	}

	err := NewSaga("checkout", 20*time.Millisecond).
		AddStep("slow", slow, recorder(&log, "undo slow", nil)).
		AddStep("next", recorder(&log, "next", nil), nil).
		Execute(context.Background())

	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, []string{"slow", "undo slow"}, log)
}
