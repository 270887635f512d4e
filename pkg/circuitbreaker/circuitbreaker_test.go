package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

func newTestBreaker(clock *time.Time) *CircuitBreaker {
	cb := New("test", Config{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	cb := newTestBreaker(&clock)

	t.Run("成功请求保持CLOSED", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, cb.Execute(func() error { return nil }))
		}
		assert.Equal(t, StateClosed, cb.State())
		assert.Equal(t, uint32(5), cb.Counts().TotalSuccesses)
	})

	t.Run("连续失败达到阈值进入OPEN", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
		}
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("OPEN时请求被拒绝且不执行", func(t *testing.T) {
		called := false
		err := cb.Execute(func() error { called = true; return nil })
		assert.ErrorIs(t, err, ErrOpenState)
		assert.False(t, called)
	})

	t.Run("超时后HALF_OPEN探测成功恢复CLOSED", func(t *testing.T) {
		clock = clock.Add(31 * time.Second)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	cb := newTestBreaker(&clock)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
	clock = clock.Add(31 * time.Second)

	assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cb := New("defaults", Config{})
	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "OPEN", cb.State().String())
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	errRejected := errors.New("rejected")
	cb := New("classify", Config{
		ReadyToTrip:  func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errRejected) },
	})

	for i := 0; i < 5; i++ {
		err := cb.Execute(func() error { return errRejected })
		assert.ErrorIs(t, err, errRejected)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(5), cb.Counts().ConsecutiveSuccesses)

	t.Run("默认忽略调用方取消", func(t *testing.T) {
		cb := New("canceled", Config{ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 }})
		_ = cb.Execute(func() error { return context.Canceled })
		assert.Equal(t, StateClosed, cb.State())

		_ = cb.Execute(func() error { return errUpstream })
		assert.Equal(t, StateOpen, cb.State())
	})
}
