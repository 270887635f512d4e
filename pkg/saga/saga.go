// Package saga 顺序执行一组步骤，任一步骤失败时逆序执行已完成步骤的补偿
//
// 结账流程：
//
//	Step1 创建支付会话  ←→ 补偿：使会话过期
//	Step2 保存待支付订单 ←→ 无
//
// Step2失败时Step1被补偿，买家拿不到一个没有对应订单的支付链接。
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// ErrTimeout 整体超时
var ErrTimeout = errors.New("saga timeout")

// Step 一个步骤，Compensate可以为nil
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次性执行器，不要复用
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga timeout<=0表示不额外设置超时
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{
		name:    name,
		timeout: timeout,
	}
}

// AddStep 追加步骤，返回自身便于链式调用
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
	return s
}

// Execute 执行所有步骤
// 返回的错误包装了失败步骤的原始错误，可用errors.Is/As判断
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx)
			metrics.IncCounterVec(metrics.SagaExecutionsTotal, s.name, "failure")
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(ctx)
				metrics.IncCounterVec(metrics.SagaExecutionsTotal, s.name, "failure")
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}

	metrics.IncCounterVec(metrics.SagaExecutionsTotal, s.name, "success")
	return nil
}

// compensate 逆序补偿，单个补偿失败不影响后续补偿
// 补偿使用脱离取消信号的ctx，避免因原请求超时而跳过补偿
func (s *Saga) compensate(parent context.Context) {
	ctx := context.WithoutCancel(parent)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncCounterVec(metrics.SagaCompensationsTotal, s.name, step.Name)
		if err := step.Compensate(ctx); err != nil {
			// 补偿失败需要人工介入
			slog.ErrorContext(ctx, "saga补偿失败", "saga", s.name, "step", step.Name, "error", err)
		}
	}
	s.executed = nil
}
