package order

import (
	"context"
)

// Repository 订单仓储接口
// 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细)
	Create(ctx context.Context, order *Order) error

	// FindByID 不存在时返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// FindBySessionRef 根据支付会话ID查找订单
	FindBySessionRef(ctx context.Context, sessionRef string) (*Order, error)

	// MarkPaid 条件更新：仅当status=pending时改为paid并写入支付快照
	// 返回false表示订单已不是pending(已被处理)
	MarkPaid(ctx context.Context, id uint, details PaymentDetails) (bool, error)

	// ListByUserID 用户的订单，按创建时间倒序
	ListByUserID(ctx context.Context, userID uint) ([]*Order, error)
}

// EventLedger 已处理支付事件台账
type EventLedger interface {
	// Record 写入事件，EventID已存在时返回false
	// 与订单、库存更新处于同一事务
	Record(ctx context.Context, event ProcessedPaymentEvent) (bool, error)
}
