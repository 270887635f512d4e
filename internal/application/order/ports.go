package order

import (
	"context"
)

// Transactor 事务边界
// 实现：persistence/mysql.TxManager 与 persistence/memory.TxManager
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布，实现：pkg/mq.Publisher
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// NoopPublisher 未配置消息队列时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// RoutingKeyOrderPaid 订单支付完成事件
const RoutingKeyOrderPaid = "order.paid"

// OrderPaidEvent order.paid事件负载
type OrderPaidEvent struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	UserID    uint   `json:"user_id"`
	Total     string `json:"total"`
	PaymentID string `json:"payment_id"`
}
