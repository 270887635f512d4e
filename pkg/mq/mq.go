// Package mq 基于RabbitMQ的领域事件发布
//
// 订单支付完成后发布order.paid事件，下游（通知、对账）自行声明队列绑定exchange消费。
// 发布失败不影响主流程，由调用方记录日志。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// Event 事件信封
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent 序列化payload并生成事件ID
func NewEvent(eventType string, payload interface{}) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("消息序列化失败: %w", err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// Publisher 消息发布者
// amqp.Channel不是并发安全的，Publish内部加锁
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明持久化exchange
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	slog.Info("消息发布者已创建", "exchange", exchange, "type", exchangeType)

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 发布事件，routingKey通常等于事件类型（如order.paid）
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	evt, err := NewEvent(routingKey, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    evt.ID,
			Type:         evt.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    evt.OccurredAt,
		},
	)
	p.mu.Unlock()

	if err != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, routingKey, "failure")
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal, routingKey, "success")
	slog.DebugContext(ctx, "消息已发布", "routing_key", routingKey, "message_id", evt.ID)
	return nil
}

// Close 关闭channel和连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
