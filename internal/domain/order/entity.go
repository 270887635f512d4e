package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
// 只有两个取值，只允许 pending → paid，且只能由已验签的支付事件触发
type Status string

const (
	StatusPending Status = "pending" // 待支付
	StatusPaid    Status = "paid"    // 已支付
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	return string(s)
}

// Order 订单实体(聚合根)
// 1. Items保存下单时的图书快照，不引用Book聚合
// 2. Total在创建时由Items计算并冗余存储
// 3. PaymentSessionRef是托管支付会话ID，webhook据此找回订单
type Order struct {
	ID                uint
	OrderNo           string
	UserID            uint
	Items             []OrderItem
	Shipping          ShippingDetails
	Total             decimal.Decimal
	Status            Status
	PaymentSessionRef string
	Payment           *PaymentDetails
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem 订单明细，下单时的快照
type OrderItem struct {
	BookID     uint
	Title      string
	Author     string
	Price      decimal.Decimal // 下单时的单价
	Quantity   int
	CoverImage string
}

// Subtotal 单价×数量
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingDetails 收货信息，结构由前端决定
type ShippingDetails map[string]interface{}

// PaymentDetails 支付完成后的快照
type PaymentDetails struct {
	PaymentID  string // 支付意图ID
	Method     string // 第一个支付方式类型，如card
	AmountPaid decimal.Decimal
	PaidAt     time.Time
}

// NewOrder 创建待支付订单(工厂方法)
func NewOrder(orderNo string, userID uint, items []OrderItem, shipping ShippingDetails, sessionRef string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if shipping == nil {
		shipping = ShippingDetails{}
	}

	now := time.Now()
	o := &Order{
		OrderNo:           orderNo,
		UserID:            userID,
		Items:             items,
		Shipping:          shipping,
		Status:            StatusPending,
		PaymentSessionRef: sessionRef,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	o.Total = o.CalculateTotal()
	return o, nil
}

// CalculateTotal Σ price × quantity
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CanTransitionTo 只有pending → paid合法
func (o *Order) CanTransitionTo(target Status) bool {
	return o.Status == StatusPending && target == StatusPaid
}

// MarkPaid 支付完成(领域行为)
func (o *Order) MarkPaid(details PaymentDetails) error {
	if !o.CanTransitionTo(StatusPaid) {
		return ErrInvalidStatusTransition
	}
	o.Status = StatusPaid
	o.Payment = &details
	o.UpdatedAt = time.Now()
	return nil
}

// IsPaid 是否已支付
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// ProcessedPaymentEvent 已处理的支付事件，EventID唯一
type ProcessedPaymentEvent struct {
	EventID     string
	Type        string
	SessionID   string
	ProcessedAt time.Time
}
