// Package payment 托管支付端口
package payment

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// EventCheckoutCompleted 托管结账完成事件
const EventCheckoutCompleted = "checkout.session.completed"

// ErrSignatureInvalid 回调签名校验失败
var ErrSignatureInvalid = apperrors.ErrSignatureInvalid

// LineItem 支付会话中的一行
type LineItem struct {
	Name        string
	Description string
	ImageURL    string // 必须是绝对地址
	UnitAmount  int64  // 最小货币单位(分)
	Quantity    int64
}

// CheckoutRequest 创建托管支付会话的参数
type CheckoutRequest struct {
	LineItems         []LineItem
	Currency          string
	CustomerEmail     string
	SuccessURL        string
	CancelURL         string
	Metadata          map[string]string
	ShippingCountries []string
}

// Session 支付会话
type Session struct {
	ID  string
	URL string
}

// CompletedSession 结账完成事件中的会话信息
type CompletedSession struct {
	ID              string
	PaymentIntentID string
	PaymentMethod   string // 第一个支付方式类型
	AmountTotal     int64  // 最小货币单位
	Metadata        map[string]string
}

// Event 已验签的支付事件
type Event struct {
	ID      string
	Type    string
	Session *CompletedSession // 仅checkout.session.*事件有值
}

// Gateway 支付网关
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)

	// ExpireCheckoutSession 使未支付的会话失效(补偿)
	ExpireCheckoutSession(ctx context.Context, sessionID string) error

	// ParseEvent 校验签名并解析事件，签名不合法返回ErrSignatureInvalid
	ParseEvent(payload []byte, signature string) (*Event, error)
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits 元 → 分，四舍五入
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits 分 → 元
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(hundred)
}
