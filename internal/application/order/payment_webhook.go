package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/domain/payment"
	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// 回调处理结果
const (
	ResultApplied      = "applied"
	ResultDuplicate    = "duplicate"
	ResultIgnored      = "ignored"
	ResultUnknownOrder = "unknown_order"
)

// errUnknownOrder 回滚事务，不记账
var errUnknownOrder = errors.New("unknown order")

// PaymentWebhookUseCase 处理已验签的支付回调
//
// 同一事务内：
//  1. 记账事件ID，已存在则跳过
//  2. 条件更新订单 pending → paid
//  3. 逐项条件扣减库存，库存不足的明细只记录不扣减
type PaymentWebhookUseCase struct {
	gateway   payment.Gateway
	tx        Transactor
	orderRepo order.Repository
	bookRepo  book.Repository
	ledger    order.EventLedger
	publisher EventPublisher
	now       func() time.Time
}

// NewPaymentWebhookUseCase publisher为nil时不发布事件
func NewPaymentWebhookUseCase(
	gateway payment.Gateway,
	tx Transactor,
	orderRepo order.Repository,
	bookRepo book.Repository,
	ledger order.EventLedger,
	publisher EventPublisher,
) *PaymentWebhookUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &PaymentWebhookUseCase{
		gateway:   gateway,
		tx:        tx,
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		ledger:    ledger,
		publisher: publisher,
		now:       time.Now,
	}
}

// WebhookResult 处理结果，出错之外的情况都应向支付方返回200
type WebhookResult struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Result  string `json:"result"`
	OrderNo string `json:"order_no,omitempty"`
}

// Execute 校验签名并处理事件
func (uc *PaymentWebhookUseCase) Execute(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := uc.gateway.ParseEvent(payload, signature)
	if err != nil {
		metrics.IncCounterVec(metrics.PaymentEventsTotal, "unknown", "rejected")
		return nil, err
	}

	result := &WebhookResult{EventID: event.ID, Type: event.Type}
	if event.Type != payment.EventCheckoutCompleted || event.Session == nil {
		slog.InfoContext(ctx, "忽略支付事件", "event_id", event.ID, "type", event.Type)
		return uc.finish(result, ResultIgnored), nil
	}

	var paid *order.Order
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		fresh, err := uc.ledger.Record(ctx, order.ProcessedPaymentEvent{
			EventID:     event.ID,
			Type:        event.Type,
			SessionID:   event.Session.ID,
			ProcessedAt: uc.now(),
		})
		if err != nil {
			return err
		}
		if !fresh {
			result.Result = ResultDuplicate
			return nil
		}

		o, err := uc.orderRepo.FindBySessionRef(ctx, event.Session.ID)
		if err != nil {
			if errors.Is(err, order.ErrOrderNotFound) {
				return errUnknownOrder
			}
			return err
		}
		result.OrderNo = o.OrderNo

		details := order.PaymentDetails{
			PaymentID:  event.Session.PaymentIntentID,
			Method:     event.Session.PaymentMethod,
			AmountPaid: payment.FromMinorUnits(event.Session.AmountTotal),
			PaidAt:     uc.now(),
		}
		updated, err := uc.orderRepo.MarkPaid(ctx, o.ID, details)
		if err != nil {
			return err
		}
		if !updated {
			// 另一个事件ID已将订单置为paid
			result.Result = ResultDuplicate
			return nil
		}

		if err := uc.decreaseStock(ctx, o); err != nil {
			return err
		}

		_ = o.MarkPaid(details)
		paid = o
		result.Result = ResultApplied
		return nil
	})

	switch {
	case errors.Is(err, errUnknownOrder):
		slog.WarnContext(ctx, "支付事件对应的订单不存在", "event_id", event.ID, "session_id", event.Session.ID)
		return uc.finish(result, ResultUnknownOrder), nil
	case err != nil:
		return nil, err
	}

	if paid != nil {
		uc.publishPaid(ctx, paid)
		slog.InfoContext(ctx, "订单已支付", "order_no", paid.OrderNo, "event_id", event.ID)
	} else {
		slog.InfoContext(ctx, "重复的支付事件", "event_id", event.ID, "session_id", event.Session.ID)
	}
	return uc.finish(result, result.Result), nil
}

// decreaseStock 库存不足或图书已删除的明细跳过，其余错误回滚整个事务
func (uc *PaymentWebhookUseCase) decreaseStock(ctx context.Context, o *order.Order) error {
	for _, item := range o.Items {
		err := uc.bookRepo.DecreaseStock(ctx, item.BookID, item.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, book.ErrInsufficientStock):
			metrics.StockOversellTotal.Inc()
			slog.ErrorContext(ctx, "支付完成但库存不足，未扣减",
				"order_no", o.OrderNo, "book_id", item.BookID, "quantity", item.Quantity)
		case errors.Is(err, book.ErrBookNotFound):
			slog.WarnContext(ctx, "支付完成但图书已删除", "order_no", o.OrderNo, "book_id", item.BookID)
		default:
			return err
		}
	}
	return nil
}

func (uc *PaymentWebhookUseCase) publishPaid(ctx context.Context, o *order.Order) {
	evt := OrderPaidEvent{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Total:   o.Total.StringFixed(2),
	}
	if o.Payment != nil {
		evt.PaymentID = o.Payment.PaymentID
	}
	if err := uc.publisher.Publish(ctx, RoutingKeyOrderPaid, evt); err != nil {
		slog.WarnContext(ctx, "发布order.paid失败", "order_no", o.OrderNo, "error", err)
	}
}

func (uc *PaymentWebhookUseCase) finish(r *WebhookResult, result string) *WebhookResult {
	r.Result = result
	metrics.IncCounterVec(metrics.PaymentEventsTotal, r.Type, result)
	return r
}
