package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookmarket/internal/domain/order"
)

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	BookID     uint            `json:"book_id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	CoverImage string          `json:"cover_image"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PaymentResponse 支付快照
type PaymentResponse struct {
	PaymentID  string          `json:"payment_id"`
	Method     string          `json:"method"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	PaidAt     string          `json:"paid_at"`
}

// OrderResponse 订单详情
type OrderResponse struct {
	ID        uint                   `json:"id"`
	OrderNo   string                 `json:"order_no"`
	Items     []OrderItemResponse    `json:"items"`
	Shipping  map[string]interface{} `json:"shipping"`
	Total     decimal.Decimal        `json:"total"`
	Status    string                 `json:"status"`
	SessionID string                 `json:"session_id"`
	Payment   *PaymentResponse       `json:"payment,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// ToOrderResponse 实体转DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			BookID:     it.BookID,
			Title:      it.Title,
			Author:     it.Author,
			Price:      it.Price,
			Quantity:   it.Quantity,
			CoverImage: it.CoverImage,
			Subtotal:   it.Subtotal(),
		}
	}

	resp := OrderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Items:     items,
		Shipping:  o.Shipping,
		Total:     o.Total,
		Status:    o.Status.String(),
		SessionID: o.PaymentSessionRef,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.Payment != nil {
		resp.Payment = &PaymentResponse{
			PaymentID:  o.Payment.PaymentID,
			Method:     o.Payment.Method,
			AmountPaid: o.Payment.AmountPaid,
			PaidAt:     o.Payment.PaidAt.Format(time.RFC3339),
		}
	}
	return resp
}
