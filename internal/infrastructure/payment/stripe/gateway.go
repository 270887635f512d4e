// Package stripe 基于Stripe Checkout的支付网关
package stripe

import (
	"context"
	"encoding/json"

	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/xiebiao/bookmarket/internal/domain/payment"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// SessionAPI Checkout Session接口，*session.Client即满足
type SessionAPI interface {
	New(params *stripesdk.CheckoutSessionParams) (*stripesdk.CheckoutSession, error)
	Expire(id string, params *stripesdk.CheckoutSessionExpireParams) (*stripesdk.CheckoutSession, error)
}

// Gateway 实现payment.Gateway
type Gateway struct {
	sessions      SessionAPI
	webhookSecret string
}

var _ payment.Gateway = (*Gateway)(nil)

// New 使用API密钥创建网关
func New(secretKey, webhookSecret string) *Gateway {
	sc := client.New(secretKey, nil)
	return NewWithSessions(sc.CheckoutSessions, webhookSecret)
}

// NewWithSessions 注入Session接口，测试中替换网络调用
func NewWithSessions(sessions SessionAPI, webhookSecret string) *Gateway {
	return &Gateway{sessions: sessions, webhookSecret: webhookSecret}
}

// CreateCheckoutSession 创建托管结账会话(mode=payment，仅card)
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	params := &stripesdk.CheckoutSessionParams{
		Mode:               stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		SuccessURL:         stripesdk.String(req.SuccessURL),
		CancelURL:          stripesdk.String(req.CancelURL),
		LineItems:          make([]*stripesdk.CheckoutSessionLineItemParams, 0, len(req.LineItems)),
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripesdk.String(req.CustomerEmail)
	}
	if len(req.ShippingCountries) > 0 {
		params.ShippingAddressCollection = &stripesdk.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripesdk.StringSlice(req.ShippingCountries),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	for _, item := range req.LineItems {
		product := &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripesdk.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripesdk.String(item.Description)
		}
		if item.ImageURL != "" {
			product.Images = stripesdk.StringSlice([]string{item.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripesdk.CheckoutSessionLineItemParams{
			PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripesdk.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripesdk.Int64(item.UnitAmount),
			},
			Quantity: stripesdk.Int64(item.Quantity),
		})
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, apperrors.Upstream(err, "创建支付会话失败")
	}
	return &payment.Session{ID: s.ID, URL: s.URL}, nil
}

// ExpireCheckoutSession 使会话失效
func (g *Gateway) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripesdk.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := g.sessions.Expire(sessionID, params); err != nil {
		return apperrors.Upstream(err, "关闭支付会话失败")
	}
	return nil
}

// ParseEvent 校验Stripe-Signature(HMAC-SHA256，默认300秒容差)并解析事件
func (g *Gateway) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, payment.ErrSignatureInvalid.WithCause(err)
	}

	out := &payment.Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || event.Data.Object["object"] != "checkout.session" {
		return out, nil
	}

	var s stripesdk.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, apperrors.Wrap(err, "解析支付事件失败")
	}

	completed := &payment.CompletedSession{
		ID:          s.ID,
		AmountTotal: s.AmountTotal,
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		completed.PaymentIntentID = s.PaymentIntent.ID
	}
	if len(s.PaymentMethodTypes) > 0 {
		completed.PaymentMethod = s.PaymentMethodTypes[0]
	}
	out.Session = completed
	return out, nil
}
