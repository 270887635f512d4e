package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/internal/domain/payment"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

const testSecret = "whsec_test_secret"

type fakeSessions struct {
	params  *stripesdk.CheckoutSessionParams
	expired []string
	err     error
}

func (f *fakeSessions) New(params *stripesdk.CheckoutSessionParams) (*stripesdk.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripesdk.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

func (f *fakeSessions) Expire(id string, _ *stripesdk.CheckoutSessionExpireParams) (*stripesdk.CheckoutSession, error) {
	f.expired = append(f.expired, id)
	return &stripesdk.CheckoutSession{ID: id}, nil
}

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestGateway_CreateCheckoutSession(t *testing.T) {
	fake := &fakeSessions{}
	g := NewWithSessions(fake, testSecret)

	s, err := g.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{
		Currency:          "usd",
		CustomerEmail:     "buyer@example.com",
		SuccessURL:        "http://localhost:3000/thank-you?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "http://localhost:3000/cart",
		Metadata:          map[string]string{"userId": "7"},
		ShippingCountries: []string{"US", "CA", "GB", "IN"},
		LineItems: []payment.LineItem{
			{Name: "Dune", Description: "Frank Herbert", ImageURL: "http://localhost:3000/placeholder.svg", UnitAmount: 1099, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", s.ID)

	p := fake.params
	require.NotNil(t, p)
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "buyer@example.com", *p.CustomerEmail)
	assert.Equal(t, "7", p.Metadata["userId"])
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, int64(1099), *p.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *p.LineItems[0].Quantity)
	assert.Equal(t, "usd", *p.LineItems[0].PriceData.Currency)
	assert.Len(t, p.ShippingAddressCollection.AllowedCountries, 4)
}

func TestGateway_CreateCheckoutSessionUpstreamError(t *testing.T) {
	g := NewWithSessions(&fakeSessions{err: errors.New("card_declined")}, testSecret)
	_, err := g.CreateCheckoutSession(context.Background(), payment.CheckoutRequest{Currency: "usd"})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeUpstream, appErr.Code)
}

func TestGateway_ParseEvent(t *testing.T) {
	g := NewWithSessions(&fakeSessions{}, testSecret)
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"object": "checkout.session",
			"amount_total": 2198,
			"payment_intent": "pi_42",
			"payment_method_types": ["card"],
			"metadata": {"userId": "7"}
		}}
	}`)

	t.Run("签名正确", func(t *testing.T) {
		e, err := g.ParseEvent(payload, sign(payload, testSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", e.ID)
		assert.Equal(t, payment.EventCheckoutCompleted, e.Type)
		require.NotNil(t, e.Session)
		assert.Equal(t, "cs_test_123", e.Session.ID)
		assert.Equal(t, "pi_42", e.Session.PaymentIntentID)
		assert.Equal(t, "card", e.Session.PaymentMethod)
		assert.Equal(t, int64(2198), e.Session.AmountTotal)
		assert.Equal(t, "7", e.Session.Metadata["userId"])
	})

	t.Run("密钥错误", func(t *testing.T) {
		_, err := g.ParseEvent(payload, sign(payload, "whsec_other", time.Now()))
		assert.ErrorIs(t, err, payment.ErrSignatureInvalid)
	})

	t.Run("签名过期", func(t *testing.T) {
		_, err := g.ParseEvent(payload, sign(payload, testSecret, time.Now().Add(-time.Hour)))
		assert.ErrorIs(t, err, payment.ErrSignatureInvalid)
	})

	t.Run("缺少签名", func(t *testing.T) {
		_, err := g.ParseEvent(payload, "")
		assert.ErrorIs(t, err, payment.ErrSignatureInvalid)
	})
}

func TestGateway_ParseEventOtherType(t *testing.T) {
	g := NewWithSessions(&fakeSessions{}, testSecret)
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`)

	e, err := g.ParseEvent(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", e.Type)
	assert.Nil(t, e.Session)
}

func TestGateway_Expire(t *testing.T) {
	fake := &fakeSessions{}
	g := NewWithSessions(fake, testSecret)
	require.NoError(t, g.ExpireCheckoutSession(context.Background(), "cs_1"))
	assert.Equal(t, []string{"cs_1"}, fake.expired)
}
