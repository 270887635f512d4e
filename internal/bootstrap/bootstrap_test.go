package bootstrap_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/bootstrap"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/payment/stripe"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookmarket/pkg/response"
)

const webhookSecret = "whsec_e2e"

// fakeSessions 替换Stripe网络调用
type fakeSessions struct {
	seq     int
	params  []*stripesdk.CheckoutSessionParams
	expired []string
}

func (f *fakeSessions) New(params *stripesdk.CheckoutSessionParams) (*stripesdk.CheckoutSession, error) {
	f.seq++
	f.params = append(f.params, params)
	id := fmt.Sprintf("cs_e2e_%d", f.seq)
	return &stripesdk.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (f *fakeSessions) Expire(id string, _ *stripesdk.CheckoutSessionExpireParams) (*stripesdk.CheckoutSession, error) {
	f.expired = append(f.expired, id)
	return &stripesdk.CheckoutSession{ID: id}, nil
}

type testApp struct {
	t        *testing.T
	engine   *gin.Engine
	sessions *fakeSessions
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		App:    config.AppConfig{BaseURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			Secret:             "e2e-secret",
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
		},
		Stripe: config.StripeConfig{Currency: "usd"},
	}

	db := memory.NewDB()
	sessions := &fakeSessions{}
	engine, err := bootstrap.NewEngine(cfg, bootstrap.Infrastructure{
		Storage: bootstrap.Storage{
			Users:  memory.NewUserRepository(db),
			Books:  memory.NewBookRepository(db),
			Orders: memory.NewOrderRepository(db),
			Ledger: memory.NewEventLedger(db),
			Tx:     memory.NewTxManager(db),
		},
		Sessions:    memory.NewSessionStore(),
		Payments:    stripe.NewWithSessions(sessions, webhookSecret),
		UserOptions: []user.Option{user.WithBcryptCost(bcrypt.MinCost)},
	})
	require.NoError(t, err)

	return &testApp{t: t, engine: engine, sessions: sessions}
}

// do 发送请求，out非nil时解析data字段
func (a *testApp) do(method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	if out != nil {
		var env struct {
			response.Response
			Data json.RawMessage `json:"data"`
		}
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
		require.Zero(a.t, env.Code, w.Body.String())
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return w
}

func (a *testApp) webhook(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) registerAndLogin(name, email string) *appuser.AuthResponse {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	}, nil)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var auth appuser.AuthResponse
	a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	}, &auth)
	return &auth
}

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEvent(eventID, sessionID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"object": "checkout.session",
			"amount_total": %d,
			"payment_intent": "pi_e2e",
			"payment_method_types": ["card"]
		}}
	}`, eventID, sessionID, amount))
}

// 买家注册 → 成为卖家 → 上架(价格10) → 结账 → 支付回调 → 库存-1、订单已支付
func TestMarketplace_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	auth := app.registerAndLogin("Ann Reader", "ann@example.com")
	assert.Equal(t, "buyer", auth.User.Role)

	listing := map[string]interface{}{
		"title":       "Dune",
		"author":      "Frank Herbert",
		"price":       10,
		"condition":   "Good",
		"category":    "Science Fiction",
		"description": "Paperback",
		"quantity":    3,
	}

	// 买家不能上架
	w := app.do(http.MethodPost, "/api/v1/books", auth.AccessToken, listing, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var me appuser.UserInfo
	app.do(http.MethodPost, "/api/v1/users/me/become-seller", auth.AccessToken, nil, &me)
	assert.Equal(t, "seller", me.Role)

	// 旧Token中的角色仍是buyer，刷新会话后才能上架
	w = app.do(http.MethodPost, "/api/v1/books", auth.AccessToken, listing, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var refreshed appuser.AuthResponse
	app.do(http.MethodPost, "/api/v1/auth/session", auth.AccessToken, nil, &refreshed)
	assert.Equal(t, "seller", refreshed.User.Role)
	token := refreshed.AccessToken

	var created appbook.BookResponse
	w = app.do(http.MethodPost, "/api/v1/books", token, listing, &created)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, created.OriginalPrice.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "/placeholder.svg?height=400&width=300", created.CoverImage)

	var checkout apporder.CheckoutResponse
	app.do(http.MethodPost, "/api/v1/checkout", token, map[string]interface{}{
		"items":    []map[string]interface{}{{"book_id": created.ID, "quantity": 1, "price": 0.01}},
		"shipping": map[string]string{"city": "Austin"},
	}, &checkout)
	assert.Equal(t, "cs_e2e_1", checkout.SessionID)

	// 单价以目录为准，客户端提交的价格被忽略
	require.Len(t, app.sessions.params, 1)
	assert.Equal(t, int64(1000), *app.sessions.params[0].LineItems[0].PriceData.UnitAmount)

	var pending apporder.OrderResponse
	app.do(http.MethodGet, "/api/v1/orders?sessionId=cs_e2e_1", token, nil, &pending)
	assert.Equal(t, "pending", pending.Status)

	payload := completedEvent("evt_e2e_1", checkout.SessionID, 1000)
	w = app.webhook(payload, sign(payload, webhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var book appbook.BookResponse
	app.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", created.ID), "", nil, &book)
	assert.Equal(t, 2, book.Quantity)

	var paid apporder.OrderResponse
	app.do(http.MethodGet, "/api/v1/orders?sessionId=cs_e2e_1", token, nil, &paid)
	assert.Equal(t, "paid", paid.Status)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, "pi_e2e", paid.Payment.PaymentID)
	assert.True(t, paid.Payment.AmountPaid.Equal(decimal.NewFromInt(10)))

	// 重放同一事件不再扣减
	w = app.webhook(payload, sign(payload, webhookSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), apporder.ResultDuplicate)

	app.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", created.ID), "", nil, &book)
	assert.Equal(t, 2, book.Quantity)
}

func TestMarketplace_WebhookSignature(t *testing.T) {
	app := newTestApp(t)
	payload := completedEvent("evt_bad", "cs_e2e_1", 1000)

	w := app.webhook(payload, sign(payload, "whsec_wrong"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "webhook signature verification failed")

	// 未知订单确认收到，不做修改
	w = app.webhook(payload, sign(payload, webhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), apporder.ResultUnknownOrder)
}

func TestMarketplace_CheckoutValidation(t *testing.T) {
	app := newTestApp(t)
	auth := app.registerAndLogin("Bob", "bob@example.com")

	w := app.do(http.MethodPost, "/api/v1/checkout", auth.AccessToken, map[string]interface{}{"items": []interface{}{}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No items in cart")
	assert.Empty(t, app.sessions.params)

	w = app.do(http.MethodPost, "/api/v1/checkout", "", map[string]interface{}{"items": []interface{}{}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/api/v1/checkout", auth.AccessToken, map[string]interface{}{
		"items": []map[string]interface{}{{"book_id": 999, "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarketplace_Logout(t *testing.T) {
	app := newTestApp(t)
	auth := app.registerAndLogin("Cat", "cat@example.com")

	w := app.do(http.MethodGet, "/api/v1/users/me", auth.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/api/v1/users/me", auth.AccessToken, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPageGate(t *testing.T) {
	app := newTestApp(t)
	buyer := app.registerAndLogin("Dan", "dan@example.com")

	page := func(path, token string, cookie bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			if cookie {
				req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
			} else {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name     string
		path     string
		token    string
		cookie   bool
		status   int
		location string
	}{
		{"未登录访问个人中心", "/profile", "", false, http.StatusFound, "/login?callbackUrl=%2Fprofile"},
		{"未登录访问卖家页", "/sell", "", false, http.StatusFound, "/login?callbackUrl=%2Fsell"},
		{"买家访问卖家页", "/sell", buyer.AccessToken, true, http.StatusFound, "/become-seller"},
		{"买家访问管理页", "/admin/users", buyer.AccessToken, false, http.StatusFound, "/"},
		{"买家访问个人中心", "/profile", buyer.AccessToken, true, http.StatusOK, ""},
		{"买家访问dashboard", "/dashboard", buyer.AccessToken, false, http.StatusOK, ""},
		{"公开页面", "/login?callbackUrl=/dashboard", "", false, http.StatusOK, ""},
		{"/seller不属于/sell", "/become-seller", "", false, http.StatusOK, ""},
		{"首页", "/", "", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := page(tt.path, tt.token, tt.cookie)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}
