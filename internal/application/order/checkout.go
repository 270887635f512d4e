package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/domain/payment"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
	"github.com/xiebiao/bookmarket/pkg/saga"
)

// ErrCheckoutFailed 支付会话或订单保存失败，内部原因只记录日志
var ErrCheckoutFailed = apperrors.New(apperrors.ErrCodeUpstream, "checkout failed")

// ShippingCountries 允许的收货国家
var ShippingCountries = []string{"US", "CA", "GB", "IN"}

// CheckoutConfig 结账配置
type CheckoutConfig struct {
	BaseURL  string // 站点地址，用于回跳地址与封面绝对路径
	Currency string // 默认usd
}

// CheckoutUseCase 结账用例
//
//	校验明细 → 读取权威价格 → 创建托管支付会话 → 保存待支付订单
//
// 库存不在这里扣减，支付完成的回调才扣减
type CheckoutUseCase struct {
	bookRepo    book.Repository
	orderRepo   order.Repository
	userService user.Service
	gateway     payment.Gateway
	cfg         CheckoutConfig
}

// NewCheckoutUseCase 创建结账用例
func NewCheckoutUseCase(
	bookRepo book.Repository,
	orderRepo order.Repository,
	userService user.Service,
	gateway payment.Gateway,
	cfg CheckoutConfig,
) *CheckoutUseCase {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &CheckoutUseCase{
		bookRepo:    bookRepo,
		orderRepo:   orderRepo,
		userService: userService,
		gateway:     gateway,
		cfg:         cfg,
	}
}

// CheckoutRequest 结账请求
// 客户端提交的价格被忽略，以目录中的价格为准
type CheckoutRequest struct {
	Items    []CheckoutItem
	Shipping map[string]interface{}
}

// CheckoutItem 购物车中的一项
type CheckoutItem struct {
	BookID   uint
	Quantity int
}

// CheckoutResponse 结账响应
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	OrderNo   string `json:"order_no"`
}

// Execute 执行结账
func (uc *CheckoutUseCase) Execute(ctx context.Context, sub access.Subject, req CheckoutRequest) (*CheckoutResponse, error) {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}

	items, err := uc.snapshotItems(ctx, req.Items)
	if err != nil {
		metrics.IncCounterVec(metrics.CheckoutSessionsTotal, "rejected")
		return nil, err
	}

	buyer, err := uc.userService.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}

	var (
		session *payment.Session
		created *order.Order
	)
	orderNo := order.GenerateOrderNo()

	s := saga.NewSaga("checkout", 30*time.Second).
		AddStep("create_payment_session",
			func(ctx context.Context) error {
				var err error
				session, err = uc.gateway.CreateCheckoutSession(ctx, uc.paymentRequest(buyer, items))
				return err
			},
			func(ctx context.Context) error {
				return uc.gateway.ExpireCheckoutSession(ctx, session.ID)
			}).
		AddStep("save_order",
			func(ctx context.Context) error {
				o, err := order.NewOrder(orderNo, sub.UserID, items, req.Shipping, session.ID)
				if err != nil {
					return err
				}
				if err := uc.orderRepo.Create(ctx, o); err != nil {
					return err
				}
				created = o
				return nil
			}, nil)

	if err := s.Execute(ctx); err != nil {
		metrics.IncCounterVec(metrics.CheckoutSessionsTotal, "failed")
		return nil, ErrCheckoutFailed.WithCause(err)
	}

	metrics.IncCounterVec(metrics.CheckoutSessionsTotal, "created")
	slog.InfoContext(ctx, "结账会话已创建",
		"order_no", created.OrderNo,
		"session_id", session.ID,
		"user_id", sub.UserID,
		"total", created.Total.StringFixed(2),
	)

	return &CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
		OrderNo:   created.OrderNo,
	}, nil
}

// snapshotItems 按目录中的图书生成订单明细，同一本书的数量合并
func (uc *CheckoutUseCase) snapshotItems(ctx context.Context, in []CheckoutItem) ([]order.OrderItem, error) {
	if len(in) == 0 {
		return nil, order.ErrInvalidOrderItems
	}

	var (
		ids []uint
		qty = make(map[uint]int, len(in))
	)
	for _, it := range in {
		if it.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
		if _, seen := qty[it.BookID]; !seen {
			ids = append(ids, it.BookID)
		}
		qty[it.BookID] += it.Quantity
	}

	items := make([]order.OrderItem, 0, len(ids))
	for _, id := range ids {
		b, err := uc.bookRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		n := qty[id]
		if !b.HasStock(n) {
			return nil, book.ErrInsufficientStock.WithCause(
				fmt.Errorf("《%s》库存%d，需要%d", b.Title, b.Quantity, n))
		}
		items = append(items, order.OrderItem{
			BookID:     b.ID,
			Title:      b.Title,
			Author:     b.Author,
			Price:      b.Price,
			Quantity:   n,
			CoverImage: b.CoverImage,
		})
	}
	return items, nil
}

func (uc *CheckoutUseCase) paymentRequest(buyer *user.User, items []order.OrderItem) payment.CheckoutRequest {
	lines := make([]payment.LineItem, len(items))
	for i, it := range items {
		lines[i] = payment.LineItem{
			Name:        it.Title,
			Description: it.Author,
			ImageURL:    uc.absoluteURL(it.CoverImage),
			UnitAmount:  payment.ToMinorUnits(it.Price),
			Quantity:    int64(it.Quantity),
		}
	}
	return payment.CheckoutRequest{
		LineItems:         lines,
		Currency:          uc.cfg.Currency,
		CustomerEmail:     buyer.Email,
		SuccessURL:        uc.cfg.BaseURL + "/thank-you?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         uc.cfg.BaseURL + "/cart",
		Metadata:          map[string]string{"userId": fmt.Sprintf("%d", buyer.ID)},
		ShippingCountries: ShippingCountries,
	}
}

// absoluteURL 站内相对路径补全为绝对地址
func (uc *CheckoutUseCase) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return uc.cfg.BaseURL + u
}
