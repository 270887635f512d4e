package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// 支付回调请求体上限
const maxWebhookBody = 64 << 10

// OrderHandler 结账、订单查询与支付回调
type OrderHandler struct {
	checkoutUseCase *apporder.CheckoutUseCase
	queryUseCase    *apporder.QueryOrdersUseCase
	webhookUseCase  *apporder.PaymentWebhookUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	checkoutUseCase *apporder.CheckoutUseCase,
	queryUseCase *apporder.QueryOrdersUseCase,
	webhookUseCase *apporder.PaymentWebhookUseCase,
) *OrderHandler {
	return &OrderHandler{
		checkoutUseCase: checkoutUseCase,
		queryUseCase:    queryUseCase,
		webhookUseCase:  webhookUseCase,
	}
}

// Checkout 创建支付会话
// @Summary      结账
// @Description  以目录中的价格重新生成明细，创建Stripe Checkout会话并保存待支付订单
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "购物车"
// @Success      200 {object} response.Response{data=apporder.CheckoutResponse}
// @Failure      400 {object} response.Response "购物车为空或库存不足"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      500 {object} response.Response "checkout failed"
// @Router       /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.checkoutUseCase.Execute(c.Request.Context(), middleware.Subject(c), req.ToApp())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 我的订单；带sessionId或orderId时返回单个订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        sessionId query string false "支付会话ID（感谢页）"
// @Param        orderId   query int    false "订单ID"
// @Success      200 {object} response.Response{data=[]apporder.OrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q dto.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	sub := middleware.Subject(c)
	if q.SessionID != "" || q.OrderID != 0 {
		result, err := h.queryUseCase.Get(c.Request.Context(), sub, apporder.OrderQuery{
			SessionID: q.SessionID,
			OrderID:   q.OrderID,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	result, err := h.queryUseCase.List(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.queryUseCase.Get(c.Request.Context(), middleware.Subject(c), apporder.OrderQuery{OrderID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// StripeWebhook 支付结果回调
// @Summary      Stripe回调
// @Description  校验Stripe-Signature后处理checkout.session.completed，重复事件只生效一次
// @Tags         支付
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "签名"
// @Success      200 {object} response.Response{data=apporder.WebhookResult}
// @Failure      400 {object} response.Response "webhook signature verification failed"
// @Router       /api/v1/webhooks/stripe [post]
func (h *OrderHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams.WithCause(err))
		return
	}

	result, err := h.webhookUseCase.Execute(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
