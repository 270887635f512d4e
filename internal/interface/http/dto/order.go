package dto

import (
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
)

// CheckoutRequest HTTP结账请求
// 明细中的价格、标题等字段被忽略，服务端以目录为准
// items为空时由应用层返回"No items in cart"
type CheckoutRequest struct {
	Items    []CheckoutItemRequest  `json:"items" binding:"dive"`
	Shipping map[string]interface{} `json:"shipping"`
}

// CheckoutItemRequest 购物车中的一项
type CheckoutItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" example:"1"`
}

// ToApp 转换为应用层请求
func (r CheckoutRequest) ToApp() apporder.CheckoutRequest {
	items := make([]apporder.CheckoutItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = apporder.CheckoutItem{BookID: it.BookID, Quantity: it.Quantity}
	}
	return apporder.CheckoutRequest{Items: items, Shipping: r.Shipping}
}

// OrderQuery GET /orders 的查询参数
type OrderQuery struct {
	SessionID string `form:"sessionId" example:"cs_test_a1b2"`
	OrderID   uint   `form:"orderId" example:"1"`
}
