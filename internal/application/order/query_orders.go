package order

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/order"
)

// QueryOrdersUseCase 买家查询自己的订单
type QueryOrdersUseCase struct {
	orderRepo order.Repository
}

// NewQueryOrdersUseCase 创建订单查询用例
func NewQueryOrdersUseCase(orderRepo order.Repository) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{orderRepo: orderRepo}
}

// OrderQuery 按支付会话或订单ID查询单个订单
type OrderQuery struct {
	SessionID string
	OrderID   uint
}

// Get 他人的订单同样返回不存在
func (uc *QueryOrdersUseCase) Get(ctx context.Context, sub access.Subject, q OrderQuery) (*OrderResponse, error) {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}

	var (
		o   *order.Order
		err error
	)
	switch {
	case q.SessionID != "":
		o, err = uc.orderRepo.FindBySessionRef(ctx, q.SessionID)
	case q.OrderID != 0:
		o, err = uc.orderRepo.FindByID(ctx, q.OrderID)
	default:
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := access.Authorize(sub, access.ViewOrder, access.OwnedBy(o.UserID)); err != nil {
		return nil, order.ErrOrderNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List 当前用户的订单，按创建时间倒序
func (uc *QueryOrdersUseCase) List(ctx context.Context, sub access.Subject) ([]OrderResponse, error) {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}
	orders, err := uc.orderRepo.ListByUserID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	list := make([]OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = ToOrderResponse(o)
	}
	return list, nil
}
