package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bookmarket/internal/domain/order"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单，GORM会自动保存关联的Items
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return r.findOne(ctx, "order_no = ?", orderNo)
}

// FindBySessionRef 根据支付会话ID查找订单
func (r *orderRepository) FindBySessionRef(ctx context.Context, sessionRef string) (*order.Order, error) {
	return r.findOne(ctx, "payment_session_ref = ?", sessionRef)
}

func (r *orderRepository) findOne(ctx context.Context, cond string, arg interface{}) (*order.Order, error) {
	var model OrderModel
	err := dbFrom(ctx, r.db).Preload("Items").Where(cond, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// MarkPaid 条件更新
// UPDATE orders SET status='paid', ... WHERE id = ? AND status = 'pending'
func (r *orderRepository) MarkPaid(ctx context.Context, id uint, details order.PaymentDetails) (bool, error) {
	paidAt := details.PaidAt
	result := dbFrom(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(order.StatusPending)).
		Updates(map[string]interface{}{
			"status":         string(order.StatusPaid),
			"payment_id":     details.PaymentID,
			"payment_method": details.Method,
			"amount_paid":    decimal.NewNullDecimal(details.AmountPaid),
			"paid_at":        &paidAt,
		})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "更新订单失败")
	}
	return result.RowsAffected == 1, nil
}

// ListByUserID 查询用户的订单列表(包含明细)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	var models []OrderModel
	err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, nil
}

// eventLedger 已处理支付事件台账(MySQL)
type eventLedger struct {
	db *gorm.DB
}

// NewEventLedger 创建支付事件台账
func NewEventLedger(db *gorm.DB) order.EventLedger {
	return &eventLedger{db: db}
}

// Record 主键冲突表示事件已处理
func (l *eventLedger) Record(ctx context.Context, e order.ProcessedPaymentEvent) (bool, error) {
	model := &PaymentEventModel{
		EventID:     e.EventID,
		Type:        e.Type,
		SessionID:   e.SessionID,
		ProcessedAt: e.ProcessedAt,
	}
	if err := dbFrom(ctx, l.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "记录支付事件失败")
	}
	return true, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			BookID:     item.BookID,
			Title:      item.Title,
			Author:     item.Author,
			Price:      item.Price,
			Quantity:   item.Quantity,
			CoverImage: item.CoverImage,
		}
	}

	m := &OrderModel{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		UserID:            o.UserID,
		Total:             o.Total,
		Status:            string(o.Status),
		Shipping:          o.Shipping,
		PaymentSessionRef: o.PaymentSessionRef,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if p := o.Payment; p != nil {
		paidAt := p.PaidAt
		m.PaymentID = p.PaymentID
		m.PaymentMethod = p.Method
		m.AmountPaid = decimal.NewNullDecimal(p.AmountPaid)
		m.PaidAt = &paidAt
	}
	return m
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			BookID:     item.BookID,
			Title:      item.Title,
			Author:     item.Author,
			Price:      item.Price,
			Quantity:   item.Quantity,
			CoverImage: item.CoverImage,
		}
	}

	o := &order.Order{
		ID:                model.ID,
		OrderNo:           model.OrderNo,
		UserID:            model.UserID,
		Items:             items,
		Shipping:          order.ShippingDetails(model.Shipping),
		Total:             model.Total,
		Status:            order.Status(model.Status),
		PaymentSessionRef: model.PaymentSessionRef,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.PaidAt != nil {
		o.Payment = &order.PaymentDetails{
			PaymentID:  model.PaymentID,
			Method:     model.PaymentMethod,
			AmountPaid: model.AmountPaid.Decimal,
			PaidAt:     *model.PaidAt,
		}
	}
	return o
}
