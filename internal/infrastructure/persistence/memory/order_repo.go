package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/order"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

var errDuplicateOrder = apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单已存在")

type orderRepository struct {
	db *DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *DB) order.Repository {
	return &orderRepository{db: db}
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	cp.Shipping = maps.Clone(o.Shipping)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	return &cp
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	defer r.db.lockWrite(ctx)()

	for _, existing := range r.db.orders {
		if existing.OrderNo == o.OrderNo || existing.PaymentSessionRef == o.PaymentSessionRef {
			return errDuplicateOrder
		}
	}

	r.db.seq.order++
	o.ID = r.db.seq.order
	r.db.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepository) FindByID(_ context.Context, id uint) (*order.Order, error) {
	return r.find(func(o *order.Order) bool { return o.ID == id })
}

func (r *orderRepository) FindByOrderNo(_ context.Context, orderNo string) (*order.Order, error) {
	return r.find(func(o *order.Order) bool { return o.OrderNo == orderNo })
}

func (r *orderRepository) FindBySessionRef(_ context.Context, sessionRef string) (*order.Order, error) {
	return r.find(func(o *order.Order) bool { return o.PaymentSessionRef == sessionRef })
}

func (r *orderRepository) find(pred func(*order.Order) bool) (*order.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, o := range r.db.orders {
		if pred(o) {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// MarkPaid 仅当status=pending时生效
func (r *orderRepository) MarkPaid(ctx context.Context, id uint, details order.PaymentDetails) (bool, error) {
	defer r.db.lockWrite(ctx)()

	o, ok := r.db.orders[id]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	cp := cloneOrder(o)
	if err := cp.MarkPaid(details); err != nil {
		return false, nil
	}
	r.db.orders[id] = cp
	return true, nil
}

func (r *orderRepository) ListByUserID(_ context.Context, userID uint) ([]*order.Order, error) {
	r.db.mu.RLock()
	var out []*order.Order
	for _, o := range r.db.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, func(a, b *order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

type eventLedger struct {
	db *DB
}

// NewEventLedger 创建支付事件台账
func NewEventLedger(db *DB) order.EventLedger {
	return &eventLedger{db: db}
}

func (l *eventLedger) Record(ctx context.Context, e order.ProcessedPaymentEvent) (bool, error) {
	defer l.db.lockWrite(ctx)()

	if _, ok := l.db.events[e.EventID]; ok {
		return false, nil
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}
	l.db.events[e.EventID] = e
	return true, nil
}
