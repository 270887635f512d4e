// Package cart 客户端购物车
//
// Store由客户端入口持有，构造时从Persistence加载一次，每次修改后保存。
// 购物车不访问网络，库存以加入时的图书快照为准，结账时由服务端重新校验。
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// BookSnapshot 加入购物车时的图书信息
type BookSnapshot struct {
	ID         uint            `json:"id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	CoverImage string          `json:"coverImage"`
	Condition  string          `json:"condition"`
	SellerName string          `json:"sellerName"`
	Quantity   int             `json:"quantity"` // 加入时的可售数量
}

// Item 购物车条目
type Item struct {
	Book        BookSnapshot `json:"book"`
	Quantity    int          `json:"quantity"`
	MaxQuantity int          `json:"maxQuantity"` // 首次加入时的可售数量
}

// Subtotal 单价×数量
func (i Item) Subtotal() decimal.Decimal {
	return i.Book.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Persistence 购物车持久化端口
type Persistence interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// Store 购物车状态，并发安全
type Store struct {
	mu      sync.Mutex
	items   []Item
	persist Persistence
}

// NewStore 从persist加载已保存的条目
func NewStore(persist Persistence) (*Store, error) {
	items, err := persist.Load()
	if err != nil {
		return nil, apperrors.Wrap(err, "加载购物车失败")
	}
	return &Store{items: items, persist: persist}, nil
}

// AddToCart 加入购物车，qty<=0按1处理，不返回库存错误
// 已存在时累加并截断到MaxQuantity，条目的快照与上限保持首次加入时的值。
// 售罄的图书也会加入（数量为0），由结账时的库存校验拒绝。
func (s *Store) AddToCart(book BookSnapshot, qty int) error {
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(book.ID); i >= 0 {
		item := &s.items[i]
		item.Quantity = max(min(item.Quantity+qty, item.MaxQuantity), 0)
		return s.save()
	}

	limit := max(book.Quantity, 0)
	s.items = append(s.items, Item{
		Book:        book,
		Quantity:    min(qty, limit),
		MaxQuantity: limit,
	})
	return s.save()
}

// RemoveFromCart 移除条目，不存在时不做任何事
func (s *Store) RemoveFromCart(bookID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(bookID)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.save()
}

// UpdateQuantity 直接覆盖数量，不截断也不移除；不存在时不做任何事
func (s *Store) UpdateQuantity(bookID uint, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(bookID)
	if i < 0 {
		return nil
	}
	s.items[i].Quantity = qty
	return s.save()
}

// ClearCart 结账跳转成功后清空
func (s *Store) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.save()
}

// Items 返回副本，保持加入顺序
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total Σ price × quantity
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count 总件数
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *Store) indexOf(bookID uint) int {
	for i := range s.items {
		if s.items[i].Book.ID == bookID {
			return i
		}
	}
	return -1
}

func (s *Store) save() error {
	if err := s.persist.Save(s.items); err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}
	return nil
}
