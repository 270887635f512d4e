package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

type bookRepository struct {
	db *DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *DB) book.Repository {
	return &bookRepository{db: db}
}

func cloneBook(b *book.Book) *book.Book {
	cp := *b
	return &cp
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	defer r.db.lockWrite(ctx)()

	r.db.seq.book++
	b.ID = r.db.seq.book
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	r.db.books[b.ID] = cloneBook(b)
	return nil
}

func (r *bookRepository) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	b, ok := r.db.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.db.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.db.books[b.ID] = cloneBook(b)
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.db.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.db.books, id)
	return nil
}

func (r *bookRepository) List(_ context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params = params.Normalize()

	r.db.mu.RLock()
	matched := make([]*book.Book, 0, len(r.db.books))
	for _, b := range r.db.books {
		if matches(b, params) {
			matched = append(matched, cloneBook(b))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(matched, sorter(params.SortBy))

	total := int64(len(matched))
	start := min(params.Offset(), len(matched))
	end := min(start+params.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (r *bookRepository) ListBySeller(_ context.Context, sellerID uint) ([]*book.Book, error) {
	r.db.mu.RLock()
	var out []*book.Book
	for _, b := range r.db.books {
		if b.Seller.ID == sellerID {
			out = append(out, cloneBook(b))
		}
	}
	r.db.mu.RUnlock()

	slices.SortFunc(out, sorter(book.SortNewest))
	return out, nil
}

// DecreaseStock 与MySQL实现相同的条件扣减语义
func (r *bookRepository) DecreaseStock(ctx context.Context, id uint, n int) error {
	defer r.db.lockWrite(ctx)()

	b, ok := r.db.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Quantity < n {
		return book.ErrInsufficientStock
	}
	cp := cloneBook(b)
	cp.Quantity -= n
	r.db.books[id] = cp
	return nil
}

func matches(b *book.Book, p book.ListParams) bool {
	if q := strings.ToLower(strings.TrimSpace(p.Query)); q != "" {
		if !containsFold(b.Title, q) && !containsFold(b.Author, q) && !containsFold(b.Description, q) {
			return false
		}
	}
	if c := strings.ToLower(strings.TrimSpace(p.Category)); c != "" && !containsFold(b.Category, c) {
		return false
	}
	if c := strings.TrimSpace(p.Condition); c != "" && !strings.EqualFold(string(b.Condition), c) {
		return false
	}
	if p.MinPrice != nil && b.Price.LessThan(*p.MinPrice) {
		return false
	}
	if p.MaxPrice != nil && b.Price.GreaterThan(*p.MaxPrice) {
		return false
	}
	return true
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

func sorter(key book.SortKey) func(a, b *book.Book) int {
	byNewest := func(a, b *book.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	}
	switch key {
	case book.SortPriceLow:
		return func(a, b *book.Book) int {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c
			}
			return byNewest(a, b)
		}
	case book.SortPriceHigh:
		return func(a, b *book.Book) int {
			if c := b.Price.Cmp(a.Price); c != 0 {
				return c
			}
			return byNewest(a, b)
		}
	case book.SortTitle:
		return func(a, b *book.Book) int {
			if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
				return c
			}
			return byNewest(a, b)
		}
	default:
		return byNewest
	}
}
