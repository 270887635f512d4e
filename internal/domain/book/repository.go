package book

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository 图书仓储接口
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	Update(ctx context.Context, book *Book) error

	// Delete 不存在时返回ErrBookNotFound
	Delete(ctx context.Context, id uint) error

	// List 过滤、排序、分页
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// ListBySeller 某卖家的全部图书，按创建时间倒序
	ListBySeller(ctx context.Context, sellerID uint) ([]*Book, error)

	// DecreaseStock 条件扣减：quantity >= n 时才扣减
	// 库存不足返回ErrInsufficientStock，图书不存在返回ErrBookNotFound
	// 参与ctx中的事务
	DecreaseStock(ctx context.Context, id uint, n int) error
}

// SortKey 排序方式
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortTitle     SortKey = "title"
)

// ParseSortKey 未知值回落到newest
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPriceLow, SortPriceHigh, SortTitle:
		return SortKey(s)
	default:
		return SortNewest
	}
}

const (
	// MaxPageSize 单页最多50条
	MaxPageSize     = 50
	DefaultPageSize = 50
)

// ListParams 列表查询参数
type ListParams struct {
	Query     string // 标题、作者、描述，大小写不敏感的包含匹配
	Category  string // 大小写不敏感的包含匹配
	Condition string // 大小写不敏感的相等匹配
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    SortKey
	Page      int // 从1开始
	PageSize  int
}

// Normalize 补齐默认值并限制页大小
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.SortBy = ParseSortKey(string(p.SortBy))
	return p
}

// Offset 分页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
