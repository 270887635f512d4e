package book

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 支持关键词、分类、品相、价格区间过滤与四种排序
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Query     string
	Category  string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    string // newest | price-low | price-high | title
	Page      int
	PageSize  int
}

// Params 转换为仓储查询参数(已规范化)
func (r ListBooksRequest) Params() book.ListParams {
	return book.ListParams{
		Query:     r.Query,
		Category:  r.Category,
		Condition: r.Condition,
		MinPrice:  r.MinPrice,
		MaxPrice:  r.MaxPrice,
		SortBy:    book.SortKey(r.SortBy),
		Page:      r.Page,
		PageSize:  r.PageSize,
	}.Normalize()
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	List       []BookResponse `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	params := req.Params()

	books, total, err := uc.bookService.List(ctx, params)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       ToBookResponses(books),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
