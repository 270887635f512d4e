package book

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// 结果来源
const (
	SourceDatabase = "database"
	SourceExternal = "external"
	SourceCombined = "combined"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// SearchCatalogUseCase 两级书目检索
//
//	本地图书 ──不足limit──▶ 外部书目补齐剩余
//	外部失败或熔断时只返回本地结果
type SearchCatalogUseCase struct {
	bookService book.Service
	external    book.ExternalCatalog // nil表示未启用
}

// NewSearchCatalogUseCase external可以为nil
func NewSearchCatalogUseCase(bookService book.Service, external book.ExternalCatalog) *SearchCatalogUseCase {
	return &SearchCatalogUseCase{bookService: bookService, external: external}
}

// SearchCatalogResponse 检索结果
type SearchCatalogResponse struct {
	Books  []BookResponse `json:"books"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Source string         `json:"source"`
}

// Execute req.PageSize作为limit，默认10，最大50
func (uc *SearchCatalogUseCase) Execute(ctx context.Context, req ListBooksRequest) (*SearchCatalogResponse, error) {
	limit := req.PageSize
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)
	req.PageSize = limit
	params := req.Params()

	books, total, err := uc.bookService.List(ctx, params)
	if err != nil {
		return nil, err
	}

	list := ToBookResponses(books)
	for i := range list {
		list[i].Source = SourceDatabase
	}
	resp := &SearchCatalogResponse{
		Books:  list,
		Total:  total,
		Page:   params.Page,
		Limit:  limit,
		Source: SourceDatabase,
	}

	remaining := limit - len(books)
	if remaining <= 0 || uc.external == nil {
		return resp, nil
	}

	// 外部检索词：关键词优先，其次分类
	term := req.Query
	if term == "" {
		term = req.Category
	}
	external, found, err := uc.external.Search(ctx, term, params.Page, remaining)
	if err != nil {
		slog.WarnContext(ctx, "外部书目不可用，仅返回本地结果", "error", err)
		return resp, nil
	}

	for _, l := range external[:min(len(external), remaining)] {
		item := ToBookResponse(&l.Book)
		item.ExternalKey = l.Key
		item.Source = SourceExternal
		resp.Books = append(resp.Books, item)
	}
	resp.Total = total + found
	resp.Source = SourceCombined
	return resp, nil
}
