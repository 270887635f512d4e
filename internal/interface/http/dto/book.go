package dto

import (
	"github.com/shopspring/decimal"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// BookRequest HTTP上架与更新请求
// 上架时title、author、price、condition、category、description必填,
// 由领域层返回"Missing required field: <name>"
// 更新时只修改提交的字段
type BookRequest struct {
	Title         *string          `json:"title" binding:"omitempty,max=200" example:"Dune"`
	Author        *string          `json:"author" binding:"omitempty,max=100" example:"Frank Herbert"`
	Price         *decimal.Decimal `json:"price" swaggertype:"number" example:"10.99"`
	OriginalPrice *decimal.Decimal `json:"original_price" swaggertype:"number" example:"18.00"`
	Condition     *string          `json:"condition" binding:"omitempty,book_condition" example:"Very Good"`
	Category      *string          `json:"category" binding:"omitempty,max=100" example:"Science Fiction"`
	Description   *string          `json:"description" binding:"omitempty,max=5000" example:"Paperback, light wear on the spine"`
	CoverImage    *string          `json:"cover_image" binding:"omitempty,max=500" example:"https://res.cloudinary.com/demo/image/upload/dune.jpg"`
	Quantity      *int             `json:"quantity" binding:"omitempty,min=0,max=9999" example:"1"`
	ISBN          *string          `json:"isbn" binding:"omitempty,max=20" example:"9780441172719"`
	Language      *string          `json:"language" binding:"omitempty,max=50" example:"English"`
	Pages         *int             `json:"pages" binding:"omitempty,min=0" example:"412"`
	PublishedYear *int             `json:"published_year" binding:"omitempty,min=0,max=3000" example:"1965"`
}

// Fields 转换为应用层输入
func (r BookRequest) Fields() appbook.BookFields {
	return appbook.BookFields{
		Title:         r.Title,
		Author:        r.Author,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Condition:     r.Condition,
		Category:      r.Category,
		Description:   r.Description,
		CoverImage:    r.CoverImage,
		Quantity:      r.Quantity,
		ISBN:          r.ISBN,
		Language:      r.Language,
		Pages:         r.Pages,
		PublishedYear: r.PublishedYear,
	}
}

// ListBooksQuery HTTP图书列表与外部检索的查询参数
// limit与page_size等价，limit优先
type ListBooksQuery struct {
	Query     string `form:"q" binding:"omitempty,max=100" example:"dune"`
	Category  string `form:"category" binding:"omitempty,max=100" example:"Fiction"`
	Condition string `form:"condition" binding:"omitempty,book_condition" example:"Good"`
	MinPrice  string `form:"minPrice" binding:"omitempty,numeric" example:"5"`
	MaxPrice  string `form:"maxPrice" binding:"omitempty,numeric" example:"25"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=newest price-low price-high title" example:"newest"`
	Page      int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1" example:"20"`
	Limit     int    `form:"limit" binding:"omitempty,min=1" example:"10"`
}

// Request 转换为应用层请求
func (q ListBooksQuery) Request() (appbook.ListBooksRequest, error) {
	req := appbook.ListBooksRequest{
		Query:     q.Query,
		Category:  q.Category,
		Condition: q.Condition,
		SortBy:    q.SortBy,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if q.Limit > 0 {
		req.PageSize = q.Limit
	}

	var err error
	if req.MinPrice, err = parsePrice(q.MinPrice); err != nil {
		return req, err
	}
	if req.MaxPrice, err = parsePrice(q.MaxPrice); err != nil {
		return req, err
	}
	return req, nil
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperrors.ErrInvalidParams.WithCause(err)
	}
	return &d, nil
}
