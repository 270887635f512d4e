package book

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// SellerInfo 卖家快照
type SellerInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookResponse 图书详情DTO
// ID为0的条目来自外部书目，ExternalKey为其外部标识
type BookResponse struct {
	ID            uint            `json:"id"`
	ExternalKey   string          `json:"external_key,omitempty"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Condition     string          `json:"condition"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	CoverImage    string          `json:"cover_image"`
	Seller        SellerInfo      `json:"seller"`
	Quantity      int             `json:"quantity"`
	ISBN          string          `json:"isbn,omitempty"`
	Language      string          `json:"language,omitempty"`
	Pages         int             `json:"pages,omitempty"`
	PublishedYear int             `json:"published_year,omitempty"`
	Source        string          `json:"source,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

// ToBookResponse 实体转DTO
func ToBookResponse(b *book.Book) BookResponse {
	resp := BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price,
		OriginalPrice: b.OriginalPrice,
		Condition:     string(b.Condition),
		Category:      b.Category,
		Description:   b.Description,
		CoverImage:    b.CoverImage,
		Seller:        SellerInfo{ID: b.Seller.ID, Name: b.Seller.Name},
		Quantity:      b.Quantity,
		ISBN:          b.ISBN,
		Language:      b.Language,
		Pages:         b.Pages,
		PublishedYear: b.PublishedYear,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// ToBookResponses 批量转换
func ToBookResponses(books []*book.Book) []BookResponse {
	list := make([]BookResponse, len(books))
	for i, b := range books {
		list[i] = ToBookResponse(b)
	}
	return list
}

// BookFields 发布与更新共用的输入，nil表示未提交
type BookFields struct {
	Title         *string
	Author        *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Condition     *string
	Category      *string
	Description   *string
	CoverImage    *string
	Quantity      *int
	ISBN          *string
	Language      *string
	Pages         *int
	PublishedYear *int
}

func (f BookFields) draft() book.Draft {
	d := book.Draft{
		Title:         deref(f.Title),
		Author:        deref(f.Author),
		OriginalPrice: f.OriginalPrice,
		Condition:     deref(f.Condition),
		Category:      deref(f.Category),
		Description:   deref(f.Description),
		CoverImage:    deref(f.CoverImage),
		Quantity:      f.Quantity,
		ISBN:          deref(f.ISBN),
		Language:      deref(f.Language),
	}
	if f.Price != nil {
		d.Price = *f.Price
	}
	if f.Pages != nil {
		d.Pages = *f.Pages
	}
	if f.PublishedYear != nil {
		d.PublishedYear = *f.PublishedYear
	}
	return d
}

func (f BookFields) patch() book.Patch {
	return book.Patch{
		Title:         f.Title,
		Author:        f.Author,
		Price:         f.Price,
		OriginalPrice: f.OriginalPrice,
		Condition:     f.Condition,
		Category:      f.Category,
		Description:   f.Description,
		CoverImage:    f.CoverImage,
		Quantity:      f.Quantity,
		ISBN:          f.ISBN,
		Language:      f.Language,
		Pages:         f.Pages,
		PublishedYear: f.PublishedYear,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
