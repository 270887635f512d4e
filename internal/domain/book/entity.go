package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderCover 未上传封面时使用的占位图
const PlaceholderCover = "/placeholder.svg?height=400&width=300"

// originalPriceMarkup 未填写原价时按售价上浮20%
var originalPriceMarkup = decimal.RequireFromString("1.2")

// Condition 品相
type Condition string

const (
	ConditionNew        Condition = "New"
	ConditionLikeNew    Condition = "Like New"
	ConditionVeryGood   Condition = "Very Good"
	ConditionGood       Condition = "Good"
	ConditionAcceptable Condition = "Acceptable"
)

// Conditions 所有品相，按从好到差排列
var Conditions = []Condition{
	ConditionNew,
	ConditionLikeNew,
	ConditionVeryGood,
	ConditionGood,
	ConditionAcceptable,
}

// Categories 上架表单提供的分类选项，分类本身不做限制
var Categories = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Romance",
	"Mystery",
	"Biography",
	"History",
	"Self-Help",
}

// ParseCondition 大小写、空格与连字符不敏感（"like-new" → Like New）
func ParseCondition(s string) (Condition, error) {
	key := normalizeCondition(s)
	for _, c := range Conditions {
		if normalizeCondition(string(c)) == key {
			return c, nil
		}
	}
	return "", ErrInvalidCondition
}

func normalizeCondition(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Seller 图书的发布者快照
type Seller struct {
	ID   uint
	Name string
}

// Book 图书实体(聚合根)
// 价格使用decimal，持久化为DECIMAL(10,2)
type Book struct {
	ID            uint
	Title         string
	Author        string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Condition     Condition
	Category      string
	Description   string
	CoverImage    string
	Seller        Seller
	Quantity      int // 可售数量，不小于0
	ISBN          string
	Language      string
	Pages         int
	PublishedYear int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Draft 发布图书的输入，指针字段表示可选
type Draft struct {
	Title         string
	Author        string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Condition     string
	Category      string
	Description   string
	CoverImage    string
	Quantity      *int
	ISBN          string
	Language      string
	Pages         int
	PublishedYear int
}

// NewBook 校验必填字段并填充默认值
// 必填：title, author, price, condition, category, description
func NewBook(seller Seller, d Draft) (*Book, error) {
	if err := requireFields(d); err != nil {
		return nil, err
	}
	if d.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	cond, err := ParseCondition(d.Condition)
	if err != nil {
		return nil, err
	}

	quantity := 1
	if d.Quantity != nil {
		quantity = *d.Quantity
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	price := d.Price.Round(2)
	original := price.Mul(originalPriceMarkup).Round(2)
	if d.OriginalPrice != nil && d.OriginalPrice.IsPositive() {
		original = d.OriginalPrice.Round(2)
	}

	cover := strings.TrimSpace(d.CoverImage)
	if cover == "" {
		cover = PlaceholderCover
	}

	now := time.Now()
	return &Book{
		Title:         strings.TrimSpace(d.Title),
		Author:        strings.TrimSpace(d.Author),
		Price:         price,
		OriginalPrice: original,
		Condition:     cond,
		Category:      strings.TrimSpace(d.Category),
		Description:   strings.TrimSpace(d.Description),
		CoverImage:    cover,
		Seller:        seller,
		Quantity:      quantity,
		ISBN:          strings.TrimSpace(d.ISBN),
		Language:      strings.TrimSpace(d.Language),
		Pages:         d.Pages,
		PublishedYear: d.PublishedYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func requireFields(d Draft) error {
	checks := []struct {
		field string
		ok    bool
	}{
		{"title", strings.TrimSpace(d.Title) != ""},
		{"author", strings.TrimSpace(d.Author) != ""},
		{"price", !d.Price.IsZero()},
		{"condition", strings.TrimSpace(d.Condition) != ""},
		{"category", strings.TrimSpace(d.Category) != ""},
		{"description", strings.TrimSpace(d.Description) != ""},
	}
	for _, c := range checks {
		if !c.ok {
			return MissingField(c.field)
		}
	}
	return nil
}

// Patch 部分更新，nil字段保持不变
type Patch struct {
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

// Apply 应用部分更新（领域行为）
func (b *Book) Apply(p Patch) error {
	if p.Price != nil {
		if !p.Price.IsPositive() {
			return ErrInvalidPrice
		}
		b.Price = p.Price.Round(2)
	}
	if p.OriginalPrice != nil {
		if p.OriginalPrice.IsNegative() {
			return ErrInvalidPrice
		}
		b.OriginalPrice = p.OriginalPrice.Round(2)
	}
	if p.Condition != nil {
		cond, err := ParseCondition(*p.Condition)
		if err != nil {
			return err
		}
		b.Condition = cond
	}
	if p.Quantity != nil {
		if *p.Quantity < 0 {
			return ErrInvalidQuantity
		}
		b.Quantity = *p.Quantity
	}

	setString(&b.Title, p.Title)
	setString(&b.Author, p.Author)
	setString(&b.Category, p.Category)
	setString(&b.Description, p.Description)
	setString(&b.ISBN, p.ISBN)
	setString(&b.Language, p.Language)
	if p.CoverImage != nil {
		b.CoverImage = strings.TrimSpace(*p.CoverImage)
		if b.CoverImage == "" {
			b.CoverImage = PlaceholderCover
		}
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
	if p.PublishedYear != nil {
		b.PublishedYear = *p.PublishedYear
	}

	b.UpdatedAt = time.Now()
	return nil
}

// 必填文本字段不允许被更新为空
func setString(dst *string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		*dst = s
	}
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.Seller.ID == userID
}

// HasStock 可售数量是否满足n
func (b *Book) HasStock(n int) bool {
	return n > 0 && b.Quantity >= n
}
