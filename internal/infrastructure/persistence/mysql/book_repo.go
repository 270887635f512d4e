package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 使用Save更新所有字段
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新图书失败")
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 过滤、排序、分页
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params = params.Normalize()

	var models []BookModel
	var total int64

	query := dbFrom(ctx, r.db).Model(&BookModel{})

	// 关键词搜索(标题、作者、描述)，大小写由utf8mb4_general_ci排序规则保证不敏感
	if q := strings.TrimSpace(params.Query); q != "" {
		keyword := "%" + escapeLike(q) + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR description LIKE ?", keyword, keyword, keyword)
	}
	if c := strings.TrimSpace(params.Category); c != "" {
		query = query.Where("category LIKE ?", "%"+escapeLike(c)+"%")
	}
	if c := strings.TrimSpace(params.Condition); c != "" {
		query = query.Where("LOWER(`condition`) = ?", strings.ToLower(c))
	}
	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case book.SortPriceLow:
		query = query.Order("price ASC")
	case book.SortPriceHigh:
		query = query.Order("price DESC")
	case book.SortTitle:
		query = query.Order("title ASC")
	default:
		query = query.Order("created_at DESC")
	}
	query = query.Order("id DESC")

	if err := query.Limit(params.PageSize).Offset(params.Offset()).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// ListBySeller 某卖家的图书，按创建时间倒序
func (r *bookRepository) ListBySeller(ctx context.Context, sellerID uint) ([]*book.Book, error) {
	var models []BookModel
	err := dbFrom(ctx, r.db).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询卖家图书失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// DecreaseStock 条件扣减库存(原子操作)
// UPDATE books SET quantity = quantity - n WHERE id = ? AND quantity >= n
func (r *bookRepository) DecreaseStock(ctx context.Context, id uint, n int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("quantity >= ?", n).
		Update("quantity", gorm.Expr("quantity - ?", n))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者库存不足，再查一次确定原因
		var model BookModel
		if err := db.Select("id").First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price,
		OriginalPrice: b.OriginalPrice,
		Condition:     string(b.Condition),
		Category:      b.Category,
		Description:   b.Description,
		CoverImage:    b.CoverImage,
		SellerID:      b.Seller.ID,
		SellerName:    b.Seller.Name,
		Quantity:      b.Quantity,
		ISBN:          b.ISBN,
		Language:      b.Language,
		Pages:         b.Pages,
		PublishedYear: b.PublishedYear,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Author:        model.Author,
		Price:         model.Price,
		OriginalPrice: model.OriginalPrice,
		Condition:     book.Condition(model.Condition),
		Category:      model.Category,
		Description:   model.Description,
		CoverImage:    model.CoverImage,
		Seller:        book.Seller{ID: model.SellerID, Name: model.SellerName},
		Quantity:      model.Quantity,
		ISBN:          model.ISBN,
		Language:      model.Language,
		Pages:         model.Pages,
		PublishedYear: model.PublishedYear,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
