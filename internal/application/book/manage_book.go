package book

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// ManageBookUseCase 详情、更新、删除与卖家自己的图书
type ManageBookUseCase struct {
	bookService book.Service
}

// NewManageBookUseCase 创建图书管理用例
func NewManageBookUseCase(bookService book.Service) *ManageBookUseCase {
	return &ManageBookUseCase{bookService: bookService}
}

// Get 公开详情
func (uc *ManageBookUseCase) Get(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBookResponse(b)
	return &resp, nil
}

// Update 部分更新，只修改提交的字段
func (uc *ManageBookUseCase) Update(ctx context.Context, sub access.Subject, id uint, fields BookFields) (*BookResponse, error) {
	b, err := uc.bookService.Update(ctx, sub, id, fields.patch())
	if err != nil {
		return nil, err
	}
	resp := ToBookResponse(b)
	return &resp, nil
}

// Delete 删除图书
func (uc *ManageBookUseCase) Delete(ctx context.Context, sub access.Subject, id uint) error {
	if err := uc.bookService.Delete(ctx, sub, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "图书下架", "book_id", id, "operator_id", sub.UserID)
	return nil
}

// ListMine 卖家中心的图书列表
func (uc *ManageBookUseCase) ListMine(ctx context.Context, sub access.Subject) ([]BookResponse, error) {
	books, err := uc.bookService.ListMine(ctx, sub)
	if err != nil {
		return nil, err
	}
	return ToBookResponses(books), nil
}
