package book

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,权限与字段校验由领域服务完成
// 2. 卖家姓名从账户库读取,作为快照写入图书
type PublishBookUseCase struct {
	bookService book.Service
	userService user.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service, userService user.Service) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
		userService: userService,
	}
}

// Execute 执行上架用例
func (uc *PublishBookUseCase) Execute(ctx context.Context, sub access.Subject, fields BookFields) (*BookResponse, error) {
	// 先校验权限,避免为匿名请求查询账户
	if err := access.Authorize(sub, access.CreateListing, access.None); err != nil {
		return nil, err
	}

	seller, err := uc.userService.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.Publish(ctx, sub, seller.Name, fields.draft())
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "图书上架", "book_id", b.ID, "seller_id", sub.UserID)
	resp := ToBookResponse(b)
	return &resp, nil
}
