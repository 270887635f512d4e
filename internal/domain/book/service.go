package book

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/access"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 写操作统一经过access.Authorize校验权限
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// Publish 发布图书
	// 业务规则:
	// - 只有seller或admin可以发布
	// - title、author、price、condition、category、description必填
	// - 未填写数量默认1，未填写原价按售价×1.2，未上传封面使用占位图
	Publish(ctx context.Context, sub access.Subject, sellerName string, draft Draft) (*Book, error)

	// Get 根据ID获取图书详情，公开
	Get(ctx context.Context, id uint) (*Book, error)

	// Update 部分更新
	// 业务规则:发布者本人或admin
	Update(ctx context.Context, sub access.Subject, id uint, patch Patch) (*Book, error)

	// Delete 删除图书
	// 业务规则:发布者本人或admin
	Delete(ctx context.Context, sub access.Subject, id uint) error

	// List 分页查询图书列表，公开
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// ListMine 当前卖家发布的全部图书
	ListMine(ctx context.Context, sub access.Subject) ([]*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Publish(ctx context.Context, sub access.Subject, sellerName string, draft Draft) (*Book, error) {
	if err := access.Authorize(sub, access.CreateListing, access.None); err != nil {
		return nil, err
	}

	book, err := NewBook(Seller{ID: sub.UserID, Name: sellerName}, draft)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, sub access.Subject, id uint, patch Patch) (*Book, error) {
	// 未登录时不暴露图书是否存在
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.Authorize(sub, access.ModifyListing, access.OwnedBy(book.Seller.ID)); err != nil {
		return nil, err
	}

	if err := book.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) Delete(ctx context.Context, sub access.Subject, id uint) error {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return err
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := access.Authorize(sub, access.ModifyListing, access.OwnedBy(book.Seller.ID)); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params.Normalize())
}

func (s *service) ListMine(ctx context.Context, sub access.Subject) ([]*Book, error) {
	if err := access.Authorize(sub, access.ViewSellerListings, access.None); err != nil {
		return nil, err
	}
	return s.repo.ListBySeller(ctx, sub.UserID)
}
