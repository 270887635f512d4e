package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// fakeRepo 只实现服务用到的行为
type fakeRepo struct {
	books  map[uint]*Book
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: make(map[uint]*Book)}
}

func (r *fakeRepo) Create(_ context.Context, b *Book) error {
	r.nextID++
	b.ID = r.nextID
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) Update(_ context.Context, b *Book) error {
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListParams) ([]*Book, int64, error) {
	out := make([]*Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ListBySeller(_ context.Context, sellerID uint) ([]*Book, error) {
	var out []*Book
	for _, b := range r.books {
		if b.Seller.ID == sellerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) DecreaseStock(_ context.Context, id uint, n int) error {
	b, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	if b.Quantity < n {
		return ErrInsufficientStock
	}
	b.Quantity -= n
	return nil
}

var (
	buyer       = access.Subject{UserID: 1, Role: user.RoleBuyer}
	seller      = access.Subject{UserID: 2, Role: user.RoleSeller}
	otherSeller = access.Subject{UserID: 3, Role: user.RoleSeller}
	admin       = access.Subject{UserID: 9, Role: user.RoleAdmin}
)

func TestService_Publish(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	t.Run("买家不能发布", func(t *testing.T) {
		_, err := svc.Publish(ctx, buyer, "Bob", validDraft())
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("匿名用户未登录", func(t *testing.T) {
		_, err := svc.Publish(ctx, access.Anonymous, "", validDraft())
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("卖家发布成功", func(t *testing.T) {
		b, err := svc.Publish(ctx, seller, "Sam", validDraft())
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, Seller{ID: 2, Name: "Sam"}, b.Seller)
	})

	t.Run("缺少字段校验在权限之后", func(t *testing.T) {
		d := validDraft()
		d.Title = ""
		_, err := svc.Publish(ctx, seller, "Sam", d)
		assert.ErrorIs(t, err, MissingField("title"))
	})
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	b, err := svc.Publish(ctx, seller, "Sam", validDraft())
	require.NoError(t, err)

	title := "New title"

	t.Run("他人不能修改", func(t *testing.T) {
		_, err := svc.Update(ctx, otherSeller, b.ID, Patch{Title: &title})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("发布者可以修改", func(t *testing.T) {
		updated, err := svc.Update(ctx, seller, b.ID, Patch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
	})

	t.Run("管理员可以修改", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, b.ID, Patch{Title: &title})
		assert.NoError(t, err)
	})

	t.Run("不存在的图书", func(t *testing.T) {
		_, err := svc.Update(ctx, seller, 404, Patch{Title: &title})
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("他人不能删除", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, otherSeller, b.ID), apperrors.ErrForbidden)
	})

	t.Run("发布者删除", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, seller, b.ID))
		_, err := svc.Get(ctx, b.ID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestService_ListMine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Publish(ctx, seller, "Sam", validDraft())
	require.NoError(t, err)
	_, err = svc.Publish(ctx, otherSeller, "Oli", validDraft())
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.ListMine(ctx, buyer)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
