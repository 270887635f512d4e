package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

func TestAuthorize(t *testing.T) {
	buyer := Subject{UserID: 1, Role: user.RoleBuyer}
	seller := Subject{UserID: 2, Role: user.RoleSeller}
	otherSeller := Subject{UserID: 3, Role: user.RoleSeller}
	admin := Subject{UserID: 9, Role: user.RoleAdmin}

	cases := []struct {
		name    string
		sub     Subject
		cap     Capability
		res     Resource
		wantErr error
	}{
		{"匿名用户未登录", Anonymous, Authenticated, None, apperrors.ErrUnauthorized},
		{"买家可以结账", buyer, Authenticated, None, nil},
		{"买家不能发布图书", buyer, CreateListing, None, apperrors.ErrForbidden},
		{"卖家可以发布图书", seller, CreateListing, None, nil},
		{"管理员可以发布图书", admin, CreateListing, None, nil},
		{"卖家修改自己的图书", seller, ModifyListing, OwnedBy(2), nil},
		{"卖家不能修改他人图书", otherSeller, ModifyListing, OwnedBy(2), apperrors.ErrForbidden},
		{"管理员修改任意图书", admin, ModifyListing, OwnedBy(2), nil},
		{"买家不能上传图片", buyer, UploadImage, None, apperrors.ErrForbidden},
		{"只能编辑自己的资料", buyer, EditProfile, OwnedBy(2), apperrors.ErrForbidden},
		{"编辑自己的资料", buyer, EditProfile, OwnedBy(1), nil},
		{"订单只对买家本人可见", admin, ViewOrder, OwnedBy(1), apperrors.ErrForbidden},
		{"卖家不能管理用户", seller, ManageUsers, None, apperrors.ErrForbidden},
		{"管理员管理用户", admin, ManageUsers, None, nil},
		{"卖家区域对买家关闭", buyer, SellerArea, None, apperrors.ErrForbidden},
		{"未知能力一律拒绝", admin, Capability("unknown"), None, apperrors.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.sub, tc.cap, tc.res)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAuthorize_ZeroOwnerNeverMatches(t *testing.T) {
	// 资源没有归属时，owner规则不应放行
	err := Authorize(Subject{UserID: 5, Role: user.RoleBuyer}, ModifyListing, None)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
