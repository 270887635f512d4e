// Package access 集中定义"谁能做什么"
//
// 所有handler、用例与页面网关都通过Authorize判断权限，不在各处散落角色比较。
package access

import (
	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// Capability 受保护的操作
type Capability string

const (
	// Authenticated 任意已登录用户（结账、个人中心、我的订单）
	Authenticated Capability = "authenticated"

	CreateListing      Capability = "listing:create"
	ModifyListing      Capability = "listing:modify" // 更新、删除
	ViewSellerListings Capability = "listing:view_own"
	UploadImage        Capability = "media:upload"

	EditProfile Capability = "profile:edit"
	ViewOrder   Capability = "order:view"

	ManageUsers Capability = "users:manage"

	// 页面区域
	AdminArea  Capability = "area:admin"
	SellerArea Capability = "area:seller"
)

// Subject 发起请求的主体，UserID为0表示匿名
type Subject struct {
	UserID uint
	Role   user.Role
}

// Anonymous 未登录主体
var Anonymous = Subject{}

// IsAuthenticated 是否已登录
func (s Subject) IsAuthenticated() bool {
	return s.UserID != 0
}

// Resource 被访问的资源，OwnerID为0表示不涉及归属
type Resource struct {
	OwnerID uint
}

// None 不涉及具体资源
var None = Resource{}

// OwnedBy 归属于某用户的资源
func OwnedBy(ownerID uint) Resource {
	return Resource{OwnerID: ownerID}
}

type rule struct {
	roles []user.Role // 拥有任一角色即可
	owner bool        // 资源归属者即可
}

var allRoles = []user.Role{user.RoleBuyer, user.RoleSeller, user.RoleAdmin}

var rules = map[Capability]rule{
	Authenticated:      {roles: allRoles},
	CreateListing:      {roles: []user.Role{user.RoleSeller, user.RoleAdmin}},
	ModifyListing:      {roles: []user.Role{user.RoleAdmin}, owner: true},
	ViewSellerListings: {roles: []user.Role{user.RoleSeller, user.RoleAdmin}},
	UploadImage:        {roles: []user.Role{user.RoleSeller, user.RoleAdmin}},
	EditProfile:        {owner: true},
	ViewOrder:          {owner: true},
	ManageUsers:        {roles: []user.Role{user.RoleAdmin}},
	AdminArea:          {roles: []user.Role{user.RoleAdmin}},
	SellerArea:         {roles: []user.Role{user.RoleSeller, user.RoleAdmin}},
}

// Authorize 唯一的授权策略
//
//	匿名 → ErrUnauthorized
//	不满足规则 → ErrForbidden
//	未知能力 → ErrForbidden
func Authorize(sub Subject, capability Capability, res Resource) error {
	if !sub.IsAuthenticated() {
		return apperrors.ErrUnauthorized
	}

	r, ok := rules[capability]
	if !ok {
		return apperrors.ErrForbidden
	}

	if r.owner && res.OwnerID != 0 && res.OwnerID == sub.UserID {
		return nil
	}
	for _, role := range r.roles {
		if sub.Role == role {
			return nil
		}
	}
	return apperrors.ErrForbidden
}
