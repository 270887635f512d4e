package user

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// AccountUseCase 个人资料、成为卖家与管理员的账户管理
type AccountUseCase struct {
	userService user.Service
}

// NewAccountUseCase 创建账户用例
func NewAccountUseCase(userService user.Service) *AccountUseCase {
	return &AccountUseCase{userService: userService}
}

// Profile 当前用户资料
func (uc *AccountUseCase) Profile(ctx context.Context, sub access.Subject) (*UserInfo, error) {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}
	u, err := uc.userService.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}

// UpdateProfileRequest 只支持修改姓名与头像
type UpdateProfileRequest struct {
	Name  string
	Image string
}

// UpdateProfile 只能修改自己的资料
func (uc *AccountUseCase) UpdateProfile(ctx context.Context, sub access.Subject, userID uint, req UpdateProfileRequest) (*UserInfo, error) {
	if err := access.Authorize(sub, access.EditProfile, access.OwnedBy(userID)); err != nil {
		return nil, err
	}
	u, err := uc.userService.UpdateProfile(ctx, userID, req.Name, req.Image)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}

// BecomeSeller 当前用户升级为卖家
// 令牌中的role不会自动变化，客户端随后需要刷新会话
func (uc *AccountUseCase) BecomeSeller(ctx context.Context, sub access.Subject) (*UserInfo, error) {
	if err := access.Authorize(sub, access.Authenticated, access.None); err != nil {
		return nil, err
	}
	u, err := uc.userService.BecomeSeller(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}

// ListUsers 管理员查看全部用户
func (uc *AccountUseCase) ListUsers(ctx context.Context, sub access.Subject) ([]UserInfo, error) {
	if err := access.Authorize(sub, access.ManageUsers, access.None); err != nil {
		return nil, err
	}
	users, err := uc.userService.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]UserInfo, len(users))
	for i, u := range users {
		list[i] = ToUserInfo(u)
	}
	return list, nil
}

// ChangeRole 管理员修改用户角色
func (uc *AccountUseCase) ChangeRole(ctx context.Context, sub access.Subject, userID uint, role string) (*UserInfo, error) {
	if err := access.Authorize(sub, access.ManageUsers, access.None); err != nil {
		return nil, err
	}
	r, err := user.ParseRole(role)
	if err != nil || role == "" {
		return nil, user.ErrInvalidRole
	}
	u, err := uc.userService.ChangeRole(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}
