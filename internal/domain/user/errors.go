package user

import (
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// 用户领域错误定义
var (
	ErrUserNotFound   = apperrors.ErrUserNotFound
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate
	ErrInvalidRole    = apperrors.ErrInvalidRole

	// ErrRegisterRole 注册时只能选择buyer或seller
	ErrRegisterRole = apperrors.New(apperrors.ErrCodeInvalidRole, "注册角色只能是buyer或seller")

	ErrInvalidEmail  = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrNameRequired  = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名不能为空")
	ErrWeakPassword  = apperrors.ErrWeakPassword
	ErrBadCredential = apperrors.ErrInvalidPassword

	// ErrFederatedAccount 第三方登录账户没有密码
	ErrFederatedAccount = apperrors.New(apperrors.ErrCodeInvalidPassword, "该账户使用第三方登录，请使用对应方式登录")
)
