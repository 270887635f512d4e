package user

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对（携带role）
// 3. 保存会话
type LoginUseCase struct {
	userService user.Service
	issuer      sessionIssuer
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore user.SessionStore) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		issuer:      newSessionIssuer(jwtManager, sessionStore),
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return uc.issuer.issue(ctx, u)
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore user.SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore user.SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 删除会话并将Access Token加入黑名单
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTTL())
}
