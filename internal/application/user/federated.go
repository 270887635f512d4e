package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/pkg/jwt"
)

// OAuthStateTTL state有效期
const OAuthStateTTL = 10 * time.Minute

// IdentityProvider 第三方身份提供方
// 实现：infrastructure/identity/google
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*user.FederatedProfile, error)
}

// FederatedLoginUseCase 第三方登录（授权码流程）
type FederatedLoginUseCase struct {
	provider     IdentityProvider
	userService  user.Service
	sessionStore user.SessionStore
	issuer       sessionIssuer
	newState     func() string
}

// NewFederatedLoginUseCase 创建第三方登录用例
func NewFederatedLoginUseCase(
	provider IdentityProvider,
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore user.SessionStore,
) *FederatedLoginUseCase {
	return &FederatedLoginUseCase{
		provider:     provider,
		userService:  userService,
		sessionStore: sessionStore,
		issuer:       newSessionIssuer(jwtManager, sessionStore),
		newState:     uuid.NewString,
	}
}

// ProviderName 提供方标识
func (uc *FederatedLoginUseCase) ProviderName() string {
	return uc.provider.Name()
}

// Start 生成一次性state并返回授权地址
func (uc *FederatedLoginUseCase) Start(ctx context.Context, callbackURL string) (string, error) {
	state := uc.newState()
	if err := uc.sessionStore.SaveOAuthState(ctx, state, SafeCallbackURL(callbackURL), OAuthStateTTL); err != nil {
		return "", err
	}
	return uc.provider.AuthCodeURL(state), nil
}

// FederatedLoginResponse 登录结果与登录前的页面
type FederatedLoginResponse struct {
	*AuthResponse
	CallbackURL string `json:"callback_url"`
}

// Callback 校验state，换取资料，首次登录创建买家账户
func (uc *FederatedLoginUseCase) Callback(ctx context.Context, state, code string) (*FederatedLoginResponse, error) {
	callbackURL, err := uc.sessionStore.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, err
	}

	profile, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.UpsertFederated(ctx, *profile)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "第三方登录", "provider", profile.Provider, "user_id", u.ID)

	auth, err := uc.issuer.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &FederatedLoginResponse{AuthResponse: auth, CallbackURL: callbackURL}, nil
}

// SafeCallbackURL 只允许站内相对路径，其余回到首页
func SafeCallbackURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/"
	}
	return raw
}
