// Package google Google OAuth2登录
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider OAuth2授权码流程
type Provider struct {
	config      *oauth2.Config
	userInfoURL string
}

// Option 可选配置
type Option func(*Provider)

// WithEndpoint 替换授权与用户信息地址(测试用)
func WithEndpoint(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(p *Provider) {
		p.config.Endpoint = endpoint
		p.userInfoURL = userInfoURL
	}
}

// New 创建Google登录提供方
func New(clientID, clientSecret, redirectURL string, opts ...Option) *Provider {
	p := &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		userInfoURL: defaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name 提供方标识
func (p *Provider) Name() string {
	return user.ProviderGoogle
}

// AuthCodeURL 授权跳转地址
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type userInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange 用授权码换取token并读取用户资料
func (p *Provider) Exchange(ctx context.Context, code string) (*user.FederatedProfile, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Upstream(err, "Google登录失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "构造请求失败")
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, apperrors.Upstream(err, "获取Google用户信息失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(fmt.Errorf("userinfo status %d", resp.StatusCode), "获取Google用户信息失败")
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.Upstream(err, "解析Google用户信息失败")
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "Google账户邮箱未验证")
	}

	return &user.FederatedProfile{
		Provider:   user.ProviderGoogle,
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
		Image:      info.Picture,
	}, nil
}
