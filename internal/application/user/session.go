package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/pkg/jwt"
)

// sessionIssuer 签发令牌对并记录会话
// 登录、刷新会话、第三方登录共用
type sessionIssuer struct {
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
	sessionTTL   time.Duration
}

func newSessionIssuer(jwtManager *jwt.Manager, sessionStore user.SessionStore) sessionIssuer {
	return sessionIssuer{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   7 * 24 * time.Hour,
	}
}

func (s sessionIssuer) issue(ctx context.Context, u *user.User) (*AuthResponse, error) {
	pair, err := s.jwtManager.GenerateToken(jwt.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
	}
	// 会话保存失败不影响登录
	if err := s.sessionStore.SaveSession(ctx, u.ID, data, s.sessionTTL); err != nil {
		slog.WarnContext(ctx, "保存会话失败", "user_id", u.ID, "error", err)
	}

	return &AuthResponse{
		User:         ToUserInfo(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// RefreshSessionUseCase 重新读取角色并换发令牌
// 角色变更（成为卖家、管理员改角色）后由客户端主动调用
type RefreshSessionUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	issuer      sessionIssuer
}

// NewRefreshSessionUseCase 创建刷新会话用例
func NewRefreshSessionUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore user.SessionStore) *RefreshSessionUseCase {
	return &RefreshSessionUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		issuer:      newSessionIssuer(jwtManager, sessionStore),
	}
}

// RefreshSessionRequest UserID来自有效的Access Token，否则使用RefreshToken
type RefreshSessionRequest struct {
	UserID       uint
	RefreshToken string
}

// Execute 执行刷新
func (uc *RefreshSessionUseCase) Execute(ctx context.Context, req RefreshSessionRequest) (*AuthResponse, error) {
	userID := req.UserID
	if userID == 0 {
		claims, err := uc.jwtManager.ParseRefreshToken(req.RefreshToken)
		if err != nil {
			return nil, err
		}
		userID = claims.UserID
	}

	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.issuer.issue(ctx, u)
}
