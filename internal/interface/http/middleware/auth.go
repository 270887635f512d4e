package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/jwt"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// SessionCookie 浏览器会话Cookie名
const SessionCookie = "session_token"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxToken  = "access_token"
)

// AuthMiddleware JWT认证中间件
// 1. 从Authorization头或session_token Cookie提取Token
// 2. 检查登出黑名单
// 3. 验证Token并把用户与角色写入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore user.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录，失败时返回401
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil {
			response.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth 有Token则验证，没有或无效时作为匿名用户继续
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = m.authenticate(c)
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) error {
	tokenString, err := extractToken(c)
	if err != nil {
		return err
	}

	blacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
	if err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	if blacklisted {
		return apperrors.New(apperrors.ErrCodeInvalidToken, "Token已失效，请重新登录")
	}

	claims, err := m.jwtManager.ParseToken(tokenString)
	if err != nil {
		return err
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, user.Role(claims.Role))
	c.Set(ctxToken, tokenString)
	return nil
}

// extractToken Header优先，其次Cookie
// 格式：Authorization: Bearer <token>
func extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", apperrors.New(apperrors.ErrCodeInvalidToken, "Token格式错误")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", apperrors.ErrUnauthorized
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID，未登录时为0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 从Context获取Token中的角色
func GetRole(c *gin.Context) user.Role {
	if role, exists := c.Get(ctxRole); exists {
		if r, ok := role.(user.Role); ok {
			return r
		}
	}
	return ""
}

// GetAccessToken 当前请求使用的Access Token（登出时加入黑名单）
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// Subject 当前请求的授权主体，未登录时为access.Anonymous
func Subject(c *gin.Context) access.Subject {
	userID := GetUserID(c)
	if userID == 0 {
		return access.Anonymous
	}
	return access.Subject{UserID: userID, Role: GetRole(c)}
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
