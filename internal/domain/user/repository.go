package user

import (
	"context"
	"time"
)

// Repository 用户仓储接口
// 实现：infrastructure/persistence/mysql 与 infrastructure/persistence/memory
type Repository interface {
	// Create 邮箱已存在时返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在时返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在时返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 保存所有可变字段
	Update(ctx context.Context, user *User) error

	// List 按创建时间倒序
	List(ctx context.Context) ([]*User, error)
}

// SessionStore 会话存储：登出黑名单与OAuth state
// 实现：infrastructure/persistence/redis 与 infrastructure/persistence/memory
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error

	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)

	// SaveOAuthState 记录一次性的state及登录后跳转地址
	SaveOAuthState(ctx context.Context, state, callbackURL string, ttl time.Duration) error
	// ConsumeOAuthState 读取并删除state，不存在时返回apperrors.ErrInvalidParams
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
}
