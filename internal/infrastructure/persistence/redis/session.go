package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookmarket/internal/domain/user"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// SessionStore 会话存储
// Key设计：
//
//	session:{user_id}    登录会话信息，过期时间与Refresh Token一致
//	blacklist:{token}    已登出的Token，过期时间与Access Token一致
//	oauth_state:{state}  OAuth登录state，值为登录后跳转地址
type SessionStore struct {
	client *redis.Client
}

var _ user.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string { return fmt.Sprintf("session:%d", userID) }
func blacklistKey(token string) string { return "blacklist:" + token }
func oauthStateKey(state string) string { return "oauth_state:" + state }

// SaveSession 保存用户会话（登录时间、来源等）
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(userID)

	// HSet与Expire放在同一个pipeline，减少网络往返
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取用户会话
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}

// SaveOAuthState 记录OAuth state
func (s *SessionStore) SaveOAuthState(ctx context.Context, state, callbackURL string, ttl time.Duration) error {
	if err := s.client.Set(ctx, oauthStateKey(state), callbackURL, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "保存登录状态失败")
	}
	return nil
}

// ConsumeOAuthState GETDEL保证state只能使用一次
func (s *SessionStore) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	callbackURL, err := s.client.GetDel(ctx, oauthStateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrInvalidParams
		}
		return "", apperrors.Wrap(err, "读取登录状态失败")
	}
	return callbackURL, nil
}
