package user

import (
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// UserInfo 对外展示的用户信息，不含密码哈希
type UserInfo struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"created_at"`
}

// ToUserInfo 实体转DTO
func ToUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Role:      string(u.Role),
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// AuthResponse 登录成功后的令牌与用户信息
type AuthResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}
