package user

import (
	"strings"
	"time"
)

// Role 账户角色
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid 角色只能是三个取值之一
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// CanSell 卖家与管理员可以发布图书
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleAdmin
}

// ParseRole 解析角色，空串返回buyer
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleBuyer, nil
	}
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// 账户来源
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User 用户实体（聚合根）
// PasswordHash为空表示第三方登录账户，不能使用密码登录
type User struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	Image        string
	Provider     string
	ProviderID   string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser 创建密码账户
func NewUser(name, email, passwordHash string, role Role) *User {
	now := time.Now()
	return &User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Provider:     ProviderCredentials,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewFederatedUser 第三方登录首次进入时创建买家账户
func NewFederatedUser(p FederatedProfile) *User {
	now := time.Now()
	return &User{
		Name:       p.Name,
		Email:      normalizeEmail(p.Email),
		Image:      p.Image,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
		Role:       RoleBuyer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FederatedProfile 身份提供方返回的资料
type FederatedProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Image      string
}

// IsFederated 是否第三方登录账户
func (u *User) IsFederated() bool {
	return u.PasswordHash == ""
}

// ChangeRole 修改角色（领域行为）
func (u *User) ChangeRole(role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// BecomeSeller 买家升级为卖家，管理员保持不变
func (u *User) BecomeSeller() {
	if u.Role == RoleAdmin {
		return
	}
	u.Role = RoleSeller
	u.UpdatedAt = time.Now()
}

// UpdateProfile 只修改非空字段
func (u *User) UpdateProfile(name, image string) {
	if name != "" {
		u.Name = name
	}
	if image != "" {
		u.Image = image
	}
	u.UpdatedAt = time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
