package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// DefaultBcryptCost 注册时的bcrypt cost
const DefaultBcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务
// 角色授权不在这里判断，由调用方通过access.Authorize完成
type Service interface {
	Register(ctx context.Context, name, email, password string, role Role) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	ValidatePassword(hashedPassword, plainPassword string) error

	GetByID(ctx context.Context, id uint) (*User, error)
	UpdateProfile(ctx context.Context, id uint, name, image string) (*User, error)
	BecomeSeller(ctx context.Context, id uint) (*User, error)
	ChangeRole(ctx context.Context, id uint, role Role) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	// UpsertFederated 按邮箱查找，不存在则创建买家账户
	UpsertFederated(ctx context.Context, profile FederatedProfile) (*User, error)
}

type service struct {
	repo       Repository
	bcryptCost int
}

// Option 服务选项
type Option func(*service)

// WithBcryptCost 测试中使用bcrypt.MinCost加速
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.bcryptCost = cost }
}

// NewService 创建用户服务
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, bcryptCost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 用户注册
// 业务规则：
// 1. 姓名、邮箱、密码必填
// 2. 自助注册只能选择buyer或seller
// 3. 邮箱唯一性由仓储的唯一索引保证
func (s *service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	if role == "" {
		role = RoleBuyer
	}
	if role != RoleBuyer && role != RoleSeller {
		return nil, ErrRegisterRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(name, email, string(hashed), role)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 邮箱不存在与密码错误返回同一个错误，避免枚举账户
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrBadCredential
		}
		return nil, err
	}

	if u.IsFederated() {
		return nil, ErrFederatedAccount
	}
	if err := s.ValidatePassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadCredential
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uint, name, image string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.UpdateProfile(strings.TrimSpace(name), strings.TrimSpace(image))
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) BecomeSeller(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.BecomeSeller()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ChangeRole(ctx context.Context, id uint, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) UpsertFederated(ctx context.Context, p FederatedProfile) (*User, error) {
	if !emailPattern.MatchString(p.Email) {
		return nil, ErrInvalidEmail
	}

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(p.Email))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.SplitN(p.Email, "@", 2)[0]
	}
	u = NewFederatedUser(p)
	if err := s.repo.Create(ctx, u); err != nil {
		// 并发首次登录，另一请求已创建
		if errors.Is(err, ErrEmailDuplicate) {
			return s.repo.FindByEmail(ctx, u.Email)
		}
		return nil, err
	}
	return u, nil
}
