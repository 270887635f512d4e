package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/jwt"
)

type fixture struct {
	service  user.Service
	repo     user.Repository
	sessions *memory.SessionStore
	jwt      *jwt.Manager
}

func newFixture() *fixture {
	repo := memory.NewUserRepository(memory.NewDB())
	return &fixture{
		service:  user.NewService(repo, user.WithBcryptCost(bcrypt.MinCost)),
		repo:     repo,
		sessions: memory.NewSessionStore(),
		jwt:      jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
	}
}

func (f *fixture) register(t *testing.T, email, role string) *RegisterResponse {
	t.Helper()
	resp, err := NewRegisterUseCase(f.service).Execute(context.Background(), RegisterRequest{
		Name: "Ann", Email: email, Password: "secret1", Role: role,
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	reg := f.register(t, "ann@example.com", "")
	assert.Equal(t, "buyer", reg.Role)

	t.Run("不能注册为admin", func(t *testing.T) {
		_, err := NewRegisterUseCase(f.service).Execute(ctx, RegisterRequest{
			Name: "X", Email: "x@example.com", Password: "secret1", Role: "admin",
		})
		assert.ErrorIs(t, err, user.ErrRegisterRole)
	})

	t.Run("登录签发携带角色的令牌", func(t *testing.T) {
		resp, err := NewLoginUseCase(f.service, f.jwt, f.sessions).Execute(ctx, LoginRequest{
			Email: "ANN@example.com", Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, reg.UserID, resp.User.ID)

		claims, err := f.jwt.ParseToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "buyer", claims.Role)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := NewLoginUseCase(f.service, f.jwt, f.sessions).Execute(ctx, LoginRequest{
			Email: "ann@example.com", Password: "wrong-pass",
		})
		assert.ErrorIs(t, err, user.ErrBadCredential)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := f.register(t, "ann@example.com", "buyer")

	require.NoError(t, NewLogoutUseCase(f.sessions, f.jwt).Execute(ctx, reg.UserID, "access-token"))

	blocked, err := f.sessions.IsInBlacklist(ctx, "access-token")
	require.NoError(t, err)
	assert.True(t, blocked, "登出后令牌应进入黑名单")
}

func TestBecomeSellerThenRefreshSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := f.register(t, "ann@example.com", "buyer")
	sub := access.Subject{UserID: reg.UserID, Role: user.RoleBuyer}

	info, err := NewAccountUseCase(f.service).BecomeSeller(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, "seller", info.Role)

	refresh := NewRefreshSessionUseCase(f.service, f.jwt, f.sessions)

	t.Run("按用户ID刷新", func(t *testing.T) {
		resp, err := refresh.Execute(ctx, RefreshSessionRequest{UserID: reg.UserID})
		require.NoError(t, err)
		claims, err := f.jwt.ParseToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "seller", claims.Role, "刷新后令牌应携带新角色")
	})

	t.Run("按Refresh Token刷新", func(t *testing.T) {
		pair, err := f.jwt.GenerateToken(jwt.Identity{UserID: reg.UserID, Role: "buyer"})
		require.NoError(t, err)

		resp, err := refresh.Execute(ctx, RefreshSessionRequest{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		assert.Equal(t, "seller", resp.User.Role)
	})

	t.Run("Access Token不能当作Refresh Token", func(t *testing.T) {
		pair, err := f.jwt.GenerateToken(jwt.Identity{UserID: reg.UserID})
		require.NoError(t, err)
		_, err = refresh.Execute(ctx, RefreshSessionRequest{RefreshToken: pair.AccessToken})
		assert.Error(t, err)
	})
}

func TestAccountUseCase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uc := NewAccountUseCase(f.service)

	ann := f.register(t, "ann@example.com", "buyer")
	bob := f.register(t, "bob@example.com", "seller")
	annSub := access.Subject{UserID: ann.UserID, Role: user.RoleBuyer}
	admin := access.Subject{UserID: 99, Role: user.RoleAdmin}

	t.Run("修改自己的资料", func(t *testing.T) {
		info, err := uc.UpdateProfile(ctx, annSub, ann.UserID, UpdateProfileRequest{Name: "Annie"})
		require.NoError(t, err)
		assert.Equal(t, "Annie", info.Name)
	})

	t.Run("不能修改他人资料", func(t *testing.T) {
		_, err := uc.UpdateProfile(ctx, annSub, bob.UserID, UpdateProfileRequest{Name: "Hacked"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("非管理员不能改角色", func(t *testing.T) {
		_, err := uc.ChangeRole(ctx, annSub, ann.UserID, "admin")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("管理员改角色", func(t *testing.T) {
		info, err := uc.ChangeRole(ctx, admin, ann.UserID, "seller")
		require.NoError(t, err)
		assert.Equal(t, "seller", info.Role)

		_, err = uc.ChangeRole(ctx, admin, ann.UserID, "owner")
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("管理员查看用户列表", func(t *testing.T) {
		list, err := uc.ListUsers(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = uc.ListUsers(ctx, access.Anonymous)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

type fakeProvider struct {
	profile   *user.FederatedProfile
	lastState string
}

func (p *fakeProvider) Name() string { return user.ProviderGoogle }

func (p *fakeProvider) AuthCodeURL(state string) string {
	p.lastState = state
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*user.FederatedProfile, error) {
	if code != "good-code" {
		return nil, apperrors.ErrUnauthorized
	}
	return p.profile, nil
}

func TestFederatedLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	provider := &fakeProvider{profile: &user.FederatedProfile{
		Provider: user.ProviderGoogle, ProviderID: "g-1", Email: "fed@example.com", Name: "Fed",
	}}
	uc := NewFederatedLoginUseCase(provider, f.service, f.jwt, f.sessions)

	authURL, err := uc.Start(ctx, "/sell")
	require.NoError(t, err)
	assert.Contains(t, authURL, provider.lastState)

	resp, err := uc.Callback(ctx, provider.lastState, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "/sell", resp.CallbackURL)
	assert.Equal(t, "buyer", resp.User.Role, "首次第三方登录创建买家")
	assert.Equal(t, user.ProviderGoogle, resp.User.Provider)

	t.Run("state只能使用一次", func(t *testing.T) {
		_, err := uc.Callback(ctx, provider.lastState, "good-code")
		assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	})

	t.Run("再次登录复用账户", func(t *testing.T) {
		_, err := uc.Start(ctx, "")
		require.NoError(t, err)
		again, err := uc.Callback(ctx, provider.lastState, "good-code")
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, again.User.ID)
		assert.Equal(t, "/", again.CallbackURL)
	})

	t.Run("第三方账户不能密码登录", func(t *testing.T) {
		_, err := NewLoginUseCase(f.service, f.jwt, f.sessions).Execute(ctx, LoginRequest{
			Email: "fed@example.com", Password: "anything",
		})
		assert.ErrorIs(t, err, user.ErrFederatedAccount)
	})
}

func TestSafeCallbackURL(t *testing.T) {
	cases := map[string]string{
		"/dashboard":           "/dashboard",
		"":                     "/",
		"https://evil.example": "/",
		"//evil.example":       "/",
		`/\evil.example`:       "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeCallbackURL(in), "输入: %q", in)
	}
}
