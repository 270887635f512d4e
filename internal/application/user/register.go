package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册只创建账户，不自动登录
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string // buyer | seller，为空时buyer
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return nil, user.ErrRegisterRole
	}

	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "用户注册", "user_id", u.ID, "role", u.Role)
	return &RegisterResponse{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}, nil
}
