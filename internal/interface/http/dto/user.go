package dto

// RegisterRequest HTTP层注册请求
// 自助注册的role只能是buyer或seller，由应用层判断
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50" example:"Ann Reader"`
	Email    string `json:"email" binding:"required,email" example:"ann@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret1"`
	Role     string `json:"role" binding:"omitempty,user_role" example:"buyer"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ann@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RefreshSessionRequest 没有有效Access Token时提交Refresh Token
type RefreshSessionRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest 修改姓名与头像
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,max=50" example:"Annie"`
	Image string `json:"image" binding:"omitempty,url,max=500" example:"https://example.com/a.png"`
}

// ChangeRoleRequest 管理员修改角色
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,user_role" example:"seller"`
}

// ProvidersResponse 登录页可用的登录方式
type ProvidersResponse struct {
	Providers   []string `json:"providers" example:"credentials,google"`
	CallbackURL string   `json:"callback_url" example:"/dashboard"`
}
