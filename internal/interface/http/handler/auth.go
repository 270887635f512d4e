package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// CookieOptions session_token Cookie属性
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// AuthHandler 注册、登录、会话与第三方登录
type AuthHandler struct {
	registerUseCase  *appuser.RegisterUseCase
	loginUseCase     *appuser.LoginUseCase
	logoutUseCase    *appuser.LogoutUseCase
	refreshUseCase   *appuser.RefreshSessionUseCase
	federatedUseCase *appuser.FederatedLoginUseCase // nil表示未启用第三方登录
	cookie           CookieOptions
}

// NewAuthHandler federatedUseCase可以为nil
func NewAuthHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshSessionUseCase,
	federatedUseCase *appuser.FederatedLoginUseCase,
	cookie CookieOptions,
) *AuthHandler {
	return &AuthHandler{
		registerUseCase:  registerUseCase,
		loginUseCase:     loginUseCase,
		logoutUseCase:    logoutUseCase,
		refreshUseCase:   refreshUseCase,
		federatedUseCase: federatedUseCase,
		cookie:           cookie,
	}
}

// Providers 可用的登录方式
func (h *AuthHandler) Providers() []string {
	providers := []string{"credentials"}
	if h.federatedUseCase != nil {
		providers = append(providers, h.federatedUseCase.ProviderName())
	}
	return providers
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建买家或卖家账号，注册后需要登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.RegisterResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误或邮箱已存在"
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回JWT Token并写入session_token Cookie
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.AuthResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.AccessToken)
	response.Success(c, result)
}

// Logout 退出登录
// @Summary      退出登录
// @Description  当前Access Token加入黑名单并清除Cookie
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "已退出"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, middleware.GetAccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}

	h.clearSessionCookie(c)
	response.Success(c, nil)
}

// Session 刷新会话
// @Summary      刷新会话
// @Description  从账户库重新读取角色并签发新Token（如成为卖家后）。有效Access Token或Refresh Token二选一
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshSessionRequest false "Refresh Token"
// @Success      200 {object} response.Response{data=appuser.AuthResponse} "已刷新"
// @Failure      401 {object} response.Response "Token无效"
// @Router       /api/v1/auth/session [post]
func (h *AuthHandler) Session(c *gin.Context) {
	var req dto.RefreshSessionRequest
	// 请求体可选
	_ = c.ShouldBindJSON(&req)

	result, err := h.refreshUseCase.Execute(c.Request.Context(), appuser.RefreshSessionRequest{
		UserID:       middleware.GetUserID(c),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.AccessToken)
	response.Success(c, result)
}

// GoogleLogin 跳转到Google授权页
// @Summary      Google登录
// @Tags         认证
// @Param        callbackUrl query string false "登录后返回的站内路径"
// @Success      302
// @Failure      404 {object} response.Response "未启用"
// @Router       /api/v1/auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.federatedUseCase == nil {
		response.ErrorWithCode(c, 40400, "未启用第三方登录")
		return
	}

	authURL, err := h.federatedUseCase.Start(c.Request.Context(), c.Query("callbackUrl"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback Google授权回调
// @Summary      Google登录回调
// @Description  校验state，创建或更新账户，写入Cookie后跳回登录前页面
// @Tags         认证
// @Param        state query string true "state"
// @Param        code  query string true "授权码"
// @Success      302
// @Router       /api/v1/auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.federatedUseCase == nil {
		response.ErrorWithCode(c, 40400, "未启用第三方登录")
		return
	}

	result, err := h.federatedUseCase.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		_ = c.Error(err)
		c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape("OAuthCallback"))
		return
	}

	h.setSessionCookie(c, result.AccessToken)
	c.Redirect(http.StatusFound, result.CallbackURL)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookie.Secure, true)
}
