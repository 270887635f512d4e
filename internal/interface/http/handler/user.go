package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// UserHandler 个人资料与用户管理
// Handler只负责解析请求、调用应用层、返回响应，权限判断在应用层
type UserHandler struct {
	accountUseCase *appuser.AccountUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(accountUseCase *appuser.AccountUseCase) *UserHandler {
	return &UserHandler{accountUseCase: accountUseCase}
}

// GetProfile 当前用户资料
// @Summary      个人资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	info, err := h.accountUseCase.Profile(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// UpdateProfile 修改资料，只能修改自己的
// @Summary      修改资料
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "用户ID"
// @Param        request body dto.UpdateProfileRequest true "资料"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      403 {object} response.Response "不能修改他人资料"
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	info, err := h.accountUseCase.UpdateProfile(c.Request.Context(), middleware.Subject(c), userID, appuser.UpdateProfileRequest{
		Name:  req.Name,
		Image: req.Image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// BecomeSeller 买家升级为卖家
// @Summary      成为卖家
// @Description  升级后调用/auth/session刷新Token中的角色
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Router       /api/v1/users/me/become-seller [post]
func (h *UserHandler) BecomeSeller(c *gin.Context) {
	info, err := h.accountUseCase.BecomeSeller(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// ListUsers 管理员查看所有用户
// @Summary      用户列表
// @Tags         管理
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appuser.UserInfo}
// @Failure      403 {object} response.Response "非管理员"
// @Router       /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.accountUseCase.ListUsers(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// ChangeRole 管理员修改用户角色
// @Summary      修改角色
// @Tags         管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "用户ID"
// @Param        request body dto.ChangeRoleRequest true "角色"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      400 {object} response.Response "角色无效"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /api/v1/admin/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	info, err := h.accountUseCase.ChangeRole(c.Request.Context(), middleware.Subject(c), userID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// parseID 解析路径参数中的ID，失败时已写出错误响应
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的"+name)
		return 0, false
	}
	return uint(id), true
}
