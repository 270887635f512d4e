package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/domain/access"
	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// 首页展示的最新图书数量
const homeBookCount = 8

// PageHandler 页面数据
// 页面路由挂在PageGate之后，未登录与角色不符的请求在网关处重定向
type PageHandler struct {
	auth           *AuthHandler
	accountUseCase *appuser.AccountUseCase
	listBooks      *appbook.ListBooksUseCase
	manageBooks    *appbook.ManageBookUseCase
	queryOrders    *apporder.QueryOrdersUseCase
}

// NewPageHandler 创建页面处理器
func NewPageHandler(
	auth *AuthHandler,
	accountUseCase *appuser.AccountUseCase,
	listBooks *appbook.ListBooksUseCase,
	manageBooks *appbook.ManageBookUseCase,
	queryOrders *apporder.QueryOrdersUseCase,
) *PageHandler {
	return &PageHandler{
		auth:           auth,
		accountUseCase: accountUseCase,
		listBooks:      listBooks,
		manageBooks:    manageBooks,
		queryOrders:    queryOrders,
	}
}

// HomePage 首页
type HomePage struct {
	Books      []appbook.BookResponse `json:"books"`
	Categories []string               `json:"categories"`
}

// DashboardPage 个人中心
type DashboardPage struct {
	User     *appuser.UserInfo        `json:"user"`
	Orders   []apporder.OrderResponse `json:"orders"`
	Listings []appbook.BookResponse   `json:"listings,omitempty"`
}

// SellPage 上架表单选项
type SellPage struct {
	Categories []string         `json:"categories"`
	Conditions []book.Condition `json:"conditions"`
}

// BecomeSellerPage 成为卖家页
type BecomeSellerPage struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	CanSell       bool   `json:"can_sell"`
}

// Home GET /
func (h *PageHandler) Home(c *gin.Context) {
	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{PageSize: homeBookCount})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, HomePage{Books: result.List, Categories: book.Categories})
}

// Login GET /login
func (h *PageHandler) Login(c *gin.Context) {
	response.Success(c, dto.ProvidersResponse{
		Providers:   h.auth.Providers(),
		CallbackURL: appuser.SafeCallbackURL(c.Query("callbackUrl")),
	})
}

// BecomeSeller GET /become-seller
func (h *PageHandler) BecomeSeller(c *gin.Context) {
	sub := middleware.Subject(c)
	response.Success(c, BecomeSellerPage{
		Authenticated: sub.IsAuthenticated(),
		Role:          string(sub.Role),
		CanSell:       access.Authorize(sub, access.SellerArea, access.None) == nil,
	})
}

// Profile GET /profile
func (h *PageHandler) Profile(c *gin.Context) {
	info, err := h.accountUseCase.Profile(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// Dashboard GET /dashboard，卖家额外返回自己的图书
func (h *PageHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	sub := middleware.Subject(c)

	info, err := h.accountUseCase.Profile(ctx, sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	orders, err := h.queryOrders.List(ctx, sub)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := DashboardPage{User: info, Orders: orders}
	if access.Authorize(sub, access.ViewSellerListings, access.None) == nil {
		if page.Listings, err = h.manageBooks.ListMine(ctx, sub); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.Success(c, page)
}

// Sell GET /sell
func (h *PageHandler) Sell(c *gin.Context) {
	response.Success(c, SellPage{Categories: book.Categories, Conditions: book.Conditions})
}

// AdminUsers GET /admin/users
func (h *PageHandler) AdminUsers(c *gin.Context) {
	users, err := h.accountUseCase.ListUsers(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}
