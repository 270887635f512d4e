// Package router 组装gin引擎：全局中间件、API路由与页面路由
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// Options 路由依赖
type Options struct {
	Mode          string // debug | release | test
	SlowThreshold time.Duration

	Auth   *middleware.AuthMiddleware
	Users  *handler.UserHandler
	Login  *handler.AuthHandler
	Books  *handler.BookHandler
	Orders *handler.OrderHandler
	Media  *handler.MediaHandler
	Pages  *handler.PageHandler
}

// New 创建gin引擎
// 中间件顺序：Recovery → Tracing → Logger → Metrics → 路由
func New(opts Options) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logger(opts.SlowThreshold),
		middleware.Metrics(),
	)
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 生产环境不暴露接口文档
	if opts.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerAPI(r.Group("/api/v1"), opts)
	registerPages(r, opts)
	return r
}

func registerAPI(v1 *gin.RouterGroup, opts Options) {
	requireAuth := opts.Auth.RequireAuth()

	auth := v1.Group("/auth")
	{
		auth.POST("/register", opts.Login.Register)
		auth.POST("/login", opts.Login.Login)
		auth.POST("/logout", requireAuth, opts.Login.Logout)
		auth.POST("/session", opts.Auth.OptionalAuth(), opts.Login.Session)
		auth.GET("/google/login", opts.Login.GoogleLogin)
		auth.GET("/google/callback", opts.Login.GoogleCallback)
	}

	users := v1.Group("/users", requireAuth)
	{
		users.GET("/me", opts.Users.GetProfile)
		users.POST("/me/become-seller", opts.Users.BecomeSeller)
		users.PUT("/:id", opts.Users.UpdateProfile)
	}

	admin := v1.Group("/admin", requireAuth)
	{
		admin.GET("/users", opts.Users.ListUsers)
		admin.PUT("/users/:id/role", opts.Users.ChangeRole)
	}

	books := v1.Group("/books")
	{
		books.GET("", opts.Books.ListBooks)
		books.GET("/external", opts.Books.SearchExternal)
		books.GET("/:id", opts.Books.GetBook)
		books.POST("", requireAuth, opts.Books.PublishBook)
		books.PUT("/:id", requireAuth, opts.Books.UpdateBook)
		books.DELETE("/:id", requireAuth, opts.Books.DeleteBook)
	}

	v1.GET("/seller/books", requireAuth, opts.Books.ListSellerBooks)
	v1.POST("/upload", requireAuth, opts.Media.UploadImage)

	v1.POST("/checkout", requireAuth, opts.Orders.Checkout)
	orders := v1.Group("/orders", requireAuth)
	{
		orders.GET("", opts.Orders.ListOrders)
		orders.GET("/:id", opts.Orders.GetOrder)
	}

	// 回调只依赖签名校验
	v1.POST("/webhooks/stripe", opts.Orders.StripeWebhook)
}

func registerPages(r *gin.Engine, opts Options) {
	pages := r.Group("", opts.Auth.PageGate())
	{
		pages.GET("/", opts.Pages.Home)
		pages.GET("/login", opts.Pages.Login)
		pages.GET("/become-seller", opts.Pages.BecomeSeller)
		pages.GET("/profile", opts.Pages.Profile)
		pages.GET("/dashboard", opts.Pages.Dashboard)
		pages.GET("/sell", opts.Pages.Sell)
		pages.GET("/admin/users", opts.Pages.AdminUsers)
	}
}
