// Package bootstrap 把基础设施组装成可运行的HTTP引擎
//
// 依赖注入链：Repository ← Service ← UseCase ← Handler ← Router
// cmd/api与端到端测试共用这里的组装逻辑，区别只在传入的基础设施实现
package bootstrap

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	appmedia "github.com/xiebiao/bookmarket/internal/application/media"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/domain/payment"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	"github.com/xiebiao/bookmarket/internal/interface/http/handler"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/internal/interface/http/router"
	"github.com/xiebiao/bookmarket/pkg/jwt"
)

// Storage 持久化实现（mysql或memory）
type Storage struct {
	Users  user.Repository
	Books  book.Repository
	Orders order.Repository
	Ledger order.EventLedger
	Tx     apporder.Transactor
}

// Infrastructure 外部依赖
// External、Images、Identity可以为nil，对应功能降级或关闭
type Infrastructure struct {
	Storage   Storage
	Sessions  user.SessionStore
	Payments  payment.Gateway
	External  book.ExternalCatalog
	Images    appmedia.ImageStore
	Identity  appuser.IdentityProvider
	Publisher apporder.EventPublisher

	// UserOptions 测试中可降低bcrypt cost
	UserOptions []user.Option
}

// NewEngine 组装所有用例与处理器并注册路由
func NewEngine(cfg *config.Config, infra Infrastructure) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	st := infra.Storage

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(st.Users, infra.UserOptions...)
	bookService := book.NewService(st.Books)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, infra.Sessions)
	logoutUseCase := appuser.NewLogoutUseCase(infra.Sessions, jwtManager)
	refreshUseCase := appuser.NewRefreshSessionUseCase(userService, jwtManager, infra.Sessions)
	accountUseCase := appuser.NewAccountUseCase(userService)
	var federatedUseCase *appuser.FederatedLoginUseCase
	if infra.Identity != nil {
		federatedUseCase = appuser.NewFederatedLoginUseCase(infra.Identity, userService, jwtManager, infra.Sessions)
	}

	publishBookUseCase := appbook.NewPublishBookUseCase(bookService, userService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	manageBookUseCase := appbook.NewManageBookUseCase(bookService)
	searchCatalogUseCase := appbook.NewSearchCatalogUseCase(bookService, infra.External)
	uploadUseCase := appmedia.NewUploadImageUseCase(infra.Images)

	checkoutUseCase := apporder.NewCheckoutUseCase(st.Books, st.Orders, userService, infra.Payments, apporder.CheckoutConfig{
		BaseURL:  cfg.App.BaseURL,
		Currency: cfg.Stripe.Currency,
	})
	queryOrdersUseCase := apporder.NewQueryOrdersUseCase(st.Orders)
	webhookUseCase := apporder.NewPaymentWebhookUseCase(infra.Payments, st.Tx, st.Orders, st.Books, st.Ledger, infra.Publisher)

	// 接口层
	authHandler := handler.NewAuthHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase, federatedUseCase, handler.CookieOptions{
		MaxAge: cfg.JWT.AccessTokenExpire,
		Secure: cfg.JWT.CookieSecure,
	})

	engine := router.New(router.Options{
		Mode:          cfg.Server.Mode,
		SlowThreshold: cfg.Server.SlowThreshold,
		Auth:          middleware.NewAuthMiddleware(jwtManager, infra.Sessions),
		Login:         authHandler,
		Users:         handler.NewUserHandler(accountUseCase),
		Books:         handler.NewBookHandler(publishBookUseCase, listBooksUseCase, manageBookUseCase, searchCatalogUseCase),
		Orders:        handler.NewOrderHandler(checkoutUseCase, queryOrdersUseCase, webhookUseCase),
		Media:         handler.NewMediaHandler(uploadUseCase),
		Pages:         handler.NewPageHandler(authHandler, accountUseCase, listBooksUseCase, manageBookUseCase, queryOrdersUseCase),
	})
	return engine, nil
}
