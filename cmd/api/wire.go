//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 运行 `wire gen ./cmd/api` 生成wire_gen.go后，可以用InitializeApp替换main.go中的buildEngine

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/bookmarket/internal/bootstrap"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
)

// infrastructureSet 存储、会话、消息等带cleanup的依赖
var infrastructureSet = wire.NewSet(
	provideStorage,
	provideSessionStore,
	providePublisher,
)

// integrationSet 第三方服务：支付、书目、图床、身份
var integrationSet = wire.NewSet(
	providePaymentGateway,
	provideExternalCatalog,
	provideImageStore,
	provideIdentityProvider,
)

// InitializeApp 组装gin引擎，cleanup按创建的逆序释放资源
func InitializeApp(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		integrationSet,
		wire.Struct(new(bootstrap.Infrastructure), "Storage", "Sessions", "Payments", "External", "Images", "Identity", "Publisher"),
		bootstrap.NewEngine,
	)
	return nil, nil, nil
}
