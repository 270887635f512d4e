package main

import (
	"context"
	"log/slog"

	appmedia "github.com/xiebiao/bookmarket/internal/application/media"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	appuser "github.com/xiebiao/bookmarket/internal/application/user"
	"github.com/xiebiao/bookmarket/internal/bootstrap"
	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/payment"
	"github.com/xiebiao/bookmarket/internal/domain/user"
	"github.com/xiebiao/bookmarket/internal/infrastructure/catalog/openlibrary"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/internal/infrastructure/identity/google"
	"github.com/xiebiao/bookmarket/internal/infrastructure/media/cloudinary"
	"github.com/xiebiao/bookmarket/internal/infrastructure/payment/stripe"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmarket/pkg/mq"
)

// 以下Provider同时被main.go的手动组装与wire.go的Injector使用
// 返回值为接口时，未启用的功能返回nil接口

// provideStorage database.driver=memory时使用进程内存储（演示与测试）
func provideStorage(cfg *config.Config) (bootstrap.Storage, func(), error) {
	if cfg.Database.Driver == "memory" {
		db := memory.NewDB()
		slog.Warn("使用内存存储，进程退出后数据丢失")
		return bootstrap.Storage{
			Users:  memory.NewUserRepository(db),
			Books:  memory.NewBookRepository(db),
			Orders: memory.NewOrderRepository(db),
			Ledger: memory.NewEventLedger(db),
			Tx:     memory.NewTxManager(db),
		}, func() {}, nil
	}

	db, err := mysql.NewDB(cfg)
	if err != nil {
		return bootstrap.Storage{}, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return bootstrap.Storage{
		Users:  mysql.NewUserRepository(db),
		Books:  mysql.NewBookRepository(db),
		Orders: mysql.NewOrderRepository(db),
		Ledger: mysql.NewEventLedger(db),
		Tx:     mysql.NewTxManager(db),
	}, cleanup, nil
}

// provideSessionStore redis.enabled=false时使用进程内实现
func provideSessionStore(ctx context.Context, cfg *config.Config) (user.SessionStore, func(), error) {
	if !cfg.Redis.Enabled {
		slog.Warn("未启用Redis，会话黑名单与OAuth state保存在进程内")
		return memory.NewSessionStore(), func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewSessionStore(client), func() { _ = client.Close() }, nil
}

func providePaymentGateway(cfg *config.Config) payment.Gateway {
	if cfg.Stripe.SecretKey == "" {
		slog.Warn("未配置stripe.secret_key，结账将失败")
	}
	return stripe.New(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
}

func provideExternalCatalog(cfg *config.Config) book.ExternalCatalog {
	if !cfg.Catalog.Enabled {
		return nil
	}
	return openlibrary.New(cfg.Catalog.OpenLibraryURL, cfg.Catalog.Timeout)
}

func provideImageStore(cfg *config.Config) (appmedia.ImageStore, error) {
	c := cfg.Cloudinary
	if !c.Configured() {
		slog.Warn("未配置Cloudinary，图片上传不可用")
		return nil, nil
	}
	uploader, err := cloudinary.New(c.CloudName, c.APIKey, c.APISecret, c.Folder)
	if err != nil {
		return nil, err
	}
	return uploader, nil
}

func provideIdentityProvider(cfg *config.Config) appuser.IdentityProvider {
	g := cfg.Google
	if !g.Configured() {
		return nil
	}
	return google.New(g.ClientID, g.ClientSecret, g.RedirectURL)
}

// providePublisher rabbitmq.url为空时不发布领域事件
func providePublisher(cfg *config.Config) (apporder.EventPublisher, func(), error) {
	if cfg.RabbitMQ.URL == "" {
		return apporder.NoopPublisher{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	return pub, func() { _ = pub.Close() }, nil
}
