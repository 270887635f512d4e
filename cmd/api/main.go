package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/xiebiao/bookmarket/docs"
	"github.com/xiebiao/bookmarket/internal/bootstrap"
	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
	"github.com/xiebiao/bookmarket/pkg/logger"
	"github.com/xiebiao/bookmarket/pkg/metrics"
	"github.com/xiebiao/bookmarket/pkg/tracing"
)

// @title                      BookTreasure 二手书交易平台 API
// @version                    1.0
// @description                图书上架与检索、购物车结账、Stripe支付回调
// @host                       localhost:8080
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志、指标、链路追踪
	_, closeLog, err := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = closeLog() }()

	metrics.InitMetrics()

	shutdownTracer, err := tracing.InitTracer(tracing.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	slog.Info("配置加载成功",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"database", cfg.Database.Driver,
		"redis", cfg.Redis.Enabled,
		"base_url", cfg.App.BaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 依赖注入（手动组装，与wire.go中的Provider一致）
	r, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		slog.Error("初始化应用失败", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 4. 启动服务，收到信号后优雅退出
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("服务启动", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("服务异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("关闭服务失败", "error", err)
	}
}

// buildEngine 手动依赖注入
// Repository ← Service ← UseCase ← Handler，详见bootstrap.NewEngine
func buildEngine(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*gin.Engine, func(), error) {
		cleanup()
		return nil, nil, err
	}

	storage, closeStorage, err := provideStorage(cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeStorage)

	sessions, closeSessions, err := provideSessionStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeSessions)

	publisher, closePublisher, err := providePublisher(cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closePublisher)

	images, err := provideImageStore(cfg)
	if err != nil {
		return fail(err)
	}

	r, err := bootstrap.NewEngine(cfg, bootstrap.Infrastructure{
		Storage:   storage,
		Sessions:  sessions,
		Payments:  providePaymentGateway(cfg),
		External:  provideExternalCatalog(cfg),
		Images:    images,
		Identity:  provideIdentityProvider(cfg),
		Publisher: publisher,
	})
	if err != nil {
		return fail(err)
	}
	return r, cleanup, nil
}
