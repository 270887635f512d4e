package mysql

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. database.instrument=true时底层*sql.DB由otelsql包装，每条SQL生成span
// 3. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 4. 开发环境开启SQL日志，生产环境关闭
// 5. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	dialector, err := newDialector(cfg.Database, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	slog.Info("数据库连接成功", "host", cfg.Database.Host, "db", cfg.Database.DBName, "instrument", cfg.Database.Instrument)

	// 注意：生产环境应使用版本化的迁移脚本
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func newDialector(cfg config.DatabaseConfig, dsn string) (gorm.Dialector, error) {
	if !cfg.Instrument {
		return mysql.Open(dsn), nil
	}

	sqlDB, err := otelsql.Open("mysql", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "mysql")),
	)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := otelsql.RegisterDBStatsMetrics(sqlDB, otelsql.WithAttributes(
		attribute.String("db.system", "mysql"),
	)); err != nil {
		slog.Warn("注册连接池指标失败", "error", err)
	}
	return mysql.New(mysql.Config{Conn: sqlDB}), nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentEventModel{},
	)
}
