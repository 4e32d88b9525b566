// Package testdb 为各包的测试提供基于内存 SQLite 的数据库
package testdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/infrastructure/database"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// New 打开一个独立的内存数据库，完成迁移并写入默认套餐
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:assetverse_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(config.DriverSQLite, dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := database.SeedPackages(context.Background(), db); err != nil {
		t.Fatalf("seed packages: %v", err)
	}
	return db
}

// Config 返回测试使用的配置
func Config() *config.Config {
	return &config.Config{
		EnvType:               "LOCAL",
		ServerPort:            "0",
		DBDriver:              config.DriverSQLite,
		DBMaxRetries:          3,
		JWTSecretKey:          "test-secret",
		JWTTTL:                time.Hour,
		RequestTimeout:        5 * time.Second,
		DefaultPackageLimit:   5,
		CatalogPageSize:       6,
		CheckoutBaseURL:       "http://localhost:5173/payment",
		CheckoutWebhookSecret: "checkout-secret",
		MQTTTopicPrefix:       "assetverse",
		CORSAllowOrigin:       "*",
	}
}
